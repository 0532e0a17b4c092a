package conn

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/internal/query"
	"github.com/tobsdb/ehr/pkg"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__tdb_client_req_id__"`
}

func (r Response) Marshal() []byte {
	buf, err := json.Marshal(r)
	if err != nil {
		pkg.ErrorLog("marshalling response", err)
		buf, _ = json.Marshal(NewErrorResponse(http.StatusInternalServerError, err.Error()))
	}
	return buf
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

// NewQueryErrorResponse uses the status carried by query errors; anything else
// is a failure of the backing store.
func NewQueryErrorResponse(err error) Response {
	var query_error *ehr.QueryError
	if errors.As(err, &query_error) {
		return NewErrorResponse(query_error.Status(), err.Error())
	}
	return NewErrorResponse(http.StatusInternalServerError, err.Error())
}

type PatientRequest struct {
	Id string `json:"id"`
}

func decodePatientRequest(raw []byte) (PatientRequest, error) {
	var req PatientRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, err
	}
	if req.Id == "" {
		return req, fmt.Errorf("Missing patient id")
	}
	return req, nil
}

func AgeReqHandler(engine *query.Engine, raw []byte) Response {
	req, err := decodePatientRequest(raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	age, err := engine.AgeOf(req.Id)
	if err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Age of patient %s", req.Id), age)
}

func FindPatientReqHandler(engine *query.Engine, raw []byte) Response {
	req, err := decodePatientRequest(raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	patient, err := engine.Patient(req.Id)
	if err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found patient %s", req.Id), patient)
}

func AgeAtFirstAdmissionReqHandler(engine *query.Engine, raw []byte) Response {
	req, err := decodePatientRequest(raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	age, err := engine.AgeAtFirstAdmission(req.Id)
	if err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Age of patient %s at first admission", req.Id), age)
}

type NumOlderThanRequest struct {
	Age float64 `json:"age"`
}

func NumOlderThanReqHandler(engine *query.Engine, raw []byte) Response {
	var req NumOlderThanRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	n, err := engine.NumOlderThan(req.Age)
	if err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d patients older than %v", n, req.Age), n)
}

type SickPatientsRequest struct {
	Lab        string  `json:"lab"`
	Comparator string  `json:"comparator"`
	Value      float64 `json:"value"`
	// optional; restricts the check to labs from one admission
	Admission string `json:"admission"`
}

func SickPatientsReqHandler(engine *query.Engine, raw []byte) Response {
	var req SickPatientsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	var ids []string
	var err error
	if req.Admission != "" {
		ids, err = engine.SickPatientsAtAdmission(req.Admission, req.Lab, req.Comparator, req.Value)
	} else {
		ids, err = engine.SickPatients(req.Lab, req.Comparator, req.Value)
	}
	if err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Found %d patients with %s %s %v", len(ids), req.Lab, req.Comparator, req.Value), ids)
}

func ListPatientsReqHandler(engine *query.Engine) Response {
	patients, err := engine.Patients()
	if err != nil {
		return NewQueryErrorResponse(err)
	}

	ids := make([]string, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d patients", len(ids)), ids)
}
