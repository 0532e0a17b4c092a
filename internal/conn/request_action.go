package conn

import (
	"fmt"
	"net/http"

	"github.com/tobsdb/ehr/internal/query"
)

type RequestAction string

const (
	// patient actions
	RequestActionAge                 RequestAction = "age"
	RequestActionFindPatient         RequestAction = "findPatient"
	RequestActionAgeAtFirstAdmission RequestAction = "ageAtFirstAdmission"

	// dataset actions
	RequestActionNumOlderThan RequestAction = "numOlderThan"
	RequestActionSickPatients RequestAction = "sickPatients"
	RequestActionListPatients RequestAction = "listPatients"
)

func ActionHandler(engine *query.Engine, action RequestAction, raw []byte) Response {
	switch action {
	case RequestActionAge:
		return AgeReqHandler(engine, raw)
	case RequestActionFindPatient:
		return FindPatientReqHandler(engine, raw)
	case RequestActionAgeAtFirstAdmission:
		return AgeAtFirstAdmissionReqHandler(engine, raw)
	case RequestActionNumOlderThan:
		return NumOlderThanReqHandler(engine, raw)
	case RequestActionSickPatients:
		return SickPatientsReqHandler(engine, raw)
	case RequestActionListPatients:
		return ListPatientsReqHandler(engine)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}
