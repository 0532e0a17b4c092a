package conn

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tobsdb/ehr/internal/auth"
	"github.com/tobsdb/ehr/pkg"
)

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__tdb_client_req_id__"` // used in tdb clients
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ConnCredentials reads the username and password from the query params,
// falling back to basic auth in the Authorization header.
func ConnCredentials(r *http.Request) (string, string) {
	params := r.URL.Query()
	if params.Has("username") {
		return params.Get("username"), params.Get("password")
	}
	if username, password, ok := r.BasicAuth(); ok {
		return username, password
	}
	return "", ""
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	username, password := ConnCredentials(r)
	if err := auth.Authenticate(s.User, username, password); err != nil {
		ConnError(w, r, err.Error())
		return
	}

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog("upgrading connection", err)
		return
	}

	conn_id := uuid.New().String()
	log := pkg.Logger().With("conn", conn_id, "remote", r.RemoteAddr)
	log.Infow("New connection")
	defer log.Infow("Connection closed")
	defer conn.Close()

	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Errorw("conn read error", "error", err)
			}
			return
		}

		var req WsRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			log.Errorw("parsing request", "error", err)
			res := NewErrorResponse(http.StatusBadRequest, err.Error())
			if err := conn.WriteMessage(websocket.TextMessage, res.Marshal()); err != nil {
				return
			}
			continue
		}

		res := ActionHandler(s.Engine, req.Action, buf)
		res.ReqId = req.ReqId
		log.Debugw("handled request", "action", req.Action, "status", res.Status)

		if err := conn.WriteMessage(websocket.TextMessage, res.Marshal()); err != nil {
			log.Errorw("writing response", "error", err)
			return
		}
	}
}

func ConnError(w http.ResponseWriter, r *http.Request, conn_error string) {
	pkg.InfoLog("connection error:", conn_error)
	headers := http.Header{}
	headers.Set("tdb-error", conn_error)
	conn, err := Upgrader.Upgrade(w, r, headers)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, conn_error))
	conn.Close()
}
