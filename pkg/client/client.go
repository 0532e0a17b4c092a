// Go client for the EHR query server.
//
// Usage:
//
//	c, err := client.NewClient("ws://localhost:7085", client.Options{Username: "u", Password: "p"})
//	...
//	defer c.Disconnect()
//	n, err := c.NumOlderThan(50)
package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	ws "github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/pkg"
)

type (
	Options struct {
		Username string
		Password string
	}

	// Client keeps one websocket connection to the server. Requests are
	// serialised; each carries an increasing request id.
	Client struct {
		locker sync.Mutex
		conn   *ws.Conn
		req_id int
		// The formatted connection url of the server
		Url *url.URL
	}
)

func NewClient(url_str string, options Options) (*Client, error) {
	Url, err := url.Parse(url_str)
	if err != nil {
		return nil, errors.Wrap(err, "parsing server url")
	}

	if options.Username != "" {
		q := Url.Query()
		q.Set("username", options.Username)
		q.Set("password", options.Password)
		Url.RawQuery = q.Encode()
	}

	return &Client{Url: Url}, nil
}

func (c *Client) Connect() error {
	c.locker.Lock()
	defer c.locker.Unlock()
	return c.connect()
}

func (c *Client) connect() error {
	if c.conn != nil {
		return nil
	}
	conn, res, err := ws.DefaultDialer.Dial(c.Url.String(), nil)
	if err != nil {
		return errors.Wrap(err, "connecting to server")
	}
	if err := res.Header.Get("tdb-error"); err != "" {
		conn.Close()
		return fmt.Errorf("Server Error: %s", err)
	}

	pkg.InfoLog("Connected to EHR server", c.Url.Host)
	c.conn = conn
	return nil
}

func (c *Client) Disconnect() error {
	c.locker.Lock()
	defer c.locker.Unlock()
	if c.conn == nil {
		return nil
	}
	defer func() { c.conn = nil }()

	err := c.conn.WriteMessage(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, "Disconnect"))
	if err != nil {
		pkg.ErrorLog(err)
		c.conn.Close()
		return err
	}
	if err := c.conn.Close(); err != nil {
		pkg.ErrorLog(err)
		return err
	}

	pkg.InfoLog("Disconnected from EHR server")
	return nil
}

type Response struct {
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestId int             `json:"__tdb_client_req_id__"`
}

// ResponseError is returned for any reply without a 200 status.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string { return fmt.Sprintf("%d: %s", e.Status, e.Message) }

func (c *Client) query(action string, args map[string]any, out any) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	if err := c.connect(); err != nil {
		return err
	}

	c.req_id++
	req := map[string]any{"action": action, "__tdb_client_req_id__": c.req_id}
	for k, v := range args {
		req[k] = v
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return errors.Wrapf(err, "sending %s request", action)
	}

	var res Response
	if err := c.conn.ReadJSON(&res); err != nil {
		return errors.Wrapf(err, "reading %s response", action)
	}
	if res.RequestId != c.req_id {
		return fmt.Errorf("Response id %d does not match request %d", res.RequestId, c.req_id)
	}
	if res.Status != 200 {
		return &ResponseError{res.Status, res.Message}
	}
	return errors.Wrapf(json.Unmarshal(res.Data, out), "decoding %s response", action)
}

func (c *Client) Age(id string) (age float64, err error) {
	err = c.query("age", map[string]any{"id": id}, &age)
	return
}

func (c *Client) FindPatient(id string) (*ehr.Patient, error) {
	var p ehr.Patient
	if err := c.query("findPatient", map[string]any{"id": id}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AgeAtFirstAdmission(id string) (age float64, err error) {
	err = c.query("ageAtFirstAdmission", map[string]any{"id": id}, &age)
	return
}

func (c *Client) NumOlderThan(age float64) (n int, err error) {
	err = c.query("numOlderThan", map[string]any{"age": age}, &n)
	return
}

// SickPatients returns the ids in natural order. An empty admission checks
// every admission.
func (c *Client) SickPatients(lab, comparator string, value float64, admission string) (ids []string, err error) {
	err = c.query("sickPatients", map[string]any{
		"lab":        lab,
		"comparator": comparator,
		"value":      value,
		"admission":  admission,
	}, &ids)
	return
}

func (c *Client) ListPatients() (ids []string, err error) {
	err = c.query("listPatients", nil, &ids)
	return
}
