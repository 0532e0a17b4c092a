package client_test

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tobsdb/ehr/internal/auth"
	"github.com/tobsdb/ehr/internal/conn"
	"github.com/tobsdb/ehr/internal/ehrtest"
	"github.com/tobsdb/ehr/internal/query"
	"github.com/tobsdb/ehr/internal/repository"
	"github.com/tobsdb/ehr/pkg/client"
	"gotest.tools/v3/assert"
)

func newTestServer(t *testing.T, user *auth.User) *httptest.Server {
	repo := repository.NewMemory()
	for _, p := range ehrtest.Patients() {
		assert.NilError(t, repo.PutPatient(p))
	}
	engine := &query.Engine{Repo: repo, Now: func() time.Time { return ehrtest.Now }}
	return httptest.NewServer(conn.NewServer(engine, user).Handler())
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestClient(t *testing.T) {
	s := newTestServer(t, nil)
	defer s.Close()

	c, err := client.NewClient(wsURL(s), client.Options{})
	assert.NilError(t, err)
	defer c.Disconnect()

	age, err := c.Age("2")
	assert.NilError(t, err)
	assert.Equal(t, math.Round(age), 62.0)

	n, err := c.NumOlderThan(50)
	assert.NilError(t, err)
	assert.Equal(t, n, 2)

	ids, err := c.SickPatients("lab_a", ">", 1, "")
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []string{"2", "3"})

	ids, err = c.ListPatients()
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []string{"1", "2", "3", "99"})

	p, err := c.FindPatient("1")
	assert.NilError(t, err)
	assert.Equal(t, p.Gender, "Male")
	assert.Equal(t, len(p.Labs), 3)
	assert.Equal(t, p.Labs[2].Value, 10.0)

	age, err = c.AgeAtFirstAdmission("3")
	assert.NilError(t, err)
	assert.Equal(t, math.Round(age), 22.0)

	t.Run("errors", func(t *testing.T) {
		_, err := c.AgeAtFirstAdmission("99")
		res_err, ok := err.(*client.ResponseError)
		assert.Assert(t, ok, err)
		assert.Equal(t, res_err.Status, http.StatusNotFound)

		_, err = c.SickPatients("lab_a", "!=", 1, "")
		res_err, ok = err.(*client.ResponseError)
		assert.Assert(t, ok, err)
		assert.Equal(t, res_err.Status, http.StatusBadRequest)
	})
}

func TestClientAuth(t *testing.T) {
	user, err := auth.NewUser("clinician", "secret")
	assert.NilError(t, err)
	s := newTestServer(t, user)
	defer s.Close()

	c, err := client.NewClient(wsURL(s), client.Options{Username: "clinician", Password: "secret"})
	assert.NilError(t, err)
	assert.NilError(t, c.Connect())
	assert.NilError(t, c.Disconnect())

	c, err = client.NewClient(wsURL(s), client.Options{Username: "clinician", Password: "nope"})
	assert.NilError(t, err)
	assert.ErrorContains(t, c.Connect(), "Server Error: Invalid auth")
}
