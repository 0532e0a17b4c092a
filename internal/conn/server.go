package conn

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tobsdb/ehr/internal/auth"
	"github.com/tobsdb/ehr/internal/query"
	"github.com/tobsdb/ehr/pkg"
)

// Server answers queries over websocket connections.
type Server struct {
	Engine *query.Engine
	// nil when the server runs without credentials
	User *auth.User
}

func NewServer(engine *query.Engine, user *auth.User) *Server {
	return &Server{Engine: engine, User: user}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.HandleConnection)
	return mux
}

// Listen blocks until the process receives SIGINT or SIGTERM.
func (s *Server) Listen(port int) error {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(exit)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}

	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errs <- err
		}
	}()

	pkg.InfoLog("EHR server listening on port", port)
	select {
	case err := <-errs:
		return err
	case <-exit:
	}

	pkg.DebugLog("Shutting down...")
	return srv.Shutdown(context.Background())
}
