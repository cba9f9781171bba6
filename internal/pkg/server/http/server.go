package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

// Probe reports component state for the operations endpoints.
type Probe interface {
	// Ready reports whether the component can serve traffic.
	Ready() bool

	// Status returns a JSON-encodable snapshot of the component.
	Status(ctx context.Context) (any, error)

	// Graph returns the component's state machine in Graphviz format.
	Graph(ctx context.Context) (string, error)
}

type Server struct {
	server  *http.Server
	options *options.HttpOptions
}

// NewServer builds the operations server:
//
//	GET /healthz      liveness
//	GET /readyz       readiness (broker connected)
//	GET /metrics      prometheus metrics
//	GET /v1/status    component state as JSON
//	GET /v1/fsm       state machine as Graphviz dot
func NewServer(opts *options.HttpOptions, probe Probe) *Server {
	return &Server{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(probe),
			ReadHeaderTimeout: opts.Timeout,
			WriteTimeout:      opts.Timeout,
		},
		options: opts,
	}
}

// NewRouter returns the handler serving the operations endpoints.
func NewRouter(probe Probe) http.Handler {
	r := mux.NewRouter()

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !probe.Ready() {
			writeText(w, http.StatusServiceUnavailable, "mqtt not connected")
			return
		}
		writeText(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/v1/status", func(w http.ResponseWriter, r *http.Request) {
		status, err := probe.Status(r.Context())
		if err != nil {
			writeText(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error(err, "Failed to encode status")
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/fsm", func(w http.ResponseWriter, r *http.Request) {
		graph, err := probe.Graph(r.Context())
		if err != nil {
			writeText(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		writeText(w, http.StatusOK, graph)
	}).Methods(http.MethodGet)

	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen(s.options.Network, s.server.Addr)
	if err != nil {
		return err
	}
	log.Info("Starting HTTP Server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
