// Package statusserver is the optional same-host HTTP introspection endpoint
// a running peacock-fuzz campaign can expose, routed with chi the way the
// teacher's server package routes its API endpoints.
package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Counters is obtained from the server's CounterSource on every request to
// GET /status.
type Counters struct {
	CorpusSize int
	CrashCount int
}

// CounterSource is polled for the current state of a running campaign.
type CounterSource func() Counters

// Server is the status HTTP server. It is read-only and unauthenticated: it
// exposes counters about a campaign already running on the same host, never
// a control surface.
type Server struct {
	httpSrv *http.Server
	router  chi.Router
	started time.Time
	counts  CounterSource
}

// New builds a Server listening on addr, reporting whatever Counters
// counts returns at request time.
func New(addr string, counts CounterSource) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		started: time.Now(),
		counts:  counts,
	}

	s.router.Get("/status", s.handleStatus)

	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s
}

type statusResponse struct {
	CorpusSize   int     `json:"corpus_size"`
	CrashCount   int     `json:"crash_count"`
	UptimeSecond float64 `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.counts()
	resp := statusResponse{
		CorpusSize:   c.CorpusSize,
		CrashCount:   c.CrashCount,
		UptimeSecond: time.Since(s.started).Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ListenAndServe blocks serving requests until ctx is canceled or an
// unrecoverable server error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
