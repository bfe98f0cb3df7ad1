// Package admin serves the HTTP side channel of a running nextword process:
// liveness, readiness and the Prometheus scrape endpoint.
//
//   - /healthz always returns 200 while the process can serve HTTP.
//   - /readyz returns 200 only when every [Checker] passes.
//   - /metrics is the handler given to [New], when not nil.
//
// Health responses are JSON objects with a "status" field ("ok" or "fail")
// and a "checks" map holding the result of each named checker.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bastiangx/nextword/internal/logger"
	"github.com/charmbracelet/log"
)

const (
	checkTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// ErrEmptyDataset is reported by DatasetChecker while no n-gram is loaded.
var ErrEmptyDataset = errors.New("dataset is empty")

// Checker is a named readiness check. Check returns nil when healthy.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// DatasetChecker fails while empty reports true. The process keeps serving
// with an empty store; readiness tells operators the tables are missing.
func DatasetChecker(empty func() bool) Checker {
	return Checker{
		Name: "dataset",
		Check: func(context.Context) error {
			if empty() {
				return ErrEmptyDataset
			}
			return nil
		},
	}
}

type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the admin endpoints. The checker list is fixed at
// construction time.
type Handler struct {
	checkers []Checker
	metrics  http.Handler
}

// New creates a Handler. metrics may be nil to leave /metrics unrouted.
func New(metrics http.Handler, checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c, metrics: metrics}
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz runs every checker in order, each bounded by checkTimeout.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	allOK := true

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			allOK = false
		} else {
			checks[c.Name] = "ok"
		}
	}

	res := result{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// Register adds the admin routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

// Serve listens on addr until ctx is done, then shuts the listener down.
// It returns nil after a clean shutdown.
func Serve(ctx context.Context, addr string, h *Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serveListener(ctx, ln, h)
}

func serveListener(ctx context.Context, ln net.Listener, h *Handler) error {
	logs := logger.New("admin")
	mux := http.NewServeMux()
	h.Register(mux)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logs.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}),
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Debugf("Endpoints listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logs.Debug("Endpoints shut down")
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Encoding admin response: %v", err)
	}
}
