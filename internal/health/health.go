// Package health serves the liveness and readiness probes.
//
// /healthz answers 200 whenever the process can serve HTTP. /readyz runs
// every registered [Checker] concurrently and reports one of three states:
//
//   - "ok": every check passed.
//   - "degraded": only optional checks failed. Still 200; the persona can
//     talk but voice input or output may be unavailable.
//   - "fail": a required check failed. 503.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/salespractice/internal/resilience"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 5 * time.Second

// Checker probes one dependency.
type Checker struct {
	// Name keys the check in the JSON report, e.g. "llm".
	Name string

	// Check returns nil when the dependency is usable. It must honour ctx.
	Check func(ctx context.Context) error

	// Optional checks degrade readiness instead of failing it.
	Optional bool
}

// Optional returns c marked as optional.
func Optional(c Checker) Checker {
	c.Optional = true
	return c
}

// Report is the body of both probe responses.
type Report struct {
	Status string                 `json:"status"`
	Checks map[string]CheckReport `json:"checks,omitempty"`
}

// CheckReport is the outcome of one [Checker].
type CheckReport struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Optional  bool   `json:"optional,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Handler serves /healthz and /readyz. The checker set is fixed at
// construction.
type Handler struct {
	checkers []Checker
}

// New returns a Handler evaluating checkers on every /readyz request.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Register adds both probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz always answers 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Report{Status: "ok"})
}

// Readyz answers 200 for "ok" and "degraded" and 503 for "fail". A slow or
// failing check never cancels its siblings.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	report := h.Evaluate(r.Context())
	status := http.StatusOK
	if report.Status == "fail" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Evaluate runs every checker, each under its own [checkTimeout], and
// folds the outcomes into a Report.
func (h *Handler) Evaluate(ctx context.Context) Report {
	var (
		mu  sync.Mutex
		out = Report{Status: "ok", Checks: make(map[string]CheckReport, len(h.checkers))}
		g   errgroup.Group
	)
	for _, c := range h.checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			start := time.Now()
			err := c.Check(cctx)
			cancel()

			cr := CheckReport{Status: "ok", Optional: c.Optional, LatencyMS: time.Since(start).Milliseconds()}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				cr.Status, cr.Error = "fail", err.Error()
				switch {
				case !c.Optional:
					out.Status = "fail"
				case out.Status == "ok":
					out.Status = "degraded"
				}
			}
			out.Checks[c.Name] = cr
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// BreakerChecker fails while cb is open. Half-open counts as ready so probe
// traffic can reach the provider.
func BreakerChecker(name string, cb *resilience.CircuitBreaker) Checker {
	return Checker{
		Name: name,
		Check: func(context.Context) error {
			if s := cb.State(); s == resilience.StateOpen {
				return fmt.Errorf("circuit %s is %s", cb.Name(), s)
			}
			return nil
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
