// Package health exposes Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically in the background. A check flips to
// unhealthy only after FailureThreshold consecutive failures and back to
// healthy after SuccessThreshold consecutive passes, so a single slow probe
// does not bounce the service out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Check reports whether a component is healthy. A nil return means healthy.
type Check func(ctx context.Context) error

// Options tunes probe execution. Zero values fall back to defaults.
type Options struct {
	// Interval between consecutive runs of each check. Default 5s.
	Interval time.Duration
	// Timeout applied to a single check invocation. Default 2s.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures before a check
	// is considered unhealthy. Default 3.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive passes before a failed
	// check is considered healthy again. Default 1.
	SuccessThreshold int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 5 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 3
	}
	if o.SuccessThreshold <= 0 {
		o.SuccessThreshold = 1
	}
	return o
}

type probe struct {
	name  string
	check Check

	mu      sync.Mutex
	healthy bool
	lastErr error
	fails   int
	passes  int
}

func (p *probe) run(ctx context.Context, opts Options) {
	checkCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	err := p.check(checkCtx)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.passes = 0
		p.fails++
		if p.fails >= opts.FailureThreshold {
			p.healthy = false
		}
		return
	}
	p.fails = 0
	p.passes++
	if p.passes >= opts.SuccessThreshold {
		p.healthy = true
	}
}

func (p *probe) status() (healthy bool, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy, p.lastErr
}

// Health tracks liveness and readiness probes for a service.
type Health struct {
	opts  Options
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates a Health with the given options. The service starts not ready;
// call SetReady(true) once initialization finishes.
func New(opts Options) *Health {
	return &Health{opts: opts.withDefaults()}
}

// AddLiveness registers a liveness check, e.g. a goroutine leak detector.
func (h *Health) AddLiveness(name string, check Check) {
	h.add(&h.liveness, name, check)
}

// AddReadiness registers a readiness check, e.g. database connectivity.
func (h *Health) AddReadiness(name string, check Check) {
	h.add(&h.readiness, name, check)
}

func (h *Health) add(dst *[]*probe, name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Probes start healthy so a service is not reported down before the
	// first check has run.
	*dst = append(*dst, &probe{name: name, check: check, healthy: true})
}

// Start launches one goroutine per registered probe. Each probe runs once
// immediately and then at the configured interval until ctx is cancelled or
// Stop is called.
func (h *Health) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go h.loop(ctx, p)
	}
}

func (h *Health) loop(ctx context.Context, p *probe) {
	ticker := time.NewTicker(h.opts.Interval)
	defer ticker.Stop()

	p.run(ctx, h.opts)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx, h.opts)
		}
	}
}

// Stop cancels the probe goroutines. Safe to call multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. It is set true after startup and
// false at the beginning of graceful shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	h.mu.Lock()
	probes := h.readiness
	h.mu.Unlock()
	for _, p := range probes {
		if ok, _ := p.status(); !ok {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the /livez probe: 200 while all liveness checks pass,
// 503 with per-check failure messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	probes := make([]*probe, len(h.liveness))
	copy(probes, h.liveness)
	h.mu.Unlock()

	writeStatus(w, failures(probes))
}

// ReadyEndpoint serves the /readyz probe: 200 once SetReady(true) has been
// called and all readiness checks pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()

	h.mu.Lock()
	probes := make([]*probe, len(h.readiness))
	copy(probes, h.readiness)
	h.mu.Unlock()

	failed := failures(probes)
	if !ready {
		failed["_readiness"] = "service is not ready"
	}
	writeStatus(w, failed)
}

func failures(probes []*probe) map[string]string {
	failed := make(map[string]string)
	for _, p := range probes {
		healthy, lastErr := p.status()
		if healthy {
			continue
		}
		if lastErr != nil {
			failed[p.name] = lastErr.Error()
		} else {
			failed[p.name] = "check is unhealthy"
		}
	}
	return failed
}

func writeStatus(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failed
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
