// Package health serves Kubernetes-style liveness and readiness probes.
//
// Probes are polled by a single background goroutine. A probe flips to
// unhealthy only after failAfter consecutive failures and recovers after
// riseAfter consecutive passes, so a single slow database ping does not
// bounce the pod out of the load balancer.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc reports the health of one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailAfter = 3
	defaultRiseAfter = 1
)

// probe is one registered check plus its polling state. All mutable state is
// guarded by mu; the poller writes and the HTTP handlers read.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	mu      sync.Mutex
	healthy bool
	lastErr error
	fails   int
	passes  int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	return &probe{
		name:    name,
		timeout: timeout,
		check:   check,
		// Healthy until the poller proves otherwise, so registration order
		// does not race the first poll.
		healthy: true,
	}
}

// poll runs the check once and applies the consecutive-failure thresholds.
func (p *probe) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.passes = 0
		p.fails++
		if p.fails >= defaultFailAfter {
			p.healthy = false
		}
		return
	}
	p.fails = 0
	p.passes++
	if p.passes >= defaultRiseAfter {
		p.healthy = true
	}
}

// state snapshots the probe for the HTTP handlers.
func (p *probe) state() (healthy bool, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy, p.lastErr
}

// Service owns the registered probes and the readiness flag.
type Service struct {
	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	ready     bool
	cancel    context.CancelFunc
}

// New creates a probe service. It starts not ready; call SetReady(true) once
// initialization is complete.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check for GET /livez. Liveness failures mean
// the process itself is wedged (goroutine leak, runaway GC) and should be
// restarted.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a check for GET /readyz. Readiness failures
// mean a dependency (database, downstream service) is unavailable and traffic
// should be routed elsewhere until it recovers.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, newProbe(name, timeout, check))
}

// Start launches the poller goroutine. Probes registered after Start are not
// picked up; register everything first.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := make([]*probe, 0, len(s.liveness)+len(s.readiness))
	probes = append(probes, s.liveness...)
	probes = append(probes, s.readiness...)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		pollAll(ctx, probes)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pollAll(ctx, probes)
			}
		}
	}()
}

func pollAll(ctx context.Context, probes []*probe) {
	for _, p := range probes {
		if ctx.Err() != nil {
			return
		}
		p.poll(ctx)
	}
}

// Stop cancels the poller. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Graceful shutdown sets it to
// false before draining so the load balancer stops sending new requests.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady reports whether the service was marked ready and every readiness
// probe is passing.
func (s *Service) IsReady() bool {
	s.mu.Lock()
	ready := s.ready
	probes := s.readiness
	s.mu.Unlock()

	if !ready {
		return false
	}
	for _, p := range probes {
		if healthy, _ := p.state(); !healthy {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint handles GET /livez: 200 when every liveness probe passes,
// otherwise 503 with the failing probes listed.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	probes := s.liveness
	s.mu.Unlock()

	serveProbes(w, failures(probes))
}

// ReadyEndpoint handles GET /readyz: 200 only when the service was marked
// ready and every readiness probe passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ready := s.ready
	probes := s.readiness
	s.mu.Unlock()

	failed := failures(probes)
	if !ready {
		failed["_readiness"] = "service is not ready"
	}
	serveProbes(w, failed)
}

func failures(probes []*probe) map[string]string {
	failed := make(map[string]string)
	for _, p := range probes {
		healthy, lastErr := p.state()
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

func serveProbes(w http.ResponseWriter, failed map[string]string) {
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
