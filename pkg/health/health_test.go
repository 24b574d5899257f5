package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysPass(context.Context) error { return nil }

func alwaysFail(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serveLive(s *Service) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	return w
}

func serveReady(s *Service) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveEndpoint(t *testing.T) {
	t.Run("all passing", func(t *testing.T) {
		s := New()
		s.AddLivenessCheck("goroutines", time.Second, alwaysPass)
		s.AddLivenessCheck("gc", time.Second, alwaysPass)

		w := serveLive(s)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "ok", decodeStatus(t, w).Status)
	})

	t.Run("no probes registered", func(t *testing.T) {
		w := serveLive(New())
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unhealthy after consecutive failures", func(t *testing.T) {
		s := New()
		s.AddLivenessCheck("db", time.Second, alwaysFail("connection refused"))

		ctx := context.Background()
		for range defaultFailAfter {
			s.liveness[0].poll(ctx)
		}

		w := serveLive(s)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeStatus(t, w)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "connection refused", body.Checks["db"])
	})

	t.Run("failures below threshold stay healthy", func(t *testing.T) {
		s := New()
		s.AddLivenessCheck("flaky", time.Second, alwaysFail("temporary"))

		ctx := context.Background()
		for range defaultFailAfter - 1 {
			s.liveness[0].poll(ctx)
		}

		assert.Equal(t, http.StatusOK, serveLive(s).Code)
	})
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("ready and passing", func(t *testing.T) {
		s := New()
		s.AddReadinessCheck("postgres", time.Second, alwaysPass)
		s.SetReady(true)

		w := serveReady(s)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decodeStatus(t, w).Status)
	})

	t.Run("not ready until SetReady", func(t *testing.T) {
		s := New()
		s.AddReadinessCheck("postgres", time.Second, alwaysPass)

		w := serveReady(s)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, decodeStatus(t, w).Checks, "_readiness")
	})

	t.Run("draining flips back to 503", func(t *testing.T) {
		s := New()
		s.SetReady(true)
		require.Equal(t, http.StatusOK, serveReady(s).Code)

		s.SetReady(false)
		assert.Equal(t, http.StatusServiceUnavailable, serveReady(s).Code)
	})

	t.Run("one failing probe fails readiness", func(t *testing.T) {
		s := New()
		s.AddReadinessCheck("postgres", time.Second, alwaysPass)
		s.AddReadinessCheck("gateway", time.Second, alwaysFail("gateway down"))
		s.SetReady(true)

		ctx := context.Background()
		for range defaultFailAfter {
			s.readiness[1].poll(ctx)
		}

		w := serveReady(s)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeStatus(t, w)
		assert.Contains(t, body.Checks, "gateway")
		assert.NotContains(t, body.Checks, "postgres")
	})
}

func TestIsReady(t *testing.T) {
	s := New()
	s.AddReadinessCheck("postgres", time.Second, alwaysPass)

	assert.False(t, s.IsReady())
	s.SetReady(true)
	assert.True(t, s.IsReady())
	s.SetReady(false)
	assert.False(t, s.IsReady())
}

func TestProbeRecovery(t *testing.T) {
	failing := true
	s := New()
	s.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})
	p := s.liveness[0]
	ctx := context.Background()

	for range defaultFailAfter {
		p.poll(ctx)
	}
	healthy, _ := p.state()
	require.False(t, healthy)

	failing = false
	for range defaultRiseAfter {
		p.poll(ctx)
	}
	healthy, lastErr := p.state()
	assert.True(t, healthy)
	assert.NoError(t, lastErr)
}

func TestStartAndStop(t *testing.T) {
	s := New()
	s.AddLivenessCheck("goroutines", time.Second, alwaysPass)

	s.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	// Stop is idempotent.
	s.Stop()
	s.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	s.AddLivenessCheck("leaky", time.Second, alwaysFail("err"))
	s.AddReadinessCheck("postgres", time.Second, alwaysPass)
	s.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.IsReady()
				serveLive(s)
				serveReady(s)
			}
		}()
	}
	wg.Wait()
	s.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit 0")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
