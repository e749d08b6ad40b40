package circuitbreaker

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alorle/iptv-zapper/internal/logging"
	"github.com/alorle/iptv-zapper/internal/metrics"
)

var errTestFailure = errors.New("test failure")

// fakeClock lets tests move past the open timeout without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newWithClock(cfg Config) (*breaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	br := New(cfg).(*breaker)
	br.now = clock.Now
	return br, clock
}

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		config         Config
		expectedConfig Config
	}{
		{
			name:           "valid config",
			config:         Config{FailureThreshold: 3, Timeout: 10 * time.Second, HalfOpenRequests: 2, Source: "remote"},
			expectedConfig: Config{FailureThreshold: 3, Timeout: 10 * time.Second, HalfOpenRequests: 2, Source: "remote"},
		},
		{
			name:           "zero values use defaults",
			config:         Config{},
			expectedConfig: Config{FailureThreshold: 5, Timeout: 30 * time.Second, HalfOpenRequests: 1, Source: "default"},
		},
		{
			name:           "partial defaults",
			config:         Config{FailureThreshold: 10},
			expectedConfig: Config{FailureThreshold: 10, Timeout: 30 * time.Second, HalfOpenRequests: 1, Source: "default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := New(tt.config)
			if cb.State() != StateClosed {
				t.Errorf("expected state CLOSED, got %s", cb.State())
			}

			br := cb.(*breaker)
			if br.config.FailureThreshold != tt.expectedConfig.FailureThreshold {
				t.Errorf("expected FailureThreshold %d, got %d", tt.expectedConfig.FailureThreshold, br.config.FailureThreshold)
			}
			if br.config.Timeout != tt.expectedConfig.Timeout {
				t.Errorf("expected Timeout %v, got %v", tt.expectedConfig.Timeout, br.config.Timeout)
			}
			if br.config.HalfOpenRequests != tt.expectedConfig.HalfOpenRequests {
				t.Errorf("expected HalfOpenRequests %d, got %d", tt.expectedConfig.HalfOpenRequests, br.config.HalfOpenRequests)
			}
			if br.config.Source != tt.expectedConfig.Source {
				t.Errorf("expected Source %q, got %q", tt.expectedConfig.Source, br.config.Source)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF-OPEN"},
		{State(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestClosedToOpen(t *testing.T) {
	cb := New(Config{FailureThreshold: 3, Timeout: time.Minute, Source: "test-closed-open"})

	for i := 1; i <= 2; i++ {
		if err := cb.Execute(func() error { return errTestFailure }); !errors.Is(err, errTestFailure) {
			t.Errorf("failure %d: expected test failure error, got %v", i, err)
		}
		if cb.State() != StateClosed {
			t.Errorf("expected state CLOSED after %d failures, got %s", i, cb.State())
		}
	}

	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Errorf("expected state OPEN after 3 failures, got %s", cb.State())
	}
}

func TestOpenBlocksRequests(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, Timeout: time.Minute, Source: "test-open-blocks"})
	_ = cb.Execute(func() error { return errTestFailure })

	err := cb.Execute(func() error {
		t.Error("function should not be called when circuit is OPEN")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if err.Error() != "circuit breaker is open" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestOpenToHalfOpenToClosed(t *testing.T) {
	cb, clock := newWithClock(Config{FailureThreshold: 1, Timeout: 30 * time.Second, HalfOpenRequests: 2, Source: "test-half-open"})

	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Fatalf("expected state OPEN, got %s", cb.State())
	}

	clock.Advance(29 * time.Second)
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit still open before timeout, got %v", err)
	}

	clock.Advance(time.Second)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected no error on first half-open request, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Errorf("expected state HALF-OPEN after first success, got %s", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected no error on second half-open request, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("expected state CLOSED after all half-open successes, got %s", cb.State())
	}
}

func TestHalfOpenFailureToOpen(t *testing.T) {
	cb, clock := newWithClock(Config{FailureThreshold: 1, Timeout: time.Second, HalfOpenRequests: 2, Source: "test-half-open-fail"})

	_ = cb.Execute(func() error { return errTestFailure })
	clock.Advance(time.Second)

	_ = cb.Execute(func() error { return nil })
	if err := cb.Execute(func() error { return errTestFailure }); !errors.Is(err, errTestFailure) {
		t.Errorf("expected test failure error, got %v", err)
	}
	if cb.State() != StateOpen {
		t.Errorf("expected state OPEN after half-open failure, got %s", cb.State())
	}
}

func TestHalfOpenRequestLimit(t *testing.T) {
	cb, clock := newWithClock(Config{FailureThreshold: 1, Timeout: time.Second, HalfOpenRequests: 1, Source: "test-half-open-limit"})

	_ = cb.Execute(func() error { return errTestFailure })
	clock.Advance(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrHalfOpenLimitReached) {
		t.Errorf("expected ErrHalfOpenLimitReached, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("expected probe to succeed, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("expected state CLOSED, got %s", cb.State())
	}
}

func TestClosedSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{FailureThreshold: 3, Timeout: time.Minute, Source: "test-reset-count"})

	_ = cb.Execute(func() error { return errTestFailure })
	_ = cb.Execute(func() error { return errTestFailure })
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("expected no error on success, got %v", err)
	}

	_ = cb.Execute(func() error { return errTestFailure })
	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateClosed {
		t.Errorf("expected state still CLOSED after 2 more failures, got %s", cb.State())
	}

	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Errorf("expected state OPEN after 3 failures, got %s", cb.State())
	}
}

func TestReset(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, Timeout: time.Minute, Source: "test-reset"})

	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Fatalf("expected state OPEN, got %s", cb.State())
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("expected state CLOSED after reset, got %s", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("expected no error after reset, got %v", err)
	}
}

func TestTransitionsAreLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "DEBUG", "json")
	source := "test-observed"

	cb := New(Config{FailureThreshold: 1, Timeout: time.Minute, Logger: logger, Source: source})
	_ = cb.Execute(func() error { return errTestFailure })

	out := buf.String()
	if !strings.Contains(out, `"event":"circuit_breaker_change"`) {
		t.Errorf("expected circuit breaker event in log, got %s", out)
	}
	if !strings.Contains(out, `"source":"test-observed"`) {
		t.Errorf("expected source in log, got %s", out)
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(source)); got != 1 {
		t.Errorf("expected state gauge 1 (OPEN), got %v", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerTrips.WithLabelValues(source)); got != 1 {
		t.Errorf("expected 1 trip, got %v", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	cb := New(Config{FailureThreshold: 5, Timeout: 10 * time.Millisecond, HalfOpenRequests: 2, Source: "test-concurrent"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = cb.Execute(func() error {
					if j%3 == 0 {
						return errTestFailure
					}
					return nil
				})
			}
		}()
	}
	wg.Wait()

	_ = cb.State()
}
