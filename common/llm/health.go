package llm

import (
	"sync"
	"time"
)

type HealthState string

const (
	HealthStateClosed   HealthState = "closed"
	HealthStateOpen     HealthState = "open"
	HealthStateHalfOpen HealthState = "half_open"
)

type HealthConfig struct {
	FailureThreshold int           // consecutive upstream failures before opening
	Cooldown         time.Duration // time spent open before a trial call is allowed
}

// Health tracks the completion provider's recent behaviour. It is owned by
// whoever constructs the Client and shared with callers that want to back off
// while the provider is failing. A nil *Health ignores all calls.
type Health struct {
	mu          sync.Mutex
	threshold   int
	cooldown    time.Duration
	state       HealthState
	failures    int
	lastChecked time.Time
	lastFailure time.Time
	lastError   string
	now         func() time.Time
}

// HealthSnapshot is a point-in-time copy of Health.
type HealthSnapshot struct {
	State               HealthState `json:"state"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	LastCheckedAt       *time.Time  `json:"last_checked_at,omitempty"`
	LastFailureAt       *time.Time  `json:"last_failure_at,omitempty"`
	LastError           string      `json:"last_error,omitempty"`
}

func NewHealth(cfg HealthConfig) *Health {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	return &Health{
		threshold: cfg.FailureThreshold,
		cooldown:  cfg.Cooldown,
		state:     HealthStateClosed,
		now:       time.Now,
	}
}

func (h *Health) RecordSuccess() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastChecked = h.now()
	h.failures = 0
	h.state = HealthStateClosed
}

func (h *Health) RecordFailure(err error) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.lastChecked = now
	h.lastFailure = now
	h.failures++
	if err != nil {
		h.lastError = err.Error()
	}

	// A failed trial call reopens immediately.
	if h.state == HealthStateHalfOpen || h.failures >= h.threshold {
		h.state = HealthStateOpen
	}
}

// Allow reports whether background work should call the provider now.
// An open tracker moves to half-open once the cooldown has elapsed.
func (h *Health) Allow() bool {
	if h == nil {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == HealthStateOpen && h.now().Sub(h.lastFailure) >= h.cooldown {
		h.state = HealthStateHalfOpen
	}
	return h.state != HealthStateOpen
}

func (h *Health) Snapshot() HealthSnapshot {
	if h == nil {
		return HealthSnapshot{State: HealthStateClosed}
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := HealthSnapshot{
		State:               h.state,
		ConsecutiveFailures: h.failures,
		LastError:           h.lastError,
	}
	if !h.lastChecked.IsZero() {
		t := h.lastChecked
		snap.LastCheckedAt = &t
	}
	if !h.lastFailure.IsZero() {
		t := h.lastFailure
		snap.LastFailureAt = &t
	}
	return snap
}
