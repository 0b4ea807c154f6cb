package gateway

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	maxTimeout     = 2 * time.Minute
	timeoutSteps   = 5
)

// Timeouts is a ladder of HTTP timeouts. Failed requests move one step up,
// successful ones one step down.
type Timeouts struct {
	mu       sync.RWMutex
	timeouts []time.Duration
	current  int
}

// NewTimeouts builds a ladder from ascending values. A single value is grown
// into a ladder by doubling, capped at two minutes.
func NewTimeouts(values ...time.Duration) (*Timeouts, error) {
	if len(values) == 0 {
		return nil, errors.New("timeouts are not set")
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return nil, fmt.Errorf("timeout values must be in ascending order, got %v <= %v", values[i], values[i-1])
		}
	}
	if len(values) == 1 {
		values = timeoutLadder(values[0])
	}
	return &Timeouts{timeouts: values}, nil
}

func timeoutLadder(initial time.Duration) []time.Duration {
	ladder := []time.Duration{initial}
	for next := 2 * initial; len(ladder) < timeoutSteps && next <= maxTimeout; next *= 2 {
		ladder = append(ladder, next)
	}
	return ladder
}

// ParseTimeouts parses a comma separated list of durations.
func ParseTimeouts(value string) ([]time.Duration, error) {
	var timeouts []time.Duration
	for i, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout parameter number %d: %v", i+1, err)
		}
		timeouts = append(timeouts, d)
	}
	if len(timeouts) == 0 {
		return nil, errors.New("timeouts are not set")
	}
	return timeouts, nil
}

func (t *Timeouts) Current() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.timeouts[t.current]
}

func (t *Timeouts) Increase() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current < len(t.timeouts)-1 {
		t.current++
	}
}

func (t *Timeouts) Decrease() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current > 0 {
		t.current--
	}
}

func (t *Timeouts) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	timeouts := make([]string, len(t.timeouts))
	for i, d := range t.timeouts {
		timeouts[i] = d.String()
	}
	return strings.Join(timeouts, ",")
}
