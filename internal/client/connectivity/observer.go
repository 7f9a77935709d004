// Package connectivity tracks server reachability by probing the backend at
// a fixed interval and publishing status transitions.
package connectivity

import (
	"context"
	"sync"
	"time"
)

// Status describes the current view of server reachability.
type Status int

const (
	// StatusUnavailable is the initial state before the first probe succeeds.
	StatusUnavailable Status = iota
	// StatusAvailable means the last probe succeeded.
	StatusAvailable
	// StatusLosing means the connection was available and one probe just failed.
	StatusLosing
	// StatusLost means probes keep failing after StatusLosing.
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusLosing:
		return "losing"
	case StatusLost:
		return "lost"
	default:
		return "unavailable"
	}
}

// Online reports whether requests are expected to succeed.
func (s Status) Online() bool { return s == StatusAvailable }

// Pinger probes the server once.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Observer polls a Pinger and fans status transitions out to subscribers.
type Observer struct {
	pinger   Pinger
	interval time.Duration

	mu      sync.Mutex
	current Status
	subs    []chan Status
}

func NewObserver(p Pinger, interval time.Duration) *Observer {
	return &Observer{
		pinger:   p,
		interval: interval,
		current:  StatusUnavailable,
	}
}

// Current returns the last observed status.
func (o *Observer) Current() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Subscribe returns a channel that receives every status transition. The
// channel is buffered; a slow consumer misses intermediate transitions
// rather than blocking the probe loop.
func (o *Observer) Subscribe() <-chan Status {
	ch := make(chan Status, 4)
	o.mu.Lock()
	o.subs = append(o.subs, ch)
	o.mu.Unlock()
	return ch
}

func (o *Observer) transition(next Status) {
	o.mu.Lock()
	if o.current == next {
		o.mu.Unlock()
		return
	}
	o.current = next
	subs := append([]chan Status(nil), o.subs...)
	o.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- next:
		default:
		}
	}
}

// probe runs one reachability check and applies the transition rules:
// success always yields Available; the first failure after Available yields
// Losing, the next failure Lost.
func (o *Observer) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := o.pinger.Ping(probeCtx)
	cancel()

	if err == nil {
		o.transition(StatusAvailable)
		return
	}

	switch o.Current() {
	case StatusAvailable:
		o.transition(StatusLosing)
	case StatusLosing:
		o.transition(StatusLost)
	}
}

// Run probes until ctx is cancelled. The first probe fires immediately.
func (o *Observer) Run(ctx context.Context) {

	o.probe(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
