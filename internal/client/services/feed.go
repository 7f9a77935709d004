package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
)

// Feed manages the live change subscription. At most one subscription is
// active: starting a new one first cancels the previous and waits for its
// pump to finish, so handlers never run concurrently across generations.
type Feed struct {
	client api.Client
	logger logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewFeed(client api.Client, l logging.Logger) *Feed {
	return &Feed{
		client: client,
		logger: l.With("module", "feed"),
	}
}

// Start opens a subscription and invokes handler for every change until the
// feed is stopped, restarted or the connection drops. It blocks only for the
// cancel-and-join of a previous subscription, not for the feed itself.
func (f *Feed) Start(ctx context.Context, handler func(api.NoteChange)) error {

	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopLocked()

	feedCtx, cancel := context.WithCancel(ctx)

	events, err := f.client.Subscribe(feedCtx)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	f.cancel = cancel
	f.done = done

	go func() {
		defer close(done)
		for change := range events {
			handler(change)
		}
		f.logger.Debug(feedCtx, "Subscription closed")
	}()

	f.logger.Info(ctx, "Subscription started")
	return nil
}

// Stop cancels the active subscription, if any, and waits for its pump to
// exit.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
}

func (f *Feed) stopLocked() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
	f.cancel = nil
	f.done = nil
}

// Active reports whether a subscription is currently running.
func (f *Feed) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.done == nil {
		return false
	}
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}
