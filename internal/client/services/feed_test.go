package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/stretchr/testify/require"
)

func TestFeed_DeliversChanges(t *testing.T) {
	f := newFakeClient()
	feed := NewFeed(f, testLogger())

	var (
		mu  sync.Mutex
		got []api.NoteChange
	)
	handler := func(c api.NoteChange) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	}

	require.NoError(t, feed.Start(context.Background(), handler))
	defer feed.Stop()

	f.emit(api.NoteChange{Action: "added", NoteID: "n1"})
	f.emit(api.NoteChange{Action: "deleted", NoteID: "n1"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	require.Equal(t, "added", got[0].Action)
	require.Equal(t, "deleted", got[1].Action)
	mu.Unlock()
}

func TestFeed_RestartCancelsPrevious(t *testing.T) {
	f := newFakeClient()
	feed := NewFeed(f, testLogger())

	require.NoError(t, feed.Start(context.Background(), func(api.NoteChange) {}))
	require.True(t, feed.Active())

	// a second start replaces the first subscription
	require.NoError(t, feed.Start(context.Background(), func(api.NoteChange) {}))
	require.True(t, feed.Active())
	require.Equal(t, 2, f.generations())

	feed.Stop()
	require.False(t, feed.Active())
}

func TestFeed_StopIsIdempotent(t *testing.T) {
	f := newFakeClient()
	feed := NewFeed(f, testLogger())

	feed.Stop() // never started

	require.NoError(t, feed.Start(context.Background(), func(api.NoteChange) {}))
	feed.Stop()
	feed.Stop()
	require.False(t, feed.Active())
}

func TestFeed_SubscribeError(t *testing.T) {
	f := newFakeClient()
	f.subscribeErr = errors.New("no connection")
	feed := NewFeed(f, testLogger())

	err := feed.Start(context.Background(), func(api.NoteChange) {})
	require.Error(t, err)
	require.False(t, feed.Active())
}
