package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/gorilla/websocket"
)

// wsURL converts the client's base URL to the websocket endpoint.
func (c *HTTPClient) wsURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/notes/events"
}

// Subscribe opens the live change feed for the signed-in user. Events are
// delivered on the returned channel until ctx is cancelled or the connection
// drops, after which the channel is closed.
func (c *HTTPClient) Subscribe(ctx context.Context) (<-chan NoteChange, error) {

	access, _ := c.tokens()
	if access == "" {
		return nil, common.ErrorUnauthenticated
	}

	header := http.Header{}
	header.Set(common.AccessTokenHeaderName, common.BearerPrefix+access)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(), header)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorNoConnection, err)
	}

	events := make(chan NoteChange)
	done := make(chan struct{})

	// unblocks the reader on cancellation; done lets it exit as soon as the
	// connection drops on its own
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var change NoteChange
			if err := json.Unmarshal(data, &change); err != nil {
				continue
			}

			select {
			case events <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
