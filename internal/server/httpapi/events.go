package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/logging"
	"github.com/dmitrijs2005/moodnotes/internal/server/services"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// clients connect from app contexts, not browsers
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber is one websocket connection belonging to a user. Writes go
// through a buffered channel so a slow reader never blocks Publish.
type subscriber struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *subscriber) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans note change events out to the owner's open websocket
// subscriptions. It implements services.ChangePublisher.
type Hub struct {
	mu     sync.RWMutex
	logger logging.Logger
	subs   map[string]map[*subscriber]struct{}
}

func NewHub(l logging.Logger) *Hub {
	return &Hub{
		logger: l.With("module", "events_hub"),
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Publish sends the change to every open subscription of userID. Events for
// users without subscribers are dropped.
func (h *Hub) Publish(userID string, change services.NoteChange) {

	data, err := json.Marshal(change)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[userID] {
		select {
		case sub.send <- data:
		default:
			// backlogged subscriber, skip
		}
	}
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[sub.userID] == nil {
		h.subs[sub.userID] = make(map[*subscriber]struct{})
	}
	h.subs[sub.userID][sub] = struct{}{}
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.subs[sub.userID]; ok {
		if _, ok := conns[sub]; ok {
			delete(conns, sub)
			if len(conns) == 0 {
				delete(h.subs, sub.userID)
			}
			sub.close()
		}
	}
}

// CloseAll drops every subscription, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.subs {
		for sub := range conns {
			sub.close()
			sub.conn.Close()
		}
	}
	h.subs = make(map[string]map[*subscriber]struct{})
}

// SubscriberCount returns the number of open subscriptions for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) writePump(sub *subscriber) {
	defer sub.conn.Close()

	for data := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	_ = sub.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

func (h *Hub) readPump(sub *subscriber) {
	defer h.unregister(sub)

	// the feed is one-way; reading only detects disconnects
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// subscribeEvents upgrades the request to a websocket and streams the
// caller's note changes until the peer disconnects.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		return
	}

	sub := &subscriber{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	s.hub.register(sub)
	s.logger.Info(r.Context(), "Subscription opened", "user_id", userID)

	go s.hub.writePump(sub)
	s.hub.readPump(sub)
}
