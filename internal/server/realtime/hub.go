package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/chathub/internal/logging"
)

// Hub routes chat events between connections. It owns the client set and the
// presence registry; all mutation happens through Register, Unregister and
// HandleEvent, which are safe to call from concurrent read pumps.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	registry *Registry
	logger   logging.Logger
	now      func() time.Time
}

func NewHub(registry *Registry, logger logging.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// Register adds a freshly upgraded connection. The connection is not part of
// the chat until it sends a join event.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Info(context.Background(), "client connected", "conn_id", c.ID)
}

// Unregister removes a connection and, if it had joined, announces the
// departure to everyone left. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c.ID]
	if present {
		delete(h.clients, c.ID)
		// send stays open so in-flight broadcasts cannot panic;
		// closing done tells the write pump to shut the connection
		close(c.done)
	}
	h.mu.Unlock()

	if !present {
		return
	}

	name, joined := h.registry.Remove(c.ID)
	if !joined {
		h.logger.Info(context.Background(), "client disconnected", "conn_id", c.ID)
		return
	}

	h.logger.Info(context.Background(), "user left", "conn_id", c.ID, "username", name)
	h.broadcast(EventUserLeft, UserPresence{
		Username:    name,
		Timestamp:   h.now().UTC(),
		ActiveUsers: h.registry.Size(),
	})
}

// HandleEvent dispatches a single inbound frame from a connection. Events
// other than join are dropped with a warning until the connection has joined.
func (h *Hub) HandleEvent(c *Client, evt Event) {
	if evt.Event == EventJoin {
		h.handleJoin(c, evt.Data)
		return
	}

	if _, ok := h.registry.Get(c.ID); !ok {
		h.logger.Warn(context.Background(), "event before join", "conn_id", c.ID, "event", evt.Event)
		return
	}

	switch evt.Event {
	case EventMessage:
		h.handleMessage(c, evt.Data)
	case EventTyping:
		h.handleTyping(c, evt.Data)
	case EventPrivateMessage:
		h.handlePrivateMessage(c, evt.Data)
	default:
		h.logger.Warn(context.Background(), "unknown event", "conn_id", c.ID, "event", evt.Event)
	}
}

func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var username string
	if err := json.Unmarshal(data, &username); err != nil || strings.TrimSpace(username) == "" {
		h.logger.Warn(context.Background(), "join with invalid username", "conn_id", c.ID)
		return
	}
	username = strings.TrimSpace(username)

	h.registry.Put(c.ID, username)
	h.logger.Info(context.Background(), "user joined", "conn_id", c.ID, "username", username)

	h.broadcast(EventUserJoined, UserPresence{
		Username:    username,
		Timestamp:   h.now().UTC(),
		ActiveUsers: h.registry.Size(),
	})

	h.sendTo(c.ID, EventActiveUsers, ActiveUsers{
		Count: h.registry.Size(),
		Users: h.registry.AllNames(),
	})
}

func (h *Hub) handleMessage(c *Client, data json.RawMessage) {
	var in MessageIn
	if err := json.Unmarshal(data, &in); err != nil {
		h.logger.Warn(context.Background(), "malformed message payload", "conn_id", c.ID)
		return
	}

	h.broadcast(EventMessage, MessageOut{
		Username:  in.Username,
		Message:   in.Message,
		Timestamp: h.now().UTC(),
	})
}

func (h *Hub) handleTyping(c *Client, data json.RawMessage) {
	var in TypingIn
	if err := json.Unmarshal(data, &in); err != nil {
		h.logger.Warn(context.Background(), "malformed typing payload", "conn_id", c.ID)
		return
	}
	// the sender already knows it is typing
	h.broadcastExcept(c.ID, EventUserTyping, in)
}

func (h *Hub) handlePrivateMessage(c *Client, data json.RawMessage) {
	var in PrivateMessageIn
	if err := json.Unmarshal(data, &in); err != nil {
		h.logger.Warn(context.Background(), "malformed private message payload", "conn_id", c.ID)
		return
	}

	from, _ := h.registry.Get(c.ID)

	recipientID, found := h.registry.FindByName(in.To)
	if !found {
		h.sendTo(c.ID, EventMessageSent, MessageSent{To: in.To, Status: StatusUserNotFound})
		return
	}

	h.sendTo(recipientID, EventPrivateMessage, PrivateMessageOut{
		From:      from,
		Message:   in.Message,
		Timestamp: h.now().UTC(),
	})
	h.sendTo(c.ID, EventMessageSent, MessageSent{To: in.To, Status: StatusDelivered})
}

// broadcast delivers an event to every connected client, joined or not.
func (h *Hub) broadcast(name string, payload any) {
	h.deliver(name, payload, func(id string) bool { return true })
}

func (h *Hub) broadcastExcept(exceptID, name string, payload any) {
	h.deliver(name, payload, func(id string) bool { return id != exceptID })
}

func (h *Hub) sendTo(connID, name string, payload any) {
	h.deliver(name, payload, func(id string) bool { return id == connID })
}

// deliver marshals the event once and pushes it to every matching client.
// Clients whose send buffer is full are dropped from the hub.
func (h *Hub) deliver(name string, payload any, match func(id string) bool) {
	evt, err := newEvent(name, payload)
	if err != nil {
		h.logger.Error(context.Background(), "marshaling event payload", "event", name, "error", err)
		return
	}
	frame, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error(context.Background(), "marshaling event frame", "event", name, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		if match(id) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	var stalled []*Client
	for _, c := range targets {
		select {
		case c.send <- frame:
		default:
			stalled = append(stalled, c)
		}
	}

	for _, c := range stalled {
		h.logger.Warn(context.Background(), "dropping slow client", "conn_id", c.ID)
		h.Unregister(c)
	}
}
