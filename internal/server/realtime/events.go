package realtime

import (
	"encoding/json"
	"time"
)

// Event is the frame exchanged over the websocket in both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventJoin           = "join"
	EventMessage        = "message"
	EventTyping         = "typing"
	EventPrivateMessage = "private_message"
)

// Outbound event names.
const (
	EventUserJoined  = "user_joined"
	EventActiveUsers = "active_users"
	EventUserTyping  = "user_typing"
	EventMessageSent = "message_sent"
	EventUserLeft    = "user_left"
	// message and private_message keep their inbound names on the way out
)

// Delivery statuses carried by message_sent.
const (
	StatusDelivered    = "delivered"
	StatusUserNotFound = "user_not_found"
)

// MessageIn is the payload of an inbound chat message.
type MessageIn struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// TypingIn relays a typing indicator; it is forwarded unmodified.
type TypingIn struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// PrivateMessageIn asks for delivery to a single named recipient.
type PrivateMessageIn struct {
	To      string `json:"to"`
	Message string `json:"message"`
	From    string `json:"from"`
}

// UserPresence announces a join or leave together with the new total.
type UserPresence struct {
	Username    string    `json:"username"`
	Timestamp   time.Time `json:"timestamp"`
	ActiveUsers int       `json:"activeUsers"`
}

// ActiveUsers is the snapshot sent to a connection right after it joins.
type ActiveUsers struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// MessageOut is a broadcast chat message with the server-assigned timestamp.
type MessageOut struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PrivateMessageOut is delivered only to the recipient connection.
type PrivateMessageOut struct {
	From      string    `json:"from"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageSent acknowledges a private message back to its sender.
type MessageSent struct {
	To     string `json:"to"`
	Status string `json:"status"`
}

func newEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Event: name, Data: data}, nil
}
