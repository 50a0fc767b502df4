package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/chathub/internal/server/realtime"
)

// dialWS converts the HTTP base URL into a websocket URL and connects.
func dialWS(ctx context.Context, baseURL string) (*websocket.Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

// session is one live chat connection.
type session struct {
	conn *websocket.Conn
	out  io.Writer
	name string
}

func (s *session) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(realtime.Event{Event: event, Data: data})
}

func (s *session) join() error {
	return s.send(realtime.EventJoin, s.name)
}

func (s *session) sendMessage(text string) error {
	return s.send(realtime.EventMessage, realtime.MessageIn{Username: s.name, Message: text})
}

func (s *session) sendPrivate(to, text string) error {
	return s.send(realtime.EventPrivateMessage, realtime.PrivateMessageIn{To: to, Message: text, From: s.name})
}

// readLoop renders server events until the connection drops.
func (s *session) readLoop(done chan<- struct{}) {
	defer close(done)
	for {
		var evt realtime.Event
		if err := s.conn.ReadJSON(&evt); err != nil {
			fmt.Fprintln(s.out, "* disconnected")
			return
		}
		renderEvent(s.out, evt)
	}
}

// renderEvent prints a single server event in a human-readable form.
func renderEvent(w io.Writer, evt realtime.Event) {
	switch evt.Event {
	case realtime.EventUserJoined:
		var p realtime.UserPresence
		if json.Unmarshal(evt.Data, &p) == nil {
			fmt.Fprintf(w, "* %s joined (%d online)\n", p.Username, p.ActiveUsers)
		}
	case realtime.EventUserLeft:
		var p realtime.UserPresence
		if json.Unmarshal(evt.Data, &p) == nil {
			fmt.Fprintf(w, "* %s left (%d online)\n", p.Username, p.ActiveUsers)
		}
	case realtime.EventActiveUsers:
		var p realtime.ActiveUsers
		if json.Unmarshal(evt.Data, &p) == nil {
			fmt.Fprintf(w, "* online (%d): %s\n", p.Count, strings.Join(p.Users, ", "))
		}
	case realtime.EventMessage:
		var m realtime.MessageOut
		if json.Unmarshal(evt.Data, &m) == nil {
			fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), m.Username, m.Message)
		}
	case realtime.EventPrivateMessage:
		var m realtime.PrivateMessageOut
		if json.Unmarshal(evt.Data, &m) == nil {
			fmt.Fprintf(w, "[pm] %s: %s\n", m.From, m.Message)
		}
	case realtime.EventMessageSent:
		var ack realtime.MessageSent
		if json.Unmarshal(evt.Data, &ack) == nil && ack.Status == realtime.StatusUserNotFound {
			fmt.Fprintf(w, "! no such user: %s\n", ack.To)
		}
	case realtime.EventUserTyping:
		// too noisy for a line-based terminal
	}
}
