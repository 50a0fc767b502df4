package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chathub/internal/server/realtime"
)

func event(t *testing.T, name string, payload any) realtime.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return realtime.Event{Event: name, Data: data}
}

func TestRenderEvent(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		evt  realtime.Event
		want string
	}{
		{
			name: "user joined",
			evt:  event(t, realtime.EventUserJoined, realtime.UserPresence{Username: "bob", ActiveUsers: 2, Timestamp: ts}),
			want: "* bob joined (2 online)\n",
		},
		{
			name: "user left",
			evt:  event(t, realtime.EventUserLeft, realtime.UserPresence{Username: "bob", ActiveUsers: 1, Timestamp: ts}),
			want: "* bob left (1 online)\n",
		},
		{
			name: "active users",
			evt:  event(t, realtime.EventActiveUsers, realtime.ActiveUsers{Count: 2, Users: []string{"alice", "bob"}}),
			want: "* online (2): alice, bob\n",
		},
		{
			name: "private message",
			evt:  event(t, realtime.EventPrivateMessage, realtime.PrivateMessageOut{From: "alice", Message: "psst", Timestamp: ts}),
			want: "[pm] alice: psst\n",
		},
		{
			name: "undeliverable private message",
			evt:  event(t, realtime.EventMessageSent, realtime.MessageSent{To: "ghost", Status: realtime.StatusUserNotFound}),
			want: "! no such user: ghost\n",
		},
		{
			name: "delivered ack is silent",
			evt:  event(t, realtime.EventMessageSent, realtime.MessageSent{To: "bob", Status: realtime.StatusDelivered}),
			want: "",
		},
		{
			name: "typing is silent",
			evt:  event(t, realtime.EventUserTyping, realtime.TypingIn{Username: "alice", IsTyping: true}),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderEvent(&buf, tt.evt)
			if buf.String() != tt.want {
				t.Fatalf("renderEvent = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRenderEvent_Message(t *testing.T) {
	evt := event(t, realtime.EventMessage, realtime.MessageOut{
		Username: "alice", Message: "hello", Timestamp: time.Now(),
	})

	var buf bytes.Buffer
	renderEvent(&buf, evt)

	out := buf.String()
	if !strings.Contains(out, "alice: hello") {
		t.Fatalf("renderEvent = %q", out)
	}
}
