package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/chathub/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the HTTP API is already open to any origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and attaches the connection to the hub.
func ServeWS(hub *Hub, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
			return
		}

		c := newClient(hub, conn)
		hub.Register(c)

		go c.writePump()
		go c.readPump()
	}
}
