package handlers

import "github.com/rlattimer/scorebook/internal/api/websocket"

// Broadcaster pushes live score events to connected scoreboard clients.
// *websocket.Hub satisfies it.
type Broadcaster interface {
	BroadcastEvent(event websocket.Event) bool
}

// broadcast sends an event when a hub is attached. Handlers also run
// without one, so a nil broadcaster is fine.
func broadcast(b Broadcaster, eventType string, data interface{}) {
	if b == nil {
		return
	}
	b.BroadcastEvent(websocket.Event{Type: eventType, Data: data})
}
