package rpc

import (
	"encoding/json"
	"log"

	"github.com/kerlouan/goswapd/internal/events"
)

// EventPublisher bridges the engine's event bus to websocket subscribers.
// Each event becomes one JSON message on its stream.
type EventPublisher struct {
	ws *WebSocketServer
}

// NewEventPublisher builds a publisher feeding ws.
func NewEventPublisher(ws *WebSocketServer) *EventPublisher {
	return &EventPublisher{ws: ws}
}

// Attach subscribes the publisher to bus.
func (p *EventPublisher) Attach(bus *events.Bus) {
	bus.Subscribe(p.publish)
}

// eventMessage is the wire envelope for a published event.
type eventMessage struct {
	Type    string       `json:"type"`
	Stream  string       `json:"stream"`
	Payload events.Event `json:"payload"`
}

func (p *EventPublisher) publish(ev events.Event) {
	data, err := json.Marshal(eventMessage{
		Type:    ev.Kind(),
		Stream:  ev.Stream(),
		Payload: ev,
	})
	if err != nil {
		log.Printf("rpc: failed to marshal %s event: %v", ev.Kind(), err)
		return
	}
	p.ws.Broadcast(ev.Stream(), data)
}
