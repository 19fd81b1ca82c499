package server

import (
	"encoding/json"

	"go.uber.org/zap"

	"chess-smash-server/internal/logging"
)

// Broadcaster routes events to connection sinks. Delivery to an unknown or
// already-closed connection is a silent no-op; a full sink drops the frame
// rather than blocking the caller.
type Broadcaster struct {
	registry *ConnectionRegistry
}

func NewBroadcaster(registry *ConnectionRegistry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// ToAll delivers the event to every live connection.
func (b *Broadcaster) ToAll(messageType string, payload interface{}) {
	data, ok := b.encode(messageType, payload)
	if !ok {
		return
	}
	for _, conn := range b.registry.All() {
		b.push(conn, data, messageType)
	}
}

// ToConnection delivers the event to a single connection.
func (b *Broadcaster) ToConnection(id, messageType string, payload interface{}) {
	conn := b.registry.Get(id)
	if conn == nil {
		return
	}
	data, ok := b.encode(messageType, payload)
	if !ok {
		return
	}
	b.push(conn, data, messageType)
}

// ToSeated delivers the event to the given seat occupants.
func (b *Broadcaster) ToSeated(occupants []*SeatOccupant, messageType string, payload interface{}) {
	data, ok := b.encode(messageType, payload)
	if !ok {
		return
	}
	for _, occ := range occupants {
		if occ == nil {
			continue
		}
		if conn := b.registry.Get(occ.ConnectionID); conn != nil {
			b.push(conn, data, messageType)
		}
	}
}

func (b *Broadcaster) encode(messageType string, payload interface{}) ([]byte, bool) {
	data, err := json.Marshal(ServerMessage{Type: messageType, Payload: payload})
	if err != nil {
		logging.L().Error("encode_event_failed",
			zap.String("type", messageType),
			zap.Error(err),
		)
		return nil, false
	}
	return data, true
}

func (b *Broadcaster) push(conn *Connection, data []byte, messageType string) {
	select {
	case conn.send <- data:
	default:
		logging.L().Warn("outbound_sink_full",
			zap.String("connection_id", conn.ID),
			zap.String("type", messageType),
		)
	}
}
