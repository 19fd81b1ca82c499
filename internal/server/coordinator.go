package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"chess-smash-server/internal/logging"
	"chess-smash-server/internal/rules"
)

type MatchStatus string

const (
	StatusIdle             MatchStatus = "idle"
	StatusAwaitingOpponent MatchStatus = "awaiting_opponent"
	StatusActive           MatchStatus = "active"
)

// Coordinator owns the single match: seat assignment, the lifecycle state
// machine, and turn-gated move forwarding. Every mutation of seats or match
// state runs under one mutex, so concurrent connections observe a single
// consistent order of occupancy changes. Engine calls are pure in-memory and
// may run under the lock; socket writes never do (sinks are buffered and
// drained by per-connection write pumps).
type Coordinator struct {
	registry  *ConnectionRegistry
	broadcast *Broadcaster
	engine    *rules.Engine

	mu       sync.Mutex
	seats    seatTable
	status   MatchStatus
	position *rules.Position
}

func NewCoordinator(registry *ConnectionRegistry, broadcast *Broadcaster, engine *rules.Engine) *Coordinator {
	return &Coordinator{
		registry:  registry,
		broadcast: broadcast,
		engine:    engine,
		status:    StatusIdle,
		position:  engine.StartingPosition(),
	}
}

// Connect registers a new connection. It holds no name and no seat until a
// successful declare-name.
func (c *Coordinator) Connect(id string, sink chan []byte, socket *websocket.Conn) {
	c.registry.Add(id, sink, socket)
	logging.L().Info("connection_open", zap.String("connection_id", id))
}

// DeclareName binds the display name and assigns a role. Empty names are
// rejected back to the originator with no state change. Repeat declarations
// are dropped; the protocol sets a name exactly once per connection.
func (c *Coordinator) DeclareName(id, rawName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.registry.Get(id)
	if conn == nil {
		return
	}
	if conn.Name != "" {
		return
	}

	name, err := c.registry.DeclareName(id, rawName)
	if err != nil {
		if errors.Is(err, ErrEmptyName) {
			c.broadcast.ToConnection(id, EventNameRejected, NameRejectedNotification{
				Reason: "Name cannot be empty.",
			})
		}
		return
	}

	role := c.assignRoleLocked(id, name)
	conn.Role = role

	c.broadcast.ToConnection(id, EventRoleAssigned, RoleAssignedNotification{Role: string(role)})
	c.broadcast.ToConnection(id, EventNameConfirmed, NameConfirmedNotification{Name: name})
	c.broadcast.ToAll(EventLobbySnapshot, c.lobbySnapshotLocked())

	logging.L().Info("role_assigned",
		zap.String("connection_id", id),
		zap.String("name", name),
		zap.String("role", string(role)),
	)

	if role == RoleObserver {
		// Late observers still need the authoritative position to render a
		// consistent board.
		if c.status == StatusActive {
			c.broadcast.ToConnection(id, EventPositionUpdate, PositionUpdate{FEN: c.position.FEN()})
		}
		return
	}

	if c.seats.bothOccupied() && c.status != StatusActive {
		c.startMatchLocked()
		return
	}
	if c.status == StatusIdle {
		c.status = StatusAwaitingOpponent
	}
	c.broadcast.ToConnection(id, EventAwaitingOpponent, struct{}{})
}

// assignRoleLocked seats the connection, or makes it an observer when both
// seats are taken. An empty lobby picks the seat uniformly at random.
func (c *Coordinator) assignRoleLocked(id, name string) Role {
	color, free := c.seats.vacantSeat()
	if !free {
		return RoleObserver
	}
	c.seats.seat(color, SeatOccupant{ConnectionID: id, Name: name})
	return roleFor(color)
}

// startMatchLocked fires the start transition exactly once per occupancy
// completion: per-seat opponent identity and orientation, then the starting
// position to everyone.
func (c *Coordinator) startMatchLocked() {
	c.status = StatusActive
	c.position = c.engine.StartingPosition()

	white := c.seats.occupant(rules.White)
	black := c.seats.occupant(rules.Black)

	c.broadcast.ToConnection(white.ConnectionID, EventOpponentUpdate, OpponentUpdateNotification{
		Name: black.Name,
		Seat: string(RoleBlack),
	})
	c.broadcast.ToConnection(white.ConnectionID, EventMatchStarted, MatchStartedNotification{
		Orientation: string(RoleWhite),
	})
	c.broadcast.ToConnection(black.ConnectionID, EventOpponentUpdate, OpponentUpdateNotification{
		Name: white.Name,
		Seat: string(RoleWhite),
	})
	c.broadcast.ToConnection(black.ConnectionID, EventMatchStarted, MatchStartedNotification{
		Orientation: string(RoleBlack),
	})

	c.broadcast.ToAll(EventPositionUpdate, PositionUpdate{FEN: c.position.FEN()})

	logging.L().Info("match_started",
		zap.String("white", white.Name),
		zap.String("black", black.Name),
	)
}

// Disconnect destroys the connection and cascades: seat vacancy, match reset
// if a seated player left mid-game, and notification of the remaining
// opponent. Always runs to completion; duplicate delivery is a no-op.
func (c *Coordinator) Disconnect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.registry.Remove(id)
	if conn == nil {
		return
	}

	vacated, held := c.seats.clearConnection(id)
	if held && c.status == StatusActive {
		c.status = StatusAwaitingOpponent
		c.position = c.engine.StartingPosition()
		c.broadcast.ToAll(EventMatchReset, struct{}{})
		logging.L().Info("match_reset", zap.String("vacated_seat", string(roleFor(vacated))))
	}

	c.broadcast.ToAll(EventLobbySnapshot, c.lobbySnapshotLocked())

	if held {
		remaining := c.seats.occupant(vacated.Opponent())
		c.broadcast.ToSeated([]*SeatOccupant{remaining}, EventAwaitingOpponent, struct{}{})
	}

	logging.L().Info("connection_closed",
		zap.String("connection_id", id),
		zap.String("name", conn.Name),
		zap.String("role", string(conn.Role)),
	)
}

// SubmitMove forwards a move request through the turn gate to the rules
// engine. Requests outside an active match, from unseated connections, or out
// of turn are dropped without any event; the client UI is expected to prevent
// them.
func (c *Coordinator) SubmitMove(id string, req rules.MoveRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive {
		return
	}
	conn := c.registry.Get(id)
	if conn == nil {
		return
	}
	color, seated := conn.Role.Color()
	if !seated || c.seats.occupant(color) == nil || c.seats.occupant(color).ConnectionID != id {
		return
	}
	if c.engine.TurnOwner(c.position) != color {
		return
	}

	next, record, err := c.applyMove(req)
	if err != nil {
		if errors.Is(err, rules.ErrIllegalMove) {
			c.broadcast.ToConnection(id, EventMoveRejected, req)
			return
		}
		// Engine fault: the requester hears about it, the position stays
		// untouched, everyone else keeps playing.
		logging.L().Error("move_processing_fault",
			zap.String("connection_id", id),
			zap.Error(err),
		)
		c.broadcast.ToConnection(id, EventMoveError, MoveErrorNotification{
			Message: "Error occurred while processing move.",
		})
		return
	}

	c.position = next
	c.broadcast.ToAll(EventMoveApplied, record)
	c.broadcast.ToAll(EventPositionUpdate, PositionUpdate{FEN: c.position.FEN()})

	logging.L().Info("move_applied",
		zap.String("connection_id", id),
		zap.String("uci", record.UCI),
		zap.String("san", record.SAN),
		zap.String("turn", string(c.engine.TurnOwner(c.position))),
	)
}

// applyMove shields the coordinator from rules engine panics.
func (c *Coordinator) applyMove(req rules.MoveRequest) (next *rules.Position, record rules.MoveRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rules engine fault: %v", r)
		}
	}()
	return c.engine.ApplyMove(c.position, req)
}

// SendChat relays a trimmed message to every connection, annotated with the
// sender's declared name. Independent of match state.
func (c *Coordinator) SendChat(id, text string) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return
	}
	if c.registry.Get(id) == nil {
		return
	}
	from := c.registry.NameOf(id)
	if from == "" {
		from = "Player"
	}
	c.broadcast.ToAll(EventChatMessage, ChatMessage{From: from, Text: msg})
}

// Status reports the current lifecycle state.
func (c *Coordinator) Status() MatchStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// PositionFEN reports the authoritative position in canonical form.
func (c *Coordinator) PositionFEN() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position.FEN()
}

func (c *Coordinator) lobbySnapshotLocked() LobbySnapshot {
	snapshot := LobbySnapshot{}
	if occ := c.seats.occupant(rules.White); occ != nil {
		snapshot.White = occ.Name
	}
	if occ := c.seats.occupant(rules.Black); occ != nil {
		snapshot.Black = occ.Name
	}
	return snapshot
}
