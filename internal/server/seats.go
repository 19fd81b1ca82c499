package server

import (
	"crypto/rand"
	"math/big"

	"chess-smash-server/internal/rules"
)

// Role is a connection's relationship to the match.
type Role string

const (
	RoleObserver Role = "observer"
	RoleWhite    Role = "white"
	RoleBlack    Role = "black"
)

// Color maps a seated role to its chess side. Observers have no side.
func (r Role) Color() (rules.Color, bool) {
	switch r {
	case RoleWhite:
		return rules.White, true
	case RoleBlack:
		return rules.Black, true
	default:
		return "", false
	}
}

func roleFor(c rules.Color) Role {
	if c == rules.White {
		return RoleWhite
	}
	return RoleBlack
}

// SeatOccupant records who holds a seat.
type SeatOccupant struct {
	ConnectionID string
	Name         string
}

// seatTable holds the two seats of the single match. Not safe for concurrent
// use on its own; the Coordinator serializes all access.
type seatTable struct {
	white *SeatOccupant
	black *SeatOccupant
}

func (t *seatTable) occupant(c rules.Color) *SeatOccupant {
	if c == rules.White {
		return t.white
	}
	return t.black
}

func (t *seatTable) seat(c rules.Color, occ SeatOccupant) {
	if c == rules.White {
		t.white = &occ
	} else {
		t.black = &occ
	}
}

func (t *seatTable) bothOccupied() bool {
	return t.white != nil && t.black != nil
}

// vacantSeat returns a free seat color, preferring neither. ok is false when
// both seats are taken.
func (t *seatTable) vacantSeat() (rules.Color, bool) {
	switch {
	case t.white == nil && t.black == nil:
		return randomColor(), true
	case t.white == nil:
		return rules.White, true
	case t.black == nil:
		return rules.Black, true
	default:
		return "", false
	}
}

// clearConnection vacates any seat held by the connection. Idempotent.
func (t *seatTable) clearConnection(id string) (rules.Color, bool) {
	if t.white != nil && t.white.ConnectionID == id {
		t.white = nil
		return rules.White, true
	}
	if t.black != nil && t.black.ConnectionID == id {
		t.black = nil
		return rules.Black, true
	}
	return "", false
}

// randomColor picks a seat with crypto/rand so repeated empty-lobby
// assignments carry no first-seat bias.
func randomColor() rules.Color {
	if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 0 {
		return rules.Black
	}
	return rules.White
}
