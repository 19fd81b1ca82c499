package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestStartingPosition(t *testing.T) {
	e := NewEngine()
	pos := e.StartingPosition()

	assert.Equal(t, startFEN, pos.FEN())
	assert.Equal(t, White, e.TurnOwner(pos))
}

func TestApplyMove_LegalMove(t *testing.T) {
	e := NewEngine()
	pos := e.StartingPosition()

	next, record, err := e.ApplyMove(pos, MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}

	assert.Equal(t, "e2", record.From)
	assert.Equal(t, "e4", record.To)
	assert.Equal(t, White, record.Color)
	assert.Equal(t, "e4", record.SAN)
	assert.Equal(t, "e2e4", record.UCI)

	// Turn flips to black after white's move
	assert.Equal(t, Black, e.TurnOwner(next))
	assert.NotEqual(t, startFEN, next.FEN())
}

func TestApplyMove_AlternatingColors(t *testing.T) {
	e := NewEngine()
	pos := e.StartingPosition()

	pos, rec1, err := e.ApplyMove(pos, MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("white move failed: %v", err)
	}
	assert.Equal(t, White, rec1.Color)

	pos, rec2, err := e.ApplyMove(pos, MoveRequest{From: "e7", To: "e5"})
	if err != nil {
		t.Fatalf("black move failed: %v", err)
	}
	assert.Equal(t, Black, rec2.Color)
	assert.Equal(t, White, e.TurnOwner(pos))
}

func TestApplyMove_InputHandleUnchanged(t *testing.T) {
	e := NewEngine()
	start := e.StartingPosition()

	next, _, err := e.ApplyMove(start, MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}

	// The accepted move lands on a fresh handle; the input still describes
	// the pre-move position.
	assert.Equal(t, startFEN, start.FEN())
	assert.Equal(t, White, e.TurnOwner(start))
	assert.NotEqual(t, start.FEN(), next.FEN())

	// A second move from the original handle sees the original position.
	_, record, err := e.ApplyMove(start, MoveRequest{From: "d2", To: "d4"})
	if err != nil {
		t.Fatalf("ApplyMove from original handle failed: %v", err)
	}
	assert.Equal(t, "d2d4", record.UCI)
}

func TestApplyMove_IllegalMove(t *testing.T) {
	e := NewEngine()
	pos := e.StartingPosition()
	before := pos.FEN()

	// A pawn cannot jump three squares
	_, _, err := e.ApplyMove(pos, MoveRequest{From: "e2", To: "e5"})
	assert.True(t, errors.Is(err, ErrIllegalMove), "expected ErrIllegalMove, got %v", err)
	assert.Equal(t, before, pos.FEN(), "rejected move must not change the position")
}

func TestApplyMove_GarbageInput(t *testing.T) {
	e := NewEngine()
	pos := e.StartingPosition()

	cases := []MoveRequest{
		{},
		{From: "zz", To: "99"},
		{From: "e2"},
		{From: "e4", To: "e2"}, // no piece / wrong side
	}
	for _, req := range cases {
		_, _, err := e.ApplyMove(pos, req)
		assert.True(t, errors.Is(err, ErrIllegalMove), "request %+v should be illegal, got %v", req, err)
	}
}

func TestApplyMove_Promotion(t *testing.T) {
	e := NewEngine()
	pos := e.StartingPosition()

	// Walk a white pawn to promotion with filler black moves.
	moves := []MoveRequest{
		{From: "h2", To: "h4"}, {From: "g7", To: "g5"},
		{From: "h4", To: "g5"}, {From: "b8", To: "c6"},
		{From: "g5", To: "g6"}, {From: "c6", To: "b8"},
		{From: "g6", To: "h7"}, {From: "b8", To: "c6"},
		{From: "h7", To: "g8", Promotion: "q"},
	}

	var (
		record MoveRecord
		err    error
	)
	for _, req := range moves {
		pos, record, err = e.ApplyMove(pos, req)
		if err != nil {
			t.Fatalf("move %+v failed: %v", req, err)
		}
	}

	assert.Equal(t, "h7g8q", record.UCI)
	assert.Equal(t, White, record.Color)
}

func TestColorOpponent(t *testing.T) {
	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, White, Black.Opponent())
}
