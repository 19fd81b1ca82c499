package rules

import (
	"errors"
	"fmt"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

// Color identifies a chess side. White moves first.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// MoveRequest is a candidate move as submitted by a client.
type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MoveRecord is the canonical record of an accepted move.
type MoveRecord struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Color Color  `json:"color"`
	SAN   string `json:"san"`
	UCI   string `json:"uci"`
}

var ErrIllegalMove = errors.New("illegal move")

// Position is an opaque, immutable handle to a game position. Callers never
// inspect or mutate it directly; all derivations go through the Engine.
type Position struct {
	game  *chesslib.Game
	moves []string // UCI line from the starting position
}

// FEN returns the canonical serialized form of the position.
func (p *Position) FEN() string {
	return p.game.FEN()
}

// Engine validates and applies moves against positions.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// StartingPosition returns a fresh handle at the standard starting position.
func (e *Engine) StartingPosition() *Position {
	return &Position{game: chesslib.NewGame()}
}

// TurnOwner reports which side moves next in the given position.
func (e *Engine) TurnOwner(p *Position) Color {
	if p.game.Position().Turn() == chesslib.White {
		return White
	}
	return Black
}

// ApplyMove validates req against p and applies it to a fresh handle; p
// itself is never mutated. On success the returned handle carries the updated
// position and the record describes the move in canonical form. Rejections
// wrap ErrIllegalMove.
func (e *Engine) ApplyMove(p *Position, req MoveRequest) (*Position, MoveRecord, error) {
	uci := strings.ToLower(strings.TrimSpace(req.From) + strings.TrimSpace(req.To) + strings.TrimSpace(req.Promotion))
	if uci == "" {
		return nil, MoveRecord{}, fmt.Errorf("%w: empty request", ErrIllegalMove)
	}

	pos := p.game.Position()
	mover := White
	if pos.Turn() == chesslib.Black {
		mover = Black
	}

	mv, err := chesslib.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return nil, MoveRecord{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	next, err := replay(p.moves)
	if err != nil {
		return nil, MoveRecord{}, err
	}
	if err := next.PushNotationMove(uci, chesslib.UCINotation{}, nil); err != nil {
		return nil, MoveRecord{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	record := MoveRecord{
		From:  mv.S1().String(),
		To:    mv.S2().String(),
		Color: mover,
		SAN:   chesslib.AlgebraicNotation{}.Encode(pos, mv),
		UCI:   mv.String(),
	}
	line := make([]string, 0, len(p.moves)+1)
	line = append(line, p.moves...)
	line = append(line, uci)
	return &Position{game: next, moves: line}, record, nil
}

// replay rebuilds a game by applying an already-validated UCI line to the
// starting position.
func replay(moves []string) (*chesslib.Game, error) {
	game := chesslib.NewGame()
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, chesslib.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay %s: %w", mv, err)
		}
	}
	return game, nil
}
