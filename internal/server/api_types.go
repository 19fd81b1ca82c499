package server

// ============================================================================
// ERROR RESPONSES
// ============================================================================

type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ============================================================================
// NAME DECLARATION (declare-name)
// ============================================================================

type DeclareNameRequest struct {
	Name string `json:"name"`
}

type NameRejectedNotification struct {
	Reason string `json:"reason"`
}

type NameConfirmedNotification struct {
	Name string `json:"name"`
}

type RoleAssignedNotification struct {
	Role string `json:"role"` // white | black | observer
}

// ============================================================================
// LOBBY STATE (lobby-snapshot broadcast)
// ============================================================================

// LobbySnapshot lists the seat occupants by name; empty string for a vacant
// seat. The only event broadcast unconditionally to every connection.
type LobbySnapshot struct {
	White string `json:"white"`
	Black string `json:"black"`
}

// ============================================================================
// MATCH LIFECYCLE (opponent-update, match-started, match-reset, position-update)
// ============================================================================

type OpponentUpdateNotification struct {
	Name string `json:"name"`
	Seat string `json:"seat"` // opponent's seat: white | black
}

type MatchStartedNotification struct {
	Orientation string `json:"orientation"` // this connection's board orientation
}

type PositionUpdate struct {
	FEN string `json:"fen"`
}

// ============================================================================
// MOVES (submit-move, move-error)
// ============================================================================
// submit-move payloads decode into rules.MoveRequest; move-applied carries a
// rules.MoveRecord and move-rejected echoes the original rules.MoveRequest.

type MoveErrorNotification struct {
	Message string `json:"message"`
}

// ============================================================================
// CHAT (send-chat, chat-message)
// ============================================================================

type ChatRequest struct {
	Text string `json:"text"`
}

type ChatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}
