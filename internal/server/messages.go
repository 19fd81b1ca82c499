package server

import "encoding/json"

// Inbound message types.
const (
	MsgDeclareName = "declare-name"
	MsgSubmitMove  = "submit-move"
	MsgSendChat    = "send-chat"
)

// Outbound event types.
const (
	EventNameRejected     = "name-rejected"
	EventNameConfirmed    = "name-confirmed"
	EventRoleAssigned     = "role-assigned"
	EventLobbySnapshot    = "lobby-snapshot"
	EventAwaitingOpponent = "awaiting-opponent"
	EventOpponentUpdate   = "opponent-update"
	EventMatchStarted     = "match-started"
	EventPositionUpdate   = "position-update"
	EventMoveApplied      = "move-applied"
	EventMoveRejected     = "move-rejected"
	EventMatchReset       = "match-reset"
	EventMoveError        = "move-error"
	EventChatMessage      = "chat-message"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
