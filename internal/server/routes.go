package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chess-smash-server/internal/logging"
	"chess-smash-server/internal/rules"
)

// outboundBuffer bounds each connection's delivery sink. A slow reader drops
// frames instead of stalling the coordinator.
const outboundBuffer = 64

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/websocket", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status": "ok",
		"match":  string(s.coordinator.Status()),
	}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal health response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(jsonResp); err != nil {
		logging.L().Warn("health_write_failed", zap.Error(err))
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	connectionID := uuid.New().String()
	sink := make(chan []byte, outboundBuffer)
	s.coordinator.Connect(connectionID, sink, socket)

	// Disconnect handling always runs to completion: seat vacancy, possible
	// match reset, opponent notification.
	defer func() {
		s.coordinator.Disconnect(connectionID)
		s.limiter.Forget(connectionID)
	}()

	go writePump(ctx, socket, sink)

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			logging.L().Debug("connection_read_closed",
				zap.String("connection_id", connectionID),
				zap.Error(err),
			)
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		if !s.limiter.Allow(connectionID) {
			logging.L().Warn("rate_limited", zap.String("connection_id", connectionID))
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(socket, ctx, "Invalid JSON")
			continue
		}

		switch msg.Type {
		case "ping":
			s.handlePing(socket, ctx)

		case MsgDeclareName:
			s.handleDeclareName(socket, ctx, connectionID, msg.Payload)

		case MsgSubmitMove:
			s.handleSubmitMove(socket, ctx, connectionID, msg.Payload)

		case MsgSendChat:
			s.handleSendChat(socket, ctx, connectionID, msg.Payload)

		default:
			s.sendError(socket, ctx, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

// writePump drains the connection's sink onto the socket and keeps the
// connection alive with pings. Exits when the handler context is canceled.
func writePump(ctx context.Context, socket *websocket.Conn, sink chan []byte) {
	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case data := <-sink:
			if err := socket.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		case <-ping.C:
			if err := socket.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handlePing(socket *websocket.Conn, ctx context.Context) {
	response := ServerMessage{
		Type:    "pong",
		Payload: struct{}{},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		logging.L().Warn("pong_send_failed", zap.Error(err))
	}
}

func (s *Server) handleDeclareName(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req DeclareNameRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid declare-name payload")
		return
	}
	s.coordinator.DeclareName(connectionID, req.Name)
}

func (s *Server) handleSubmitMove(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req rules.MoveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid submit-move payload")
		return
	}
	s.coordinator.SubmitMove(connectionID, req)
}

func (s *Server) handleSendChat(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid send-chat payload")
		return
	}
	s.coordinator.SendChat(connectionID, req.Text)
}

func (s *Server) sendMessage(socket *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendError(socket *websocket.Conn, ctx context.Context, msg string) {
	response := ServerMessage{
		Type:    "error",
		Payload: ErrorMessage{Message: msg},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		logging.L().Warn("error_send_failed", zap.Error(err))
	}
}
