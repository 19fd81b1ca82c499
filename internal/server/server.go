package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"chess-smash-server/internal/logging"
	"chess-smash-server/internal/rules"
)

const defaultPort = 3000

type Server struct {
	port           int
	allowedOrigins []string

	registry    *ConnectionRegistry
	coordinator *Coordinator
	limiter     *RateLimiter
}

func NewServer() (*Server, *http.Server) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = defaultPort
	}

	registry := NewConnectionRegistry()
	broadcaster := NewBroadcaster(registry)
	coordinator := NewCoordinator(registry, broadcaster, rules.NewEngine())

	srv := &Server{
		port:           port,
		allowedOrigins: parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		registry:       registry,
		coordinator:    coordinator,
		limiter:        NewRateLimiter(20, time.Second),
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.port),
		Handler:      srv.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return srv, httpServer
}

// Shutdown closes every live websocket so clients see a clean going-away
// instead of a dropped TCP stream.
func (s *Server) Shutdown(_ context.Context) error {
	logging.L().Info("server_shutdown",
		zap.Int("connections", len(s.registry.All())),
	)
	s.registry.CloseAll(websocket.StatusGoingAway, "Server shutting down")
	return nil
}

func parseOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
