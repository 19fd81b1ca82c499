package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chess-smash-server/internal/logging"
	"chess-smash-server/internal/server"
)

func gracefulShutdown(coordServer *server.Server, httpServer *http.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logging.L().Info("shutdown_signal_received")
	stop() // allow a second Ctrl+C to force shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := coordServer.Shutdown(ctx); err != nil {
		logging.L().Warn("coordinator_shutdown_error", zap.Error(err))
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.L().Warn("http_shutdown_error", zap.Error(err))
	}

	done <- true
}

func main() {
	logging.Init()
	defer logging.Sync()

	coordServer, httpServer := server.NewServer()

	done := make(chan bool, 1)
	go gracefulShutdown(coordServer, httpServer, done)

	logging.L().Info("server_listening", zap.String("addr", httpServer.Addr))
	err := httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	logging.L().Info("shutdown_complete")
}
