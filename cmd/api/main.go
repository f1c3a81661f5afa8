package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/usergate/usergate-go/internal/auth"
	"github.com/usergate/usergate-go/internal/config"
	"github.com/usergate/usergate-go/internal/handler"
	"github.com/usergate/usergate-go/internal/repository"
	"github.com/usergate/usergate-go/internal/service"
	"github.com/usergate/usergate-go/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	// The signing key lives only in this process. Tokens issued before a
	// restart, or by another instance, will not verify.
	tokens, err := token.NewService(cfg.TokenExpiry)
	if err != nil {
		slog.Error("signing key generation failed", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	identities := auth.NewStoreLoader(userRepo)
	userService := service.NewUserService(userRepo, identities, tokens)
	userHandler := handler.NewUserHandler(userService)

	r := handler.NewRouter(userHandler, tokens, identities)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
