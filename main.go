package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrewpaige1/flashcards-api/auth"
	"github.com/andrewpaige1/flashcards-api/config"
	"github.com/andrewpaige1/flashcards-api/decks"
	"github.com/andrewpaige1/flashcards-api/handlers"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/middleware"
	"github.com/andrewpaige1/flashcards-api/repos"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
	env, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(env.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.Connect(env, log)
	if err != nil {
		log.Fatal("failed to connect database", "driver", env.DBDriver, "error", err)
	}

	handler, err := buildHandler(env, log, db)
	if err != nil {
		log.Fatal("failed to build handler", "error", err)
	}

	server := &http.Server{
		Addr:              "0.0.0.0:" + env.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", "addr", server.Addr, "driver", env.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

func buildHandler(env config.Environment, log *logger.Logger, db *gorm.DB) (http.Handler, error) {
	owners := repos.NewOwnerRepo(db)
	tokens := auth.NewTokenIssuer(env.JWTSecret, env.JWTIssuer, env.JWTAudience, env.JWTLifetime)

	h := &handlers.Handler{
		Decks: decks.NewEngine(db, repos.NewDeckRepo(db), repos.NewElementRepo(db), repos.NewPairingRepo(db), log),
		Auth:  auth.NewService(db, owners, tokens, log),
		Log:   log,
	}

	authMiddleware, err := middleware.EnsureValidToken(env.JWTSecret, env.JWTIssuer, env.JWTAudience, log)
	if err != nil {
		return nil, err
	}
	requireOwner := middleware.RequireOwner(owners, log)
	protect := func(next http.HandlerFunc) http.Handler {
		return authMiddleware(requireOwner(next))
	}

	mux := http.NewServeMux()
	h.Register(mux, protect)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	return middleware.RequestLog(log)(corsHandler), nil
}
