package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scribe/api/internal/account"
	"scribe/api/internal/app"
	"scribe/api/internal/auth"
	"scribe/api/internal/avatar"
	"scribe/api/internal/config"
	"scribe/api/internal/realtime"
	"scribe/api/internal/session"
	"scribe/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	verifyScoped := func(token string) error {
		_, err := auth.ParseScopedToken([]byte(cfg.AuthSecret), token, cfg.ExchangeAudience)
		return err
	}
	dataStore := store.NewPostgresStore(db, verifyScoped)

	sessions, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer sessions.Close()

	avatars, err := avatar.NewMinioResolver(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
		cfg.AvatarURLTTL,
	)
	if err != nil {
		log.Fatalf("minio connection failed: %v", err)
	}
	if avatars == nil {
		log.Printf("avatar storage not configured, passing avatar references through")
	}

	accounts := account.NewService(dataStore, sessions, cfg.AuthSecret, cfg.SessionTTL, cfg.ExchangeTTL)
	rt := realtime.NewClient(cfg.RealtimeSecret, cfg.RealtimeTTL)
	service := app.New(cfg, dataStore, accounts, rt, avatars)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Scribe API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
