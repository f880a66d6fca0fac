package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/handler"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	"github.com/w3wg/crypto-sage/internal/service/ai"
	"github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/internal/view"
	"github.com/w3wg/crypto-sage/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	// Bootstrap logger until the configured one is available.
	_ = log.Init(log.Config{Level: "info", Format: "json"})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}

	if err := log.Init(log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}); err != nil {
		log.Fatal("failed to initialize logger", err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Infow("no .env file loaded, continuing with system environment variables only", "reason", envErr.Error())
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	sessions := chat.NewService(chat.WithTTL(cfg.Session.TTL))

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatal("failed to initialize completion service", err)
	}
	log.Infow("completion service initialized", "provider", cfg.AI.Provider, "model", aiService.Model(), "baseURL", cfg.AI.BaseURL)

	loop := chat.NewLoop(sessions, aiService, personaStore, chat.CredentialPolicy{
		Prefix: cfg.Credential.Prefix,
		Length: cfg.Credential.Length,
	})

	renderer, err := view.New(view.NewMarkdown())
	if err != nil {
		log.Fatal("failed to load page templates", err)
	}

	router := handler.NewRouter(personaStore, loop, renderer, cfg.UI)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("crypto-sage listening", "addr", srv.Addr)
		return runServer(gctx, srv)
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.SweepInterval)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", err)
	}
	log.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
