// Command voicebridge runs the telephone-to-LLM customer support bridge:
// the call-start webhook (C8), the carrier media WebSocket endpoint (C3,
// with one Mediator per call), and a health endpoint reporting which
// optional adapters are active. Grounded on the teacher's cmd/main.go
// wiring shape (config load, logger, signal-based shutdown).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nayacomm/voicebridge/internal/config"
	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/orderbackend"
	"github.com/nayacomm/voicebridge/internal/tokencache"
	"github.com/nayacomm/voicebridge/internal/tools"
	"github.com/nayacomm/voicebridge/internal/transcript"
	"github.com/nayacomm/voicebridge/internal/webhook"
)

const (
	version   = "0.1.0"
	mediaPath = "/media-stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("voicebridge: %w", err)
	}

	log := obs.NewLogger("voicebridge")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := obs.NewTracerProvider(ctx, obs.TracerConfig{
		ServiceName:    "voicebridge",
		ServiceVersion: version,
		Environment:    cfg.NodeEnv,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return fmt.Errorf("voicebridge: tracer: %w", err)
	}
	defer tp.Shutdown(context.Background())

	var cache *tokencache.Cache
	if cfg.RedisURL != "" {
		cache, err = tokencache.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("voicebridge: token cache: %w", err)
		}
	}

	backend := orderbackend.New(orderbackend.Config{
		BaseURL:      cfg.BackendBaseURL,
		ClientID:     cfg.BackendClientID,
		ClientSecret: cfg.BackendClientSecret,
		RefreshToken: cfg.BackendRefreshToken,
		Cache:        cache,
	}, obs.NewLogger("orderbackend"))

	var sink transcript.Sink
	var pgSink *transcript.PostgresSink
	if cfg.TranscriptStoreURL != "" {
		pgSink, err = transcript.NewPostgresSink(ctx, cfg.TranscriptStoreURL, obs.NewLogger("transcript"))
		if err != nil {
			return fmt.Errorf("voicebridge: transcript store: %w", err)
		}
		sink = pgSink
		defer pgSink.Close()
	} else {
		sink = transcript.NewMemorySink()
	}

	var emailSender tools.EmailSender = tools.NoopSender{}
	if cfg.SMTPHost != "" {
		emailSender = tools.SMTPSender{Host: cfg.SMTPHost, From: cfg.SMTPFrom}
	}
	toolRegistry := tools.New(backend, emailSender, cfg.ShopName, obs.NewLogger("tools"))

	webhookHandler := webhook.New(backend, mediaPath, cfg.PublicHost, obs.NewLogger("webhook"))
	mediaServer := webhook.NewMediaServer(webhook.MediaServerConfig{
		LLMAPIKey: cfg.LLMAPIKey,
		Tools:     toolRegistry,
		Sink:      sink,
		Log:       obs.NewLogger("mediator"),
	})

	features := map[string]bool{
		"transcriptPostgres": pgSink != nil,
		"tokenCacheRedis":    cache != nil,
		"tracing":            cfg.TracingEnabled,
		"emailSMTP":          cfg.SMTPHost != "",
	}

	mux := http.NewServeMux()
	mux.Handle("/voice", webhookHandler)
	mux.Handle(mediaPath, mediaServer)
	mux.Handle("/health", webhook.HealthHandler(mediaServer, version, cfg.NodeEnv, features))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("voicebridge: serve: %w", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("voicebridge: shutdown: %w", err)
		}
	}
	return nil
}
