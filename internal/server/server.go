// Package server wires the lookup service into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/mihaimyh/badgeapi/internal/config"
	"github.com/mihaimyh/badgeapi/pkg/api"
	"github.com/mihaimyh/badgeapi/pkg/badges"
	zerologadapter "github.com/mihaimyh/badgeapi/pkg/badges/logger/zerolog"
	badgemetrics "github.com/mihaimyh/badgeapi/pkg/badges/metrics/prometheus"
	"github.com/mihaimyh/badgeapi/pkg/discord"
	discordmetrics "github.com/mihaimyh/badgeapi/pkg/discord/metrics/prometheus"
	"github.com/mihaimyh/badgeapi/pkg/notify"
)

const (
	metricsNamespace       = "badgeapi"
	defaultShutdownTimeout = 15 * time.Second
	writeTimeoutMargin     = 5 * time.Second
)

// Server is the badge lookup HTTP server.
type Server struct {
	httpServer      *http.Server
	service         *badges.Service
	logger          zerolog.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// New assembles the Discord client, notifier, lookup service and router from cfg.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	adapter := zerologadapter.NewLogger(&logger)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	client := discord.NewClient(discord.Config{
		BotToken:   cfg.BotToken,
		BaseURL:    cfg.DiscordAPIBaseURL,
		HTTPClient: httpClient,
		Metrics:    discordmetrics.NewMetrics(reg, metricsNamespace),
		Logger:     adapter,
	})
	if !client.Configured() {
		logger.Warn().Msg("BOT_TOKEN is not set; user lookups will fail until it is configured")
	}

	service, err := badges.NewService(badges.Config{
		Source:               client,
		Notifier:             notify.New(notify.Config{URL: cfg.WebhookURL, HTTPClient: httpClient}),
		GuildIDs:             cfg.GuildIDs,
		GuildScanConcurrency: cfg.GuildScanConcurrency,
		CDNBaseURL:           cfg.DiscordCDNBaseURL,
		Metrics:              badgemetrics.NewMetrics(reg, metricsNamespace),
		Logger:               adapter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup service: %w", err)
	}

	s := &Server{
		service:         service,
		logger:          logger,
		shutdownTimeout: defaultShutdownTimeout,
	}

	handler, err := api.NewHandler(api.Config{
		Service:   service,
		GetUserID: api.FromChiParam("id"),
		Logger:    adapter,
	})
	if err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr: cfg.Addr(),
		Handler: NewRouter(RouterConfig{
			Handler:     handler,
			Gatherer:    reg,
			Logger:      logger,
			CORSOrigins: cfg.CORSOrigins,
			Healthy:     func() bool { return !s.inShutdown.Load() },
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// writeTimeout bounds a response by the slowest possible lookup: the user
// fetch, every guild scan round and the webhook POST, each capped by HTTPTimeout.
func writeTimeout(cfg *config.Config) time.Duration {
	rounds := 0
	if n := len(cfg.GuildIDs); n > 0 {
		workers := max(cfg.GuildScanConcurrency, 1)
		rounds = (n + workers - 1) / workers
	}
	return time.Duration(2+rounds)*cfg.HTTPTimeout + writeTimeoutMargin
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Service returns the lookup service.
func (s *Server) Service() *badges.Service {
	return s.service
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	if err := s.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format == "json" {
		return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}
