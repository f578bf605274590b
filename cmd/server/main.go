package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/auth"
	"github.com/edvart/cupkeeper/internal/config"
	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/discord"
	"github.com/edvart/cupkeeper/internal/locale"
	"github.com/edvart/cupkeeper/internal/matchrecorder"
	"github.com/edvart/cupkeeper/internal/metrics"
	"github.com/edvart/cupkeeper/internal/push"
	"github.com/edvart/cupkeeper/internal/roster"
	"github.com/edvart/cupkeeper/internal/store"
	"github.com/edvart/cupkeeper/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		logrus.Fatalf("Invalid logging configuration: %v", err)
	}
	log := logrus.NewEntry(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// validated by config.Load
	loc, err := locale.New(cfg.Language)
	if err != nil {
		log.Fatal(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	coord := coordinator.New(
		coordinator.WithLocalizer(loc),
		coordinator.WithThreshold(cfg.MapMatchThreshold),
		coordinator.WithMetrics(metrics.NewMetrics(registry)),
		coordinator.WithLogger(log),
	)
	rosterService := roster.New(db, log)
	recorder := matchrecorder.New(db, log)

	pushService := push.NewService(db, push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		VAPIDSubject:    cfg.VAPIDSubject,
	}, log)

	referees := auth.NewRefereeConfig(cfg.RefereeTokens)
	if !referees.Enabled() {
		log.Warn("REFEREE_TOKENS not set. The referee API is disabled.")
	}
	server := web.NewServer(coord, rosterService, db, referees, pushService, registry, log, web.Config{
		DevMode: cfg.DevMode,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// every consumer subscribes before the coordinator starts
	go recorder.Run(ctx, coord.Subscribe())
	if pushService.Enabled() {
		go push.NewNotifier(pushService, loc, log).Run(ctx, coord.Subscribe())
	} else {
		log.Info("VAPID keys not set. Push notifications are disabled.")
	}

	var session interface{ Close() error }
	if cfg.DiscordToken != "" {
		dg, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			log.Fatal(err)
		}
		render := discord.NewRenderer(loc)
		sink := discord.NewSink(dg, render, discord.BroadcastConfig{
			Enabled:       cfg.BroadcastEnabled,
			MatchCreated:  cfg.BroadcastMatchCreated,
			MatchStarting: cfg.BroadcastMatchStarting,
		}, log)
		bot := discord.NewBot(dg, coord, rosterService, sink, render, discord.Config{
			GuildID:      cfg.DiscordGuildID,
			Prefix:       cfg.CommandPrefix,
			RefereeRole:  cfg.RefereeRole,
			StreamerRole: cfg.StreamerRole,
			CategoryID:   cfg.MatchCategoryID,
		}, log)
		bot.Register(dg)
		go sink.Run(ctx, coord.Subscribe())

		if err := dg.Open(); err != nil {
			log.Fatalf("Failed to connect to Discord: %v", err)
		}
		session = dg
	} else {
		log.Warn("DISCORD_TOKEN not set. Only the HTTP API is available.")
	}

	go coord.Run(ctx)
	server.StartSSE(coord.Events())

	if n, err := recorder.Resume(ctx, coord, rosterService); err != nil {
		log.WithError(err).Error("Failed to resume matches")
	} else if n > 0 {
		log.Infof("Resumed %d matches", n)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("Shutting down...")
		cancel()

		if session != nil {
			if err := session.Close(); err != nil {
				log.WithError(err).Warn("Discord session close error")
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("HTTP server shutdown error")
		}
	}()

	log.Infof("Server running on http://localhost:%s", cfg.Port)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server error: %v", err)
	}
	log.Info("Server stopped")
}
