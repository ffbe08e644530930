// Gold Sniper - Spot XAU/USD barrier watcher
//
// Polls a spot gold feed on a fixed interval and classifies the price against
// static 1H barrier zones:
//   1. Track the nearest resistance above and support below
//   2. Arm a side when price touches its zone
//   3. Fire SELL/BUY when price leaves the zone back the way it came
//   4. Escalate WATCH → SIGNAL once the move reaches the trigger (2.00 pts)
//
// No orders are placed; this is a watcher.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/goldsniper/bot"
	"github.com/web3guy0/goldsniper/core"
	"github.com/web3guy0/goldsniper/feeds"
	"github.com/web3guy0/goldsniper/internal/config"
	"github.com/web3guy0/goldsniper/internal/dashboard"
	"github.com/web3guy0/goldsniper/internal/metrics"
	"github.com/web3guy0/goldsniper/storage"
	"github.com/web3guy0/goldsniper/strategy"
)

const version = "1.0.0"

func main() {
	// ═══════════════════════════════════════════════════════════════════════════════
	// BOOTSTRAP
	// ═══════════════════════════════════════════════════════════════════════════════

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("version", version).
		Str("feed", cfg.FeedSource).
		Dur("interval", cfg.PollInterval).
		Str("trigger", cfg.PipTrigger.StringFixed(2)).
		Int("barriers", cfg.Barriers.Len()).
		Msg("👑 Gold Sniper starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ═══════════════════════════════════════════════════════════════════════════════
	// INITIALIZE COMPONENTS
	// ═══════════════════════════════════════════════════════════════════════════════

	// 1. Price feed
	source, err := feeds.NewSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create price feed")
	}
	if lc, ok := source.(feeds.Lifecycle); ok {
		if err := lc.Start(); err != nil {
			log.Warn().Err(err).Msg("⚠️ Feed start failed, will keep retrying on each tick")
		}
		defer lc.Stop()
	}
	log.Info().Str("source", source.Name()).Msg("✅ Price feed initialized")

	// 2. Sniper
	sniper := strategy.NewSniper(cfg.Barriers, cfg.PipTrigger)
	router := core.NewRouter()
	engine := core.NewEngine(source, sniper, router, cfg.PollInterval)
	engine.SetFeedDownAfter(cfg.FeedDownAfter)

	// 3. Dashboard
	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash = dashboard.New(os.Stdout, cfg.Layout)
		// Route logs into the activity panel so they don't tear the frame
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: dash.Writer(), NoColor: true, TimeFormat: "15:04:05"})
		router.Subscribe(dash)
	}

	// 4. Journal (optional)
	var journal *storage.Journal
	if cfg.DatabaseEnabled() {
		journal, err = storage.Open(cfg.DatabasePath)
		if err != nil {
			log.Warn().Err(err).Msg("Journal unavailable, continuing without persistence")
			journal = nil
		} else {
			router.Subscribe(journal)
			log.Info().Msg("✅ Journal initialized")
		}
	}

	// 5. Metrics (optional)
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		collector := metrics.NewCollector()
		router.Subscribe(collector)
		metricsSrv = collector.Serve(cfg.MetricsAddr)
	}

	// 6. Telegram (optional)
	var telegramBot *bot.TelegramBot
	if cfg.TelegramEnabled() {
		telegramBot, err = bot.NewTelegramBot(cfg.TelegramToken, cfg.TelegramChatID, engine)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Telegram disabled")
		} else {
			if journal != nil {
				telegramBot.SetHistory(journal)
			}
			router.Subscribe(telegramBot)
			telegramBot.Start()
			telegramBot.NotifyStartup(source.Name(), cfg.Barriers, cfg.PipTrigger.StringFixed(2))
		}
	}

	// ═══════════════════════════════════════════════════════════════════════════════
	// START
	// ═══════════════════════════════════════════════════════════════════════════════

	if dash != nil {
		dash.Start()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = engine.Run(ctx)
	}()

	log.Info().Msg("🚀 All systems running...")

	// ═══════════════════════════════════════════════════════════════════════════════
	// GRACEFUL SHUTDOWN
	// ═══════════════════════════════════════════════════════════════════════════════

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	<-done

	if dash != nil {
		dash.Stop()
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	log.Info().Msg("🛑 Shutting down...")

	if telegramBot != nil {
		telegramBot.Stop()
	}
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	if journal != nil {
		if err := journal.Close(); err != nil {
			log.Warn().Err(err).Msg("Journal close failed")
		}
	}

	log.Info().Msg("👋 Goodbye!")
}
