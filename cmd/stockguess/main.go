package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"StockGuess/internal/config"
	"StockGuess/internal/game"
	"StockGuess/internal/loader"
	"StockGuess/internal/logger"
	"StockGuess/internal/metrics"
	"StockGuess/internal/notifier"
	"StockGuess/internal/prefs"
	"StockGuess/internal/recorder"
	"StockGuess/internal/scheduler"
	"StockGuess/internal/server"
	"StockGuess/internal/skin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stockguess: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	log.Info().Str("symbol", cfg.DataSource.Symbol).Msg("StockGuess starting")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mtr := metrics.New(reg)

	// Series loader
	start, _ := cfg.StartDate()
	fetcher := loader.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Sources)
	fetcher.Timeout = cfg.DataSource.Timeout
	ld, err := loader.New(fetcher, loader.Config{
		Symbol:       cfg.DataSource.Symbol,
		Start:        start,
		FallbackFile: cfg.DataSource.FallbackFile,
	},
		loader.WithLogger(logger.Component(log, "loader")),
		loader.WithLoadHook(func(src loader.Source) { mtr.RecordLoad(string(src)) }),
	)
	if err != nil {
		return fmt.Errorf("init loader: %w", err)
	}
	series, src := ld.Load(ctx)
	log.Info().Str("source", string(src)).Int("bars", len(series)).Msg("initial series ready")

	// Game engine
	engine, err := game.NewEngine(series, game.Config{
		PausePrice:  cfg.Game.PausePrice,
		TargetPrice: cfg.Game.TargetPrice,
		Interval:    cfg.Game.Interval,
	}, game.WithLogger(logger.Component(log, "engine")))
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	// Preferences
	store, closeStore, err := openPrefs(cfg)
	if err != nil {
		return fmt.Errorf("init prefs: %w", err)
	}
	defer closeStore()

	// Skin and websocket hub
	hub := server.NewHub(engine.Snapshot, logger.Component(log, "ws"))
	hub.OnClients = mtr.SetWSClients
	mixer := skin.NewMixer(hub, logger.Component(log, "sound"))
	prefCtx, prefCancel := context.WithTimeout(ctx, 5*time.Second)
	mixer.Load(prefCtx, store)
	prefCancel()
	avatar := skin.NewAvatar(skin.Theme{
		PausePrice:  cfg.Game.PausePrice,
		TargetPrice: cfg.Game.TargetPrice,
		Currency:    cfg.Game.Currency,
	}, mixer, logger.Component(log, "skin"))
	hub.SkinState = avatar.State
	sound := &skin.Switch{PreferenceStore: store, Mixer: mixer}

	// Recorder
	rec := openRecorder(cfg, log)
	defer rec.Close()
	bridge := recorder.NewBridge(rec, logger.Component(log, "recorder"), 64)
	bridgeDone := make(chan struct{})
	go func() {
		bridge.Run(ctx)
		close(bridgeDone)
	}()

	// Avatar first so events reaching the hub carry the updated skin.
	engine.Subscribe(avatar)
	engine.Subscribe(hub)
	engine.Subscribe(mtr)
	engine.Subscribe(bridge)

	// Telegram
	if cfg.NotifierEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Component(log, "telegram"))
		format := notifier.Formatter{Symbol: cfg.DataSource.Symbol, Currency: cfg.Game.Currency}
		relay := notifier.NewRelay(tn, format, cfg.Game.PausePrice, cfg.Game.TargetPrice, logger.Component(log, "relay"))
		engine.Subscribe(relay)
		go relay.Run(ctx)

		cmds := &notifier.Commands{Game: engine, Sound: sound, Format: format}
		go tn.StartPolling(ctx, cmds.Handle)
		log.Info().Msg("telegram polling started")
	}

	// Scheduler
	sched := scheduler.NewScheduler(ctx, ld, engine, logger.Component(log, "scheduler"))
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP
	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowOrigins:    cfg.Server.AllowOrigins,
	}, server.Deps{
		Handler: &server.Handler{
			Game:        engine,
			Sound:       sound,
			Skin:        avatar.State,
			Leaderboard: rec,
			Log:         logger.Component(log, "api"),
		},
		Hub:      hub,
		Gatherer: reg,
	}, logger.Component(log, "http"))
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	log.Info().Msg("StockGuess is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	engine.Reset()
	if err := srv.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	<-bridgeDone
	log.Info().Msg("StockGuess stopped")
	return nil
}

func openPrefs(cfg *config.Config) (prefs.Store, func(), error) {
	switch cfg.Prefs.Backend {
	case "redis":
		rs, err := prefs.NewRedisStore(cfg.Prefs.RedisAddr, cfg.Prefs.RedisPassword, cfg.Prefs.RedisDB, cfg.Prefs.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	default:
		fs, err := prefs.NewFileStore(cfg.Prefs.File)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func openRecorder(cfg *config.Config, log zerolog.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Warn().Err(err).Msg("create sqlite dir failed, using noop")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Component(log, "sqlite"))
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
