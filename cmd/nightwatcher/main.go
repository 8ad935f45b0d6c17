package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nightwatcher/internal/api"
	"nightwatcher/internal/config"
	"nightwatcher/internal/logging"
	"nightwatcher/internal/notify"
	"nightwatcher/internal/oracle"
	"nightwatcher/internal/portfolio"
	"nightwatcher/internal/risk"
	"nightwatcher/internal/store"
	"nightwatcher/internal/tracker"
	"nightwatcher/internal/watcher"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging.
	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	slog.Info("nightwatcher starting",
		"port", cfg.Port,
		"dbPath", cfg.DBPath,
		"pollInterval", config.PollInterval,
	)

	// Open store and run migrations.
	st, err := store.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.RunMigrations(); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("store ready", "path", cfg.DBPath)

	// Select the balance oracle: JSON-RPC when a node URL is configured,
	// the Etherscan explorer API otherwise.
	var balanceOracle oracle.Oracle
	if cfg.EthRPCURL != "" {
		rpcOracle, err := oracle.DialRPC(context.Background(), cfg.EthRPCURL)
		if err != nil {
			slog.Error("failed to dial eth rpc", "error", err)
			os.Exit(1)
		}
		defer rpcOracle.Close()
		balanceOracle = rpcOracle
	} else {
		httpClient := &http.Client{Timeout: config.OracleRequestTimeout}
		balanceOracle = oracle.NewEtherscanOracle(httpClient, cfg.EtherscanAPIKey)
	}

	// Assemble notification sinks.
	var sink notify.Sink
	telegram := notify.NewTelegramSink(cfg.TelegramBotToken)
	if cfg.KafkaBroker != "" {
		kafkaSink := notify.NewKafkaSink(cfg.KafkaBroker, cfg.KafkaTopic)
		defer kafkaSink.Close()
		sink = notify.NewMulti(telegram, kafkaSink)
	} else {
		sink = telegram
	}

	// Registration boundary and on-demand lookup clients.
	trk := tracker.New(st, balanceOracle)
	portfolioClient := portfolio.NewClient(cfg.MoralisAPIKey)
	riskClient := risk.NewClient()

	// Start the balance watcher.
	w := watcher.NewWatcher(st, balanceOracle, sink)
	w.Start()

	// Build API router.
	deps := &api.Dependencies{
		Store:     st,
		Tracker:   trk,
		Watcher:   w,
		Portfolio: portfolioClient,
		Risk:      riskClient,
	}
	router := api.NewRouter(deps)

	// Start HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	sig := <-done
	slog.Info("shutdown signal received", "signal", sig)

	// Stop watcher first, then the HTTP server.
	w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("nightwatcher stopped")
}
