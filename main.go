// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/class-reps/cliparse"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/notify"
	"github.com/danielhkuo/class-reps/router"
)

func main() {
	// Load .env for local development; a missing file is fine
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the document store
	store, err := openStore(cfg)
	if err != nil {
		slog.Error("store connection failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Document store ready", "type", cfg.StoreType)

	// Notification publisher (no-op without a broker)
	var notifier notify.Notifier = notify.Noop{}
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.NotifyExchange)
		if err != nil {
			slog.Error("notification broker connection failed", "error", err)
			os.Exit(1)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
		slog.Info("Notification broker ready", "exchange", cfg.NotifyExchange)
	}

	// Create router
	mux := router.NewRouter(store, notifier, cfg)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func openStore(cfg cliparse.Config) (docstore.Store, error) {
	switch cfg.StoreType {
	case cliparse.StoreMemory:
		return docstore.NewMemoryStore(), nil
	case cliparse.StoreMongo:
		return docstore.ConnectMongo(cfg.DatabaseURL, cfg.MongoDatabase)
	default:
		driver := "postgres"
		if cfg.StoreType == cliparse.StoreSQLite {
			driver = "sqlite"
		}
		db, err := sql.Open(driver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		if err := docstore.CreateSchema(db); err != nil {
			return nil, err
		}
		return docstore.NewSQLStore(db, driver), nil
	}
}
