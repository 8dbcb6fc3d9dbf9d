package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/davrell/codecity/internal/audio"
	"github.com/davrell/codecity/internal/classifier"
	"github.com/davrell/codecity/internal/dispatcher"
	"github.com/davrell/codecity/internal/llm"
	"github.com/davrell/codecity/internal/storage"
	"github.com/davrell/codecity/internal/telegram"
	"github.com/davrell/codecity/internal/terminal"
	"github.com/davrell/codecity/internal/transcript"
	"github.com/davrell/codecity/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	useTelegram := flag.Bool("telegram", false, "serve the console over Telegram instead of the terminal")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize snapshot storage
	var store storage.Storage
	switch cfg.Database.Driver {
	case "memory":
		logger.Info("Using in-memory snapshot storage")
		store = storage.NewMemoryStorage()
	case "postgres":
		logger.Info("Using PostgreSQL snapshot storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
	default:
		logger.Info("Using SQLite snapshot storage", zap.String("path", cfg.Database.SQLitePath))
		store, err = storage.NewSQLiteStorage(cfg.Database.SQLitePath)
	}
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// The completion collaborator is optional: without a key the console
	// still runs, and AI-backed actions report the missing credential.
	var client llm.Client
	if cfg.OpenAI.APIKey != "" {
		client = llm.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger)
	} else {
		logger.Warn("No OpenAI API key configured; AI actions will be unavailable")
	}

	log := transcript.NewLog()

	var clf classifier.Classifier
	if client != nil {
		clf = classifier.NewGPTClassifier(client, cfg.OpenAI.MaxTokens, logger)
	} else {
		clf = offlineClassifier{}
	}

	d := dispatcher.New(dispatcher.Options{
		Log:        log,
		Classifier: clf,
		LLM:        client,
		Dialer:     audio.NewWebSocketDialer(logger),
		AudioConfig: audio.Config{
			URL:    cfg.Audio.URL,
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.Audio.Model,
		},
		Store: store,
		RequestCredential: func() {
			fmt.Fprintln(os.Stderr, "Set OPENAI_API_KEY and restart the console.")
		},
		Logger: logger,
	})

	ctx := context.Background()

	if *useTelegram {
		bot, err := telegram.New(cfg.Telegram.Token, d, log, logger)
		if err != nil {
			logger.Fatal("Failed to create Telegram bot", zap.Error(err))
		}
		if err := bot.Start(ctx); err != nil {
			logger.Fatal("Bot error", zap.Error(err))
		}
		return
	}

	repl := terminal.New(d, log, os.Stdin, os.Stdout, logger)
	if err := repl.Run(ctx); err != nil {
		logger.Fatal("Console error", zap.Error(err))
	}
}
