package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alejandro-houlu/Can-eat-not/internal/config"
	"github.com/Alejandro-houlu/Can-eat-not/internal/database"
	"github.com/Alejandro-houlu/Can-eat-not/internal/dialogue"
	"github.com/Alejandro-houlu/Can-eat-not/internal/intent"
	"github.com/Alejandro-houlu/Can-eat-not/internal/llm"
	"github.com/Alejandro-houlu/Can-eat-not/internal/metrics"
	"github.com/Alejandro-houlu/Can-eat-not/internal/persona"
	"github.com/Alejandro-houlu/Can-eat-not/internal/responder"
	"github.com/Alejandro-houlu/Can-eat-not/internal/telegram"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gemini, closeGemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	defer closeGemini()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	responderBackend := llm.NewBackend(gemini, cfg.BackendTimeout, log)
	classifierBackend := responderBackend
	if cfg.GroqAPIKey != "" {
		classifierBackend = llm.NewBackend(llm.NewGroqClient(cfg.GroqAPIKey), cfg.BackendTimeout, log)
	}

	controller := dialogue.NewController(
		intent.NewClassifier(classifierBackend, log),
		responder.NewDispatcher(responderBackend, log),
		log,
		dialogue.WithRenderer(persona.NewCoach()),
		dialogue.WithMetaSink(func(meta llm.AgentMeta) {
			if err := metricsStore.RecordMeta(meta); err != nil {
				log.Warn().Err(err).Msg("failed to record execution metric")
			}
		}),
	)

	bot, err := telegram.NewBot(cfg, controller, metricsStore, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Telegram bot")
	}

	log.Info().Msg("bot polling for updates")
	bot.Run(ctx)
	log.Info().Msg("bot stopped")
}
