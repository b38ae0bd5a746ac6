package main

import (
	"bufio"
	"context"
	"fmt"
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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

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

	// Classification goes to the cheap Groq model when configured; the
	// specialist agents stay on Gemini.
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

	fmt.Println("=== CAN-EAT-NOT: Your Nutrition Coach ===")
	fmt.Println("Type 'exit', 'quit', or ':q' to end the session.")
	fmt.Println()

	state := dialogue.NewState()
	fmt.Printf("Coach 🧑‍🏫: %s\n", controller.Open(state))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()
		if input == "" {
			continue
		}

		if dialogue.IsExitWord(input) {
			fmt.Printf("\nCoach 🧑‍🏫: %s\n", controller.End(state))
			break
		}

		reply, err := controller.ProcessTurn(ctx, state, input)
		if err != nil {
			log.Fatal().Err(err).Msg("dialogue invariant violated")
		}
		fmt.Printf("\nCoach 🧑‍🏫: %s\n", reply)

		if ctx.Err() != nil {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("input error")
	}
}
