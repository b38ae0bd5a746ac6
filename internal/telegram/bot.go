package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alejandro-houlu/Can-eat-not/internal/config"
	"github.com/Alejandro-houlu/Can-eat-not/internal/dialogue"
	"github.com/Alejandro-houlu/Can-eat-not/internal/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot wraps the Telegram API around the dialogue controller. Each chat gets
// its own isolated session.
type Bot struct {
	api          *tgbotapi.BotAPI
	controller   *dialogue.Controller
	sessions     *SessionRegistry
	metricsStore *metrics.Store
	cfg          *config.Config
	log          zerolog.Logger
}

// NewBot initializes the Telegram bot with long polling.
func NewBot(cfg *config.Config, controller *dialogue.Controller, metricsStore *metrics.Store, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	return &Bot{
		api:          api,
		controller:   controller,
		sessions:     NewSessionRegistry(),
		metricsStore: metricsStore,
		cfg:          cfg,
		log:          log,
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if !b.isAllowed(update.Message.From.ID) {
				b.log.Warn().
					Int64("user_id", update.Message.From.ID).
					Str("username", update.Message.From.UserName).
					Msg("unauthorized access attempt")
				continue
			}
			go b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Text {
	case "/metrics":
		b.handleMetricsRequest(msg)
		return
	case "/start", "/reset":
		b.sessions.Drop(chatID)
		sess, _ := b.sessions.Get(chatID)
		sess.mu.Lock()
		opening := b.controller.Open(sess.State)
		sess.mu.Unlock()
		b.send(chatID, opening)
		return
	}

	sess, existed := b.sessions.Get(chatID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !existed {
		b.send(chatID, b.controller.Open(sess.State))
	}

	if dialogue.IsExitWord(msg.Text) {
		farewell := b.controller.End(sess.State)
		b.sessions.Drop(chatID)
		b.send(chatID, farewell)
		return
	}

	reply, err := b.controller.ProcessTurn(ctx, sess.State, msg.Text)
	if err != nil {
		// Only invariant violations reach here; reset the broken session.
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("dialogue invariant violated, resetting session")
		b.sessions.Drop(chatID)
		b.send(chatID, "Paiseh, I lost track of our conversation. Send me anything to start over!")
		return
	}
	b.send(chatID, reply)
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.send(msg.Chat.ID, "⛔ Access denied: admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d calls)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Live sessions: %d\n", b.sessions.Len()))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	reply := tgbotapi.NewMessage(msg.Chat.ID, sb.String())
	reply.ParseMode = "Markdown"
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error().Err(err).Msg("failed to send metrics report")
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}
