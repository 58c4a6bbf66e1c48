// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/rsham004/nz-electricity-chatbot/internal/usecases"
)

// maxChatMessages bounds the transcript kept per Telegram chat
const maxChatMessages = 20

const telegramHelp = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/generation - Current generation by source\n" +
	"/prices - Spot prices by region\n" +
	"/renewable - Renewable share of generation\n" +
	"/carbon - Carbon intensity and emissions\n" +
	"/overview - A summary of everything\n" +
	"/help - Show this help message\n\n" +
	"You can also just ask, e.g. \"What are the spot prices right now?\""

// commandIntents maps Telegram commands to the answer they show
var commandIntents = map[string]entities.Intent{
	"generation": entities.IntentGeneration,
	"prices":     entities.IntentPrice,
	"renewable":  entities.IntentRenewable,
	"carbon":     entities.IntentCarbon,
	"overview":   entities.IntentOverview,
}

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot         *tgbotapi.BotAPI
	useCase     *usecases.GridUseCase
	transcripts map[int64]entities.Transcript
	logger      *log.Logger
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.GridUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return newTelegramBot(bot, useCase), nil
}

func newTelegramBot(bot *tgbotapi.BotAPI, useCase *usecases.GridUseCase) *TelegramBot {
	return &TelegramBot{
		bot:         bot,
		useCase:     useCase,
		transcripts: make(map[int64]entities.Transcript),
		logger:      log.Default().With("component", "telegram"),
	}
}

// Start listens for and handles Telegram messages until ctx is cancelled.
// Updates are handled one at a time.
func (t *TelegramBot) Start(ctx context.Context) {
	t.logger.Info("Authorized on Telegram account", "username", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	t.logger.Info("Bot is now listening for messages...")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.logger.Info("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			t.logReceived(update.Message)
			t.handleMessage(ctx, update.Message)
		}
	}
}

// logReceived logs an incoming message. From is empty for channel posts and anonymous group admins.
func (t *TelegramBot) logReceived(message *tgbotapi.Message) {
	username, userID := "unknown", int64(0)
	if message.From != nil {
		username, userID = message.From.UserName, message.From.ID
	}
	t.logger.Info("Received message", "username", username, "user_id", userID, "text", message.Text)
}

// handleMessage answers a Telegram message
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, t.reply(ctx, message))

	t.logger.Debug("Sending response", "chat_id", message.Chat.ID)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Error sending message", "chat_id", message.Chat.ID, "error", err)
	}
}

// reply builds the response text for a message
func (t *TelegramBot) reply(ctx context.Context, message *tgbotapi.Message) string {
	if message.IsCommand() {
		return t.handleCommand(ctx, message)
	}
	return t.handleNonCommand(ctx, message)
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message) string {
	command := message.Command()
	t.logger.Info("Handling command", "command", command, "chat_id", message.Chat.ID)

	switch command {
	case "start":
		delete(t.transcripts, message.Chat.ID)
		return "Welcome to the NZ Electricity Bot! Ask me about generation, spot prices, renewables or emissions, or use /help to see the commands."
	case "help":
		return telegramHelp
	}

	if intent, ok := commandIntents[command]; ok {
		return t.useCase.RespondTo(ctx, intent)
	}

	t.logger.Warn("Received unknown command", "command", command)
	return "Unknown command. Use /help to see available commands."
}

// handleNonCommand answers free text and keeps the chat's transcript
func (t *TelegramBot) handleNonCommand(ctx context.Context, message *tgbotapi.Message) string {
	if message.Text == "" {
		return "I can only read text messages. Use /help to see available commands."
	}

	transcript, answer := t.useCase.Turn(ctx, t.transcripts[message.Chat.ID], message.Text)
	t.transcripts[message.Chat.ID] = transcript.Last(maxChatMessages)
	return answer
}
