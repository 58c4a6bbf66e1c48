package api

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, UserName: "kiwi"},
	}
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	msg := textMessage(chatID, text)
	command := strings.Fields(text)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return msg
}

func TestTelegramCommands(t *testing.T) {
	bot := newTelegramBot(nil, newUseCase(t, nil))
	ctx := context.Background()

	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/start")), "Welcome to the NZ Electricity Bot!")
	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/help")), "/prices - Spot prices by region")
	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/prices")), "- Auckland: $150.50/MWh")
	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/generation")), "**Total Generation**: 5000 MW")
	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/renewable")), "**Current Renewable Percentage**: 92.0%")
	// emissions answer with the fallback literal while the endpoint is down
	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/carbon")), "**Carbon Intensity**: 82 gCO₂/kWh")
	assert.Contains(t, bot.reply(ctx, commandMessage(1, "/overview@nz_grid_bot")), "New Zealand Electricity Overview:")
	assert.Equal(t, "Unknown command. Use /help to see available commands.", bot.reply(ctx, commandMessage(1, "/weather")))
}

func TestTelegramFreeTextKeepsTranscriptPerChat(t *testing.T) {
	bot := newTelegramBot(nil, newUseCase(t, nil))
	ctx := context.Background()

	answer := bot.reply(ctx, textMessage(1, "What are the spot prices?"))
	assert.Contains(t, answer, "Current New Zealand electricity spot prices:")
	bot.reply(ctx, textMessage(1, "And the power generation?"))
	bot.reply(ctx, textMessage(2, "hello"))

	assert.Equal(t, 4, bot.transcripts[1].Len())
	assert.Equal(t, 2, bot.transcripts[2].Len())
	assert.NotEqual(t, bot.transcripts[1].ID, bot.transcripts[2].ID)

	bot.reply(ctx, commandMessage(1, "/start"))
	assert.Equal(t, 0, bot.transcripts[1].Len())
}

func TestTelegramTranscriptIsBounded(t *testing.T) {
	bot := newTelegramBot(nil, newUseCase(t, nil))
	for i := 0; i < maxChatMessages; i++ {
		bot.reply(context.Background(), textMessage(7, fmt.Sprintf("price %d", i)))
	}

	transcript := bot.transcripts[7]
	assert.Equal(t, maxChatMessages, transcript.Len())
	assert.Equal(t, fmt.Sprintf("price %d", maxChatMessages-1), transcript.Messages[maxChatMessages-2].Content)
}

func TestTelegramNonTextMessage(t *testing.T) {
	bot := newTelegramBot(nil, newUseCase(t, nil))
	assert.Contains(t, bot.reply(context.Background(), textMessage(1, "")), "only read text messages")
	assert.Empty(t, bot.transcripts)
}

func TestTelegramMessageWithoutSender(t *testing.T) {
	var logs bytes.Buffer
	bot := newTelegramBot(nil, newUseCase(t, nil))
	bot.logger = log.New(&logs)

	msg := textMessage(-100, "What are the spot prices?")
	msg.From = nil

	assert.NotPanics(t, func() { bot.logReceived(msg) })
	assert.Contains(t, logs.String(), "username=unknown")
	assert.Contains(t, bot.reply(context.Background(), msg), "Current New Zealand electricity spot prices:")
}

func TestTelegramLogsSender(t *testing.T) {
	var logs bytes.Buffer
	bot := newTelegramBot(nil, newUseCase(t, nil))
	bot.logger = log.New(&logs)

	bot.logReceived(textMessage(5, "hi"))
	assert.Contains(t, logs.String(), "username=kiwi")
	assert.Contains(t, logs.String(), "user_id=5")
}
