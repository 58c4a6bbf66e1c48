package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/api"
	"github.com/spf13/cobra"
)

func (app *App) newTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
			}

			useCase, closeLog, err := newUseCase(app.cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			bot, err := api.NewTelegramBot(app.cfg.TelegramToken, useCase)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Starting Telegram bot...")
			bot.Start(ctx)
			return nil
		},
	}
}
