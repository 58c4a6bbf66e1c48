package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rsham004/nz-electricity-chatbot/internal/api"
	"github.com/spf13/cobra"
)

func (app *App) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat over an HTTP JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.cfg.HTTPAddr
			}
			if !app.debug {
				gin.SetMode(gin.ReleaseMode)
			}

			useCase, closeLog, err := newUseCase(app.cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.NewHTTPServer(useCase).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from http_addr)")
	return cmd
}
