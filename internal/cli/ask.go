package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (app *App) newAskCmd() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			useCase, closeLog, err := newUseCase(app.cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			answer := useCase.Respond(cmd.Context(), strings.Join(args, " "))
			if render {
				renderer, err := newRenderer()
				if err != nil {
					return fmt.Errorf("error initializing renderer: %w", err)
				}
				if rendered, err := renderer.Render(answer); err == nil {
					answer = rendered
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render the markdown answer for the terminal")
	return cmd
}
