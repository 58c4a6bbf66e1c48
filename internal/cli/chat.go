package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/rsham004/nz-electricity-chatbot/internal/usecases"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Tokyo Night theme colors
	tokyoCyan  = lipgloss.Color("73")  // #7dcfff
	tokyoBlue  = lipgloss.Color("111") // #7aa2f7
	tokyoRed   = lipgloss.Color("203") // #f7768e
	tokyoFg    = lipgloss.Color("189") // #c0caf5
	tokyoGreen = lipgloss.Color("120") // #73daca

	promptStyle = lipgloss.NewStyle().
			Foreground(tokyoBlue).
			PaddingLeft(2)

	responseStyle = lipgloss.NewStyle().
			Foreground(tokyoFg).
			PaddingLeft(2)

	roleStyle = lipgloss.NewStyle().
			Foreground(tokyoCyan).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(tokyoRed).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(tokyoGreen)
)

const chatHelp = `Ask anything about the New Zealand grid, for example:
  What is the current power generation?
  What are the spot prices?
  How much of the electricity is renewable?
  What is the carbon intensity?

Commands:
  /help     Show this help
  /history  Show the conversation so far
  /clear    Start a new conversation
  /quit     Leave the chat`

// chatSession is the state of one interactive conversation
type chatSession struct {
	useCase    *usecases.GridUseCase
	transcript entities.Transcript
	out        io.Writer
	render     func(markdown string) string
}

func newChatSession(useCase *usecases.GridUseCase, out io.Writer, render func(string) string) *chatSession {
	if render == nil {
		render = func(s string) string { return s }
	}
	return &chatSession{
		useCase:    useCase,
		transcript: entities.NewTranscript(),
		out:        out,
		render:     render,
	}
}

func (app *App) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat about the grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.debug {
				// keep the terminal for the conversation
				log.SetLevel(log.WarnLevel)
			}

			useCase, closeLog, err := newUseCase(app.cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			renderer, err := newRenderer()
			if err != nil {
				return fmt.Errorf("error initializing renderer: %w", err)
			}

			out := cmd.OutOrStdout()
			displayWelcomeBanner(out, app.version)
			fmt.Fprintln(out, hintStyle.Render("Type /help for commands, Ctrl+C to quit"))

			session := newChatSession(useCase, out, func(markdown string) string {
				rendered, err := renderer.Render(markdown)
				if err != nil {
					return markdown
				}
				return rendered
			})
			return session.run(cmd.Context())
		},
	}
}

// run is the main interaction loop
func (s *chatSession) run(ctx context.Context) error {
	for {
		var prompt string
		err := huh.NewForm(huh.NewGroup(huh.NewText().
			Title("Ask about New Zealand electricity").
			Value(&prompt).
			CharLimit(1000)),
		).WithWidth(getTerminalWidth()).
			WithTheme(huh.ThemeCharm()).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(s.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("error reading prompt: %w", err)
		}

		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			continue
		}

		if handled, quit := s.handleSlashCommand(prompt); quit {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		} else if handled {
			continue
		}

		fmt.Fprintln(s.out, promptStyle.Render("You: "+prompt))

		var spin func(action func()) error
		if term.IsTerminal(int(os.Stdout.Fd())) {
			spin = func(action func()) error {
				return spinner.New().Title("Checking the grid...").Action(action).Run()
			}
		}
		answer := runOnce(func() string { return s.ask(ctx, prompt) }, spin)
		fmt.Fprintln(s.out, s.render(answer))
	}
}

// runOnce calls fn exactly once and returns its result. When spin is set, fn runs under it;
// if spin fails before starting fn, fn runs here instead.
func runOnce(fn func() string, spin func(action func()) error) string {
	result := make(chan string, 1)
	var claimed atomic.Bool
	action := func() {
		if claimed.CompareAndSwap(false, true) {
			result <- fn()
		}
	}

	if spin != nil {
		if err := spin(action); err != nil {
			log.Debug("Spinner unavailable", "error", err)
		}
	}
	action()
	return <-result
}

// ask answers one question and extends the session transcript
func (s *chatSession) ask(ctx context.Context, question string) string {
	transcript, answer := s.useCase.Turn(ctx, s.transcript, question)
	s.transcript = transcript
	return answer
}

// handleSlashCommand runs a /command. quit is true for /quit and /exit.
func (s *chatSession) handleSlashCommand(input string) (handled bool, quit bool) {
	if !strings.HasPrefix(input, "/") {
		return false, false
	}

	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/help":
		fmt.Fprintln(s.out, responseStyle.Render(chatHelp))
	case "/history":
		s.displayHistory()
	case "/clear":
		s.transcript = entities.NewTranscript()
		fmt.Fprintln(s.out, hintStyle.Render("Conversation cleared."))
	case "/quit", "/exit":
		return true, true
	default:
		fmt.Fprintln(s.out, errorStyle.Render(fmt.Sprintf("Unknown command: %s (type /help)", input)))
	}
	return true, false
}

func (s *chatSession) displayHistory() {
	if s.transcript.Len() == 0 {
		fmt.Fprintln(s.out, hintStyle.Render("No messages yet."))
		return
	}
	for _, msg := range s.transcript.Messages {
		name := "You"
		if msg.Role == entities.RoleAssistant {
			name = "Bot"
		}
		fmt.Fprintln(s.out, roleStyle.Render(name+" ("+msg.At.Format("15:04:05")+"):"))
		fmt.Fprintln(s.out, s.render(msg.Content))
	}
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 40 {
		return 80
	}
	return width - 20
}

func newRenderer() (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.TokyoNightStyle),
		glamour.WithWordWrap(getTerminalWidth()),
	)
}
