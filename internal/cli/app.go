// Package cli is the command-line entry point of the bot
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/config"
	"github.com/spf13/cobra"
)

// App is the gridbot command-line application
type App struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	version string

	configFile string
	envFile    string
	baseURL    string
	timeout    int
	debug      bool
}

// NewApp creates the command tree
func NewApp(version string) *App {
	app := &App{version: version}

	rootCmd := &cobra.Command{
		Use:   "gridbot",
		Short: "Ask questions about New Zealand's electricity grid",
		Long: `gridbot answers questions about New Zealand's electricity grid: current generation
by fuel type, regional spot prices, the renewable share and carbon emissions.

Examples:
  gridbot chat
  gridbot ask "What are the spot prices right now?"
  gridbot serve --addr :8080
  gridbot probe --base-url http://localhost:9000/v1`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: app.loadConfig,
	}

	rootCmd.PersistentFlags().StringVarP(&app.configFile, "config", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "Path to a .env file to load")
	rootCmd.PersistentFlags().StringVar(&app.baseURL, "base-url", "", "Electricity data API base URL")
	rootCmd.PersistentFlags().IntVar(&app.timeout, "timeout", 0, "Upstream request timeout in seconds")
	rootCmd.PersistentFlags().BoolVar(&app.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		app.newChatCmd(),
		app.newAskCmd(),
		app.newServeCmd(),
		app.newTelegramCmd(),
		app.newProbeCmd(),
		app.newQueriesCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *App) Execute() error {
	return app.rootCmd.Execute()
}

// SetArgs overrides os.Args, mainly for tests
func (app *App) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// SetOutput redirects command output, mainly for tests
func (app *App) SetOutput(w io.Writer) {
	app.rootCmd.SetOut(w)
	app.rootCmd.SetErr(w)
}

// loadConfig resolves the configuration: defaults, config file, environment, then flags
func (app *App) loadConfig(cmd *cobra.Command, args []string) error {
	if app.debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(log.InfoLevel)
		log.SetReportCaller(false)
	}

	if err := config.LoadDotEnv(app.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(app.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if app.baseURL != "" {
		cfg.BaseURL = app.baseURL
	}
	if app.timeout != 0 {
		cfg.TimeoutSeconds = app.timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Debug("Configuration loaded", "base_url", cfg.BaseURL, "interpreter", cfg.Interpreter, "query_log", cfg.QueryLogPath)
	app.cfg = cfg
	return nil
}
