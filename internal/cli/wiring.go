package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/config"
	"github.com/rsham004/nz-electricity-chatbot/internal/integration"
	"github.com/rsham004/nz-electricity-chatbot/internal/integration/openai"
	"github.com/rsham004/nz-electricity-chatbot/internal/repository"
	"github.com/rsham004/nz-electricity-chatbot/internal/usecases"
)

// newGridClient creates the upstream client from the configuration
func newGridClient(cfg *config.Config) *integration.GridClient {
	return integration.NewGridClient(cfg.BaseURL, cfg.Timeout(), nil)
}

// newUseCase wires the responder with its query log and optional interpreter.
// The returned func closes the query log.
func newUseCase(cfg *config.Config) (*usecases.GridUseCase, func(), error) {
	var interpreter usecases.IntentInterpreter
	if cfg.Interpreter == config.InterpreterOpenAI {
		svc, err := openai.NewIntentService(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OpenAI interpreter: %w", err)
		}
		interpreter = svc
	}

	repo, err := repository.NewSQLiteQueryRepository(cfg.QueryLogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open query log: %w", err)
	}
	closeRepo := func() {
		if err := repo.Close(); err != nil {
			log.Warn("Failed to close query log", "error", err)
		}
	}

	log.Debug("Responder ready", "interpreter", cfg.Interpreter, "query_log", repo.DBPath)
	useCase := usecases.NewGridUseCase(newGridClient(cfg), repo, interpreter).WithInterpreterTimeout(cfg.Timeout())
	return useCase, closeRepo, nil
}
