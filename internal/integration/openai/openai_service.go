package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
)

// AgentResponse defines the structured output from the OpenAI agent.
type AgentResponse struct {
	Intent      string `json:"intent" jsonschema:"enum=generation,enum=price,enum=renewable,enum=carbon,enum=overview" jsonschema_description:"Which data the user is asking about"`
	UserMessage string `json:"user_message" jsonschema_description:"A one-line acknowledgement to show the user before the data, in their language"`
}

// Config holds the settings of the OpenAI interpreter.
// Timeout bounds each request; zero leaves the client default.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// IntentService interprets a free-text question into one of the supported intents.
type IntentService struct {
	client openai.Client
	model  openai.ChatModel
	schema interface{}
	logger *log.Logger
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewIntentService creates and initializes a new IntentService.
func NewIntentService(cfg Config) (*IntentService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}
	// a failed call falls back to keyword rules, so it is never retried
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	var model openai.ChatModel = openai.ChatModelGPT4o
	if cfg.Model != "" {
		model = openai.ChatModel(cfg.Model)
	}

	return &IntentService{
		client: openai.NewClient(opts...),
		model:  model,
		schema: GenerateSchema[AgentResponse](),
		logger: log.Default().With("component", "openai"),
	}, nil
}

// SystemPrompt returns the instructions sent with every question.
func SystemPrompt() string {
	intents := make([]string, 0, len(entities.Intents))
	for _, intent := range entities.Intents {
		intents = append(intents, string(intent))
	}

	return fmt.Sprintf(`You are an expert on New Zealand electricity data. You route user questions to the right live data view.

Available intents: %s

Behavior:
- "generation": total generation, power output or the generation mix by fuel type.
- "price": wholesale spot prices in any region.
- "renewable": how much of the generation is renewable.
- "carbon": carbon intensity or emissions.
- "overview": anything else, including greetings and broad questions.

user_message: one short sentence in the user's language acknowledging the question. Do not include any numbers, the data is added after your message.

Output **strictly** in JSON.`, strings.Join(intents, ", "))
}

// InterpretQuestion sends a question to the OpenAI agent and returns the chosen intent.
func (s *IntentService) InterpretQuestion(ctx context.Context, question string) (entities.Intent, string, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "agent_response",
		Description: openai.String("Structured response containing the intent and a user message"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt()),
			openai.UserMessage(question),
		},
		ResponseFormat: respFormat,
		Model:          s.model,
	})
	if err != nil {
		return "", "", fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", "", errors.New("received empty response from OpenAI")
	}

	return ParseAgentResponse(chat.Choices[0].Message.Content, s.logger)
}

// ParseAgentResponse decodes the structured output of the model
func ParseAgentResponse(content string, logger *log.Logger) (entities.Intent, string, error) {
	var agentResp AgentResponse
	if err := json.Unmarshal([]byte(content), &agentResp); err != nil {
		logger.Error("Failed to unmarshal OpenAI response", "error", err, "raw", content)
		return "", "", fmt.Errorf("error unmarshalling OpenAI response: %w", err)
	}

	intent, ok := entities.ParseIntent(agentResp.Intent)
	if !ok {
		return "", "", fmt.Errorf("OpenAI returned unknown intent %q", agentResp.Intent)
	}
	return intent, strings.TrimSpace(agentResp.UserMessage), nil
}
