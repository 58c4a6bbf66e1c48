package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentResponse(t *testing.T) {
	intent, msg, err := ParseAgentResponse(`{"intent":"Carbon","user_message":"  Checking emissions now. "}`, log.Default())
	require.NoError(t, err)
	assert.Equal(t, entities.IntentCarbon, intent)
	assert.Equal(t, "Checking emissions now.", msg)
}

func TestParseAgentResponseUnknownIntent(t *testing.T) {
	_, _, err := ParseAgentResponse(`{"intent":"weather","user_message":""}`, log.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown intent "weather"`)
}

func TestParseAgentResponseInvalidJSON(t *testing.T) {
	_, _, err := ParseAgentResponse(`not json`, log.New(io.Discard))
	assert.Error(t, err)
}

func TestGenerateSchemaListsIntents(t *testing.T) {
	raw, err := json.Marshal(GenerateSchema[AgentResponse]())
	require.NoError(t, err)

	schema := string(raw)
	for _, intent := range entities.Intents {
		assert.Contains(t, schema, `"`+string(intent)+`"`)
	}
	assert.Contains(t, schema, `"user_message"`)
	assert.Contains(t, schema, `"additionalProperties":false`)
}

func TestSystemPromptMentionsEveryIntent(t *testing.T) {
	prompt := SystemPrompt()
	for _, intent := range entities.Intents {
		assert.Contains(t, prompt, string(intent))
	}
}

func TestNewIntentServiceRequiresKey(t *testing.T) {
	_, err := NewIntentService(Config{})
	assert.Error(t, err)
}

func TestInterpretQuestion(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
		  "id": "chatcmpl-1",
		  "object": "chat.completion",
		  "created": 1753876800,
		  "model": "gpt-4o-mini",
		  "choices": [{
		    "index": 0,
		    "finish_reason": "stop",
		    "message": {"role": "assistant", "content": "{\"intent\":\"price\",\"user_message\":\"Here are the latest prices.\"}"}
		  }]
		}`)
	}))
	defer server.Close()

	service, err := NewIntentService(Config{APIKey: "test", Model: "gpt-4o-mini", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	intent, msg, err := service.InterpretQuestion(context.Background(), "how much does power cost in Auckland?")
	require.NoError(t, err)
	assert.Equal(t, entities.IntentPrice, intent)
	assert.Equal(t, "Here are the latest prices.", msg)
	assert.Equal(t, "gpt-4o-mini", gotModel)
}

func TestInterpretQuestionGivesUpOnSlowServer(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	service, err := NewIntentService(Config{
		APIKey:  "test",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL + "/",
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	_, _, err = service.InterpretQuestion(context.Background(), "how much does power cost?")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestInterpretQuestionDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer server.Close()

	service, err := NewIntentService(Config{APIKey: "test", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	_, _, err = service.InterpretQuestion(context.Background(), "spot prices")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
