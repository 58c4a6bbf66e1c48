package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message
type Message struct {
	Role    string    `json:"role" yaml:"role"`
	Content string    `json:"content" yaml:"content"`
	At      time.Time `json:"at" yaml:"at"`
}

// Transcript is a chat history owned by the caller.
// It is a value: Append returns a new transcript and leaves the receiver untouched.
type Transcript struct {
	ID       string    `json:"id" yaml:"id"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// NewTranscript creates an empty transcript with a fresh ID
func NewTranscript() Transcript {
	return Transcript{ID: uuid.NewString()}
}

// Append returns a copy of the transcript with the messages added
func (t Transcript) Append(msgs ...Message) Transcript {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	out := make([]Message, 0, len(t.Messages)+len(msgs))
	out = append(out, t.Messages...)
	out = append(out, msgs...)
	t.Messages = out
	return t
}

// Len returns the number of messages
func (t Transcript) Len() int {
	return len(t.Messages)
}

// Last returns a copy holding only the newest n messages
func (t Transcript) Last(n int) Transcript {
	if n < 0 {
		n = 0
	}
	if len(t.Messages) <= n {
		return t.Append()
	}
	t.Messages = append([]Message(nil), t.Messages[len(t.Messages)-n:]...)
	return t
}
