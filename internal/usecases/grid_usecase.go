// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/rsham004/nz-electricity-chatbot/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ApologyMessage is the reply to any question that could not be answered
const ApologyMessage = "I'm sorry, I encountered an error while processing your request. Please try again later."

// DefaultInterpreterTimeout bounds how long a question waits on the interpreter before keyword rules take over
const DefaultInterpreterTimeout = 10 * time.Second

// GridDataSource provides current grid data. It is implemented by integration.GridClient.
type GridDataSource interface {
	FetchGeneration(ctx context.Context) (entities.GenerationSnapshot, error)
	FetchSpotPrices(ctx context.Context) (entities.PriceSnapshot, error)
	FetchEmissions(ctx context.Context) (entities.EmissionsSnapshot, error)
}

// IntentInterpreter picks the intent of a free-text question and a short message to show before the data
type IntentInterpreter interface {
	InterpretQuestion(ctx context.Context, question string) (entities.Intent, string, error)
}

// Reply is the outcome of answering one question
type Reply struct {
	Intent entities.Intent
	Text   string
	Err    error
}

// Message returns the text to show the user: the answer, or the apology when answering failed
func (r Reply) Message() string {
	if r.Err != nil {
		return ApologyMessage
	}
	return r.Text
}

// GridUseCase answers questions about the electricity grid
type GridUseCase struct {
	source      GridDataSource
	repo        repository.QueryRepository
	interpreter IntentInterpreter
	logger      *log.Logger

	interpreterTimeout time.Duration
}

// NewGridUseCase creates a new grid use case.
// repo and interpreter are optional and may be nil.
func NewGridUseCase(source GridDataSource, repo repository.QueryRepository, interpreter IntentInterpreter) *GridUseCase {
	return &GridUseCase{
		source:      source,
		repo:        repo,
		interpreter: interpreter,
		logger:      log.Default().With("component", "responder"),

		interpreterTimeout: DefaultInterpreterTimeout,
	}
}

// WithLogger replaces the logger used by the use case
func (uc *GridUseCase) WithLogger(logger *log.Logger) *GridUseCase {
	uc.logger = logger
	return uc
}

// WithInterpreterTimeout sets how long classification waits on the interpreter. Zero or less keeps the default.
func (uc *GridUseCase) WithInterpreterTimeout(d time.Duration) *GridUseCase {
	if d > 0 {
		uc.interpreterTimeout = d
	}
	return uc
}

// Respond answers a question. It never fails: errors are logged and replaced by ApologyMessage.
func (uc *GridUseCase) Respond(ctx context.Context, question string) string {
	return uc.Ask(ctx, question).Message()
}

// Ask answers a question, logs the outcome and records it in the query log
func (uc *GridUseCase) Ask(ctx context.Context, question string) Reply {
	uc.logger.Info("Received question", "question", question)
	reply := uc.Answer(ctx, question)
	uc.finish(question, reply)
	return reply
}

// RespondTo answers with the template of a fixed intent, skipping classification
func (uc *GridUseCase) RespondTo(ctx context.Context, intent entities.Intent) string {
	reply := uc.answerIntent(ctx, intent, "")
	uc.finish("/"+string(intent), reply)
	return reply.Message()
}

// Turn answers a question and returns a copy of the transcript with both messages appended.
// The transcript passed in is never modified.
func (uc *GridUseCase) Turn(ctx context.Context, transcript entities.Transcript, question string) (entities.Transcript, string) {
	next, reply := uc.Converse(ctx, transcript, question)
	return next, reply.Message()
}

// Converse is Turn for callers that also need the intent or the failure cause
func (uc *GridUseCase) Converse(ctx context.Context, transcript entities.Transcript, question string) (entities.Transcript, Reply) {
	askedAt := time.Now()
	reply := uc.Ask(ctx, question)
	next := transcript.Append(
		entities.Message{Role: entities.RoleUser, Content: question, At: askedAt},
		entities.Message{Role: entities.RoleAssistant, Content: reply.Message(), At: time.Now()},
	)
	return next, reply
}

// Answer classifies a question, fetches the data it needs and renders the reply.
// Failures, including panics, are reported in Reply.Err.
func (uc *GridUseCase) Answer(ctx context.Context, question string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			reply = Reply{Intent: reply.Intent, Err: fmt.Errorf("panic while classifying question: %v", r)}
		}
	}()
	intent, note := uc.classify(ctx, question)
	return uc.answerIntent(ctx, intent, note)
}

func (uc *GridUseCase) answerIntent(ctx context.Context, intent entities.Intent, note string) (reply Reply) {
	reply.Intent = intent
	defer func() {
		if r := recover(); r != nil {
			reply.Text = ""
			reply.Err = fmt.Errorf("panic while answering %s question: %v", intent, r)
		}
	}()

	data, err := uc.fetch(ctx, needsFor(intent))
	if err != nil {
		reply.Err = fmt.Errorf("failed to fetch data for %s question: %w", intent, err)
		return reply
	}

	text, err := render(intent, data)
	if err != nil {
		reply.Err = fmt.Errorf("failed to format %s answer: %w", intent, err)
		return reply
	}
	if note != "" {
		text = note + "\n\n" + text
	}
	reply.Text = text
	return reply
}

// classify uses the interpreter when one is configured and keyword rules otherwise.
// An interpreter that does not answer within interpreterTimeout counts as failed.
func (uc *GridUseCase) classify(ctx context.Context, question string) (entities.Intent, string) {
	if uc.interpreter != nil {
		ictx, cancel := context.WithTimeout(ctx, uc.interpreterTimeout)
		intent, note, err := uc.interpreter.InterpretQuestion(ictx, question)
		cancel()
		if err == nil {
			uc.logger.Debug("Interpreter chose intent", "intent", intent)
			return intent, note
		}
		uc.logger.Warn("Interpreter failed, using keyword rules", "error", err)
	}
	intent := ClassifyIntent(question)
	uc.logger.Debug("Classified question", "intent", intent)
	return intent, ""
}

// fetch retrieves the needed categories. The first failure cancels the other requests.
func (uc *GridUseCase) fetch(ctx context.Context, needs dataNeeds) (gridData, error) {
	var data gridData
	g, gctx := errgroup.WithContext(ctx)
	if needs.generation {
		g.Go(recovered(func() (err error) {
			data.generation, err = uc.source.FetchGeneration(gctx)
			return err
		}))
	}
	if needs.prices {
		g.Go(recovered(func() (err error) {
			data.prices, err = uc.source.FetchSpotPrices(gctx)
			return err
		}))
	}
	if needs.emissions {
		g.Go(recovered(func() (err error) {
			data.emissions, err = uc.source.FetchEmissions(gctx)
			return err
		}))
	}
	if err := g.Wait(); err != nil {
		return gridData{}, err
	}
	return data, nil
}

// recovered turns a panic inside a fetch goroutine into an error
func recovered(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}

// finish logs the outcome and records it in the query log
func (uc *GridUseCase) finish(question string, reply Reply) {
	outcome := entities.OutcomeAnswered
	var errText string
	if reply.Err != nil {
		outcome = entities.OutcomeFailed
		errText = reply.Err.Error()
		uc.logger.Error("Failed to answer question", "intent", reply.Intent, "error", reply.Err)
	} else {
		uc.logger.Info("Answered question", "intent", reply.Intent, "chars", len(reply.Text))
	}

	if uc.repo == nil {
		return
	}
	err := uc.repo.RecordQuery(entities.QueryRecord{
		AskedAt:  time.Now(),
		Question: question,
		Intent:   reply.Intent,
		Outcome:  outcome,
		Error:    errText,
	})
	if err != nil {
		uc.logger.Warn("Failed to record query", "error", err)
	}
}

// RecentQueries returns the latest entries of the query log
func (uc *GridUseCase) RecentQueries(limit int) ([]entities.QueryRecord, error) {
	if uc.repo == nil {
		return nil, errors.New("query log is not configured")
	}
	return uc.repo.RecentQueries(limit)
}
