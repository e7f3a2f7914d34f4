// Package asker runs the request cycle for a single question: it records the
// question, calls the API once and records the answer, a fallback or an
// error placeholder in the conversation store.
//
// Only one request may be in flight at a time. A question submitted while
// another is pending is ignored rather than queued. Requests are never
// retried and carry no timeout of their own.
package asker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/longkey1/gemchat/internal/gemchat/conversation"
	"github.com/longkey1/gemchat/internal/gemchat/markup"
	"github.com/longkey1/gemchat/internal/gemini"
	"github.com/longkey1/gemchat/internal/logger"
	"github.com/qmuntal/stateless"
)

const (
	// FallbackMessage is shown when the API answers without any text
	FallbackMessage = "No response found."

	// ErrorMessage is shown when the request or its response fails
	ErrorMessage = "Something went wrong. Please try again."
)

// Request lifecycle states and triggers
const (
	stateIdle    = "Idle"
	statePending = "Pending"

	triggerSend     = "Send"
	triggerAnswer   = "Answer"
	triggerFallback = "Fallback"
	triggerFail     = "Fail"
)

// Outcome reports how an Ask call ended
type Outcome int

const (
	OutcomeSkipped  Outcome = iota // empty question or a request already in flight
	OutcomeAnswered                // answer text received
	OutcomeFallback                // response had no answer text
	OutcomeFailed                  // transport or parse failure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAnswered:
		return "answered"
	case OutcomeFallback:
		return "fallback"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Generator is the single outbound call made per question
type Generator interface {
	GenerateContent(ctx context.Context, text string) (*gemini.Response, error)
}

// Asker sends questions and records their results in a conversation store
type Asker struct {
	client Generator
	store  *conversation.Store
	log    *slog.Logger

	mu    sync.Mutex
	fsm   *stateless.StateMachine
	input string
}

// Option configures an Asker
type Option func(*Asker)

// WithLogger sets the logger used for failure diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(a *Asker) {
		a.log = l
	}
}

// New creates an Asker that records into store
func New(client Generator, store *conversation.Store, opts ...Option) *Asker {
	a := &Asker{
		client: client,
		store:  store,
		log:    logger.L,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.fsm = stateless.NewStateMachine(stateIdle)
	a.fsm.Configure(stateIdle).
		Permit(triggerSend, statePending)
	a.fsm.Configure(statePending).
		Permit(triggerAnswer, stateIdle).
		Permit(triggerFallback, stateIdle).
		Permit(triggerFail, stateIdle)
	a.fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		a.log.Debug("request state changed", "from", t.Source, "to", t.Destination, "trigger", t.Trigger)
	})

	return a
}

// SetInput replaces the pending input text
func (a *Asker) SetInput(text string) {
	a.mu.Lock()
	a.input = text
	a.mu.Unlock()
}

// Input returns the pending input text
func (a *Asker) Input() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.input
}

// InFlight reports whether a request is pending
func (a *Asker) InFlight() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fsm.MustState() == statePending
}

// Submit asks the pending input text
func (a *Asker) Submit(ctx context.Context) Outcome {
	return a.Ask(ctx, a.Input())
}

// Ask sends question and records the result in the store. It never fails:
// every failure becomes an error message in the conversation.
//
// The question is recorded before the request is sent. The pending input is
// cleared when an answer or the fallback is recorded and kept after a
// failure so it can be retried.
func (a *Asker) Ask(ctx context.Context, question string) (outcome Outcome) {
	if strings.TrimSpace(question) == "" {
		return OutcomeSkipped
	}
	if !a.begin(ctx) {
		a.log.Debug("request already in flight; question ignored")
		return OutcomeSkipped
	}

	outcome = OutcomeFailed
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("request panicked", "panic", r)
			a.store.AppendError(ErrorMessage)
			outcome = OutcomeFailed
		}
		a.finish(ctx, outcome)
	}()

	a.store.AppendQuestion(question)

	resp, err := a.client.GenerateContent(ctx, question)
	if err != nil {
		a.log.Error("request failed", "error", err)
		a.store.AppendError(ErrorMessage)
		return OutcomeFailed
	}

	raw, ok := resp.Text()
	if !ok {
		a.store.AppendAnswer(FallbackMessage)
		a.SetInput("")
		return OutcomeFallback
	}

	a.store.AppendAnswer(markup.CleanResponseText(raw), markup.Lines(raw)...)
	a.SetInput("")
	return OutcomeAnswered
}

// begin moves the lifecycle to pending; it reports false when a request is
// already pending.
func (a *Asker) begin(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fsm.MustState() == statePending {
		return false
	}
	if err := a.fsm.FireCtx(context.WithoutCancel(ctx), triggerSend); err != nil {
		a.log.Error("failed to start request", "error", err)
		return false
	}
	return true
}

func (a *Asker) finish(ctx context.Context, outcome Outcome) {
	trigger := triggerFail
	switch outcome {
	case OutcomeAnswered:
		trigger = triggerAnswer
	case OutcomeFallback:
		trigger = triggerFallback
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.fsm.FireCtx(context.WithoutCancel(ctx), trigger); err != nil {
		a.log.Error("failed to finish request", "error", err)
	}
}
