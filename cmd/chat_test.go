package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/longkey1/gemchat/internal/gemchat/asker"
	"github.com/longkey1/gemchat/internal/gemchat/config"
	"github.com/longkey1/gemchat/internal/gemchat/conversation"
	"github.com/longkey1/gemchat/internal/gemini"
	"github.com/longkey1/gemchat/internal/logger"
	"github.com/longkey1/gemchat/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string) (*gemini.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gemini.Response{
		Candidates: []gemini.Candidate{
			{Content: gemini.ResponseContent{Parts: []gemini.Part{{Text: f.text}}}},
		},
	}, nil
}

type fakeLineHistory struct {
	resets int
}

func (f *fakeLineHistory) ResetHistory() { f.resets++ }

func newTestApp(gen asker.Generator) *app {
	st := storage.NewMemoryStorage()
	store := conversation.NewStore(st, conversation.WithLogger(logger.Discard()))
	return &app{
		cfg:          config.NewDefaultConfig(""),
		store:        store,
		asker:        asker.New(gen, store, asker.WithLogger(logger.Discard())),
		closeStorage: st.Close,
	}
}

func newTestSession(gen asker.Generator) (*chatSession, *bytes.Buffer, *bytes.Buffer, *fakeLineHistory) {
	var out, errOut bytes.Buffer
	lh := &fakeLineHistory{}
	return &chatSession{
		app:         newTestApp(gen),
		out:         &out,
		errOut:      &errOut,
		lineHistory: lh,
	}, &out, &errOut, lh
}

func TestChatSubmitAnswered(t *testing.T) {
	s, out, errOut, _ := newTestSession(&fakeGenerator{text: "**Goroutines**\nLightweight threads."})
	s.app.asker.SetInput("What is a goroutine?")

	outcome := s.submit(context.Background())

	assert.Equal(t, asker.OutcomeAnswered, outcome)
	assert.Equal(t, "\nGemini>\n\nGoroutines\n  Lightweight threads.\n\n", out.String())
	assert.Empty(t, errOut.String())
	assert.Equal(t, []string{"What is a goroutine?"}, s.app.store.History())
}

func TestChatSubmitFailedThenRetry(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection reset")}
	s, out, errOut, _ := newTestSession(gen)
	s.app.asker.SetInput("hello")

	require.Equal(t, asker.OutcomeFailed, s.submit(context.Background()))
	assert.Equal(t, "Error: "+asker.ErrorMessage+"\n", errOut.String())
	assert.Empty(t, out.String())
	assert.Equal(t, "hello", s.app.asker.Input())

	gen.err = nil
	gen.text = "hi there"
	assert.True(t, s.handleSpecialCommand(context.Background(), "/retry"))
	assert.Contains(t, out.String(), "hi there")
	assert.Empty(t, s.app.asker.Input())
	assert.Equal(t, 4, s.app.store.Len())
}

func TestChatSpecialCommands(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantCont bool
		wantErr  string
	}{
		{name: "help", command: "/help", wantCont: true, wantErr: "Available commands:"},
		{name: "help short", command: "/h", wantCont: true, wantErr: "/clear-history"},
		{name: "info", command: "/info", wantCont: true, wantErr: "Model: gemini-2.0-flash"},
		{name: "empty history", command: "/history", wantCont: true, wantErr: "No history found."},
		{name: "nothing to retry", command: "/retry", wantCont: true, wantErr: "Nothing to retry."},
		{name: "unknown", command: "/bogus", wantCont: true, wantErr: "Unknown command: /bogus"},
		{name: "exit", command: "/exit", wantCont: false, wantErr: "Goodbye!"},
		{name: "quit upper case", command: "  /QUIT ", wantCont: false, wantErr: "Goodbye!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, errOut, _ := newTestSession(&fakeGenerator{text: "x"})

			cont := s.handleSpecialCommand(context.Background(), tt.command)

			assert.Equal(t, tt.wantCont, cont)
			assert.Contains(t, errOut.String(), tt.wantErr)
		})
	}
}

func TestChatHistoryCommands(t *testing.T) {
	s, _, errOut, lh := newTestSession(&fakeGenerator{text: "answer"})
	for _, q := range []string{"first", "second"} {
		s.app.asker.SetInput(q)
		require.Equal(t, asker.OutcomeAnswered, s.submit(context.Background()))
	}

	s.handleSpecialCommand(context.Background(), "/history")
	assert.Equal(t, " 1. second\n 2. first\n", errOut.String())

	errOut.Reset()
	assert.True(t, s.handleSpecialCommand(context.Background(), "/clear-history"))
	assert.Contains(t, errOut.String(), "History cleared.")
	assert.Empty(t, s.app.store.History())
	assert.Equal(t, 1, lh.resets)

	// The conversation itself is untouched
	assert.Equal(t, 4, s.app.store.Len())
}

func TestChatClearKeepsHistory(t *testing.T) {
	s, out, _, lh := newTestSession(&fakeGenerator{text: "answer"})
	s.app.asker.SetInput("question")
	require.Equal(t, asker.OutcomeAnswered, s.submit(context.Background()))
	out.Reset()

	assert.True(t, s.handleSpecialCommand(context.Background(), "/clear"))
	assert.Zero(t, s.app.store.Len())
	assert.Equal(t, []string{"question"}, s.app.store.History())
	assert.Zero(t, lh.resets)
	assert.True(t, strings.HasPrefix(out.String(), "\033[H"))
}
