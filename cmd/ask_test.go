package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/longkey1/gemchat/internal/gemchat/asker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskOnce(t *testing.T) {
	tests := []struct {
		name       string
		gen        *fakeGenerator
		question   string
		wantErr    string
		wantOut    string
		wantErrOut string
	}{
		{
			name:     "answered",
			gen:      &fakeGenerator{text: "Go is *fast*."},
			question: "What is Go?",
			wantOut:  "Gemini>\n  Go is fast.\n",
		},
		{
			name:     "fallback",
			gen:      &fakeGenerator{text: ""},
			question: "What is Go?",
			wantOut:  "Gemini> " + asker.FallbackMessage + "\n",
		},
		{
			name:       "failed",
			gen:        &fakeGenerator{err: errors.New("connection refused")},
			question:   "What is Go?",
			wantErr:    "request failed",
			wantErrOut: "Error: " + asker.ErrorMessage + "\n",
		},
		{
			name:     "blank question",
			gen:      &fakeGenerator{text: "unused"},
			question: "   ",
			wantErr:  "question is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(tt.gen)
			var out, errOut bytes.Buffer

			err := askOnce(context.Background(), a, tt.question, &out, &errOut)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErrOut, errOut.String())
		})
	}
}

func TestAskCommandReadsCommandInput(t *testing.T) {
	askCmd.SetIn(strings.NewReader("  piped question\n"))
	defer askCmd.SetIn(nil)

	q, err := readQuestion(nil, askCmd.InOrStdin())
	require.NoError(t, err)
	assert.Equal(t, "piped question", q)
}

func TestClearHistory(t *testing.T) {
	tests := []struct {
		name        string
		yes         bool
		input       string
		wantHistory []string
		wantMessage string
	}{
		{name: "declined", input: "n\n", wantHistory: []string{"b", "a"}, wantMessage: "Cancelled."},
		{name: "no answer", input: "", wantHistory: []string{"b", "a"}, wantMessage: "Cancelled."},
		{name: "confirmed", input: "y\n", wantHistory: []string{}, wantMessage: "History cleared."},
		{name: "yes flag", yes: true, wantHistory: []string{}, wantMessage: "History cleared."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(&fakeGenerator{text: "x"})
			a.store.AppendQuestion("a")
			a.store.AppendQuestion("b")
			var errOut bytes.Buffer

			err := clearHistory(a, tt.yes, strings.NewReader(tt.input), &errOut)

			require.NoError(t, err)
			assert.Equal(t, tt.wantHistory, a.store.History())
			assert.Contains(t, errOut.String(), tt.wantMessage)
			if tt.yes {
				assert.NotContains(t, errOut.String(), "[y/N]")
			}
		})
	}
}
