/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/longkey1/gemchat/internal/gemchat/asker"
	"github.com/longkey1/gemchat/internal/gemchat/conversation"
	"github.com/spf13/cobra"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat with Gemini.
Each line you enter is sent as a question. Recent questions are available
with the arrow keys and are kept across runs.

Type '/help' for commands, '/exit' or 'Ctrl+D' to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		return runChat(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// chatSession is the state of one interactive chat
type chatSession struct {
	app     *app
	out     io.Writer
	errOut  io.Writer
	spinner bool

	// lineHistory is the line editor history, reset with /clear-history
	lineHistory interface{ ResetHistory() }
}

// runChat reads questions until EOF or /exit
func runChat(ctx context.Context, a *app, out, errOut io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "You> ",
		HistoryLimit:           conversation.MaxHistory,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "/exit",
		Stdout:                 errOut,
		Stderr:                 errOut,
	})
	if err != nil {
		return fmt.Errorf("initializing line editor: %w", err)
	}
	defer rl.Close()

	// Seed oldest first so the most recent question is one Up away
	history := a.store.History()
	for i := len(history) - 1; i >= 0; i-- {
		rl.SaveHistory(history[i])
	}

	s := &chatSession{
		app:         a,
		out:         out,
		errOut:      errOut,
		spinner:     true,
		lineHistory: rl,
	}

	fmt.Fprintf(errOut, "\n=== Gemini Chat ===\n")
	fmt.Fprintf(errOut, "Model: %s\n", a.cfg.GetModel())
	fmt.Fprintf(errOut, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
	fmt.Fprintf(errOut, "===================\n\n")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(errOut, "Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("input error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if s.handleSpecialCommand(ctx, input) {
				continue
			}
			return nil
		}

		rl.SaveHistory(input)
		s.app.asker.SetInput(input)
		s.submit(ctx)
	}
}

// submit sends the pending input and prints what the store recorded for it
func (s *chatSession) submit(ctx context.Context) asker.Outcome {
	before := s.app.store.Len()

	var done chan bool
	if s.spinner {
		done = make(chan bool)
		go showSpinner(s.errOut, done)
	}

	outcome := s.app.asker.Submit(ctx)

	if done != nil {
		done <- true
		close(done)
	}

	msgs := s.app.store.Messages()
	if before > len(msgs) {
		before = len(msgs)
	}
	for _, msg := range msgs[before:] {
		if msg.Role == conversation.RoleQuestion {
			continue
		}
		if msg.IsError() {
			renderMessage(s.errOut, msg)
		} else {
			fmt.Fprintln(s.out)
			renderMessage(s.out, msg)
			fmt.Fprintln(s.out)
		}
	}
	return outcome
}

// showSpinner displays a spinner animation while waiting for response
func showSpinner(w io.Writer, done chan bool) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			// Clear the spinner line
			fmt.Fprint(w, "\r\033[K")
			return
		default:
			fmt.Fprintf(w, "\r%s Waiting for response...", spinners[i])
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

// handleSpecialCommand processes special commands in interactive mode
// Returns true to continue the loop, false to exit
func (s *chatSession) handleSpecialCommand(ctx context.Context, command string) bool {
	command = strings.ToLower(strings.TrimSpace(command))
	w := s.errOut

	switch command {
	case "/help", "/h":
		fmt.Fprintln(w, "\nAvailable commands:")
		fmt.Fprintln(w, "  /help, /h           - Show this help message")
		fmt.Fprintln(w, "  /info, /i           - Show chat information")
		fmt.Fprintln(w, "  /history            - Show recent questions")
		fmt.Fprintln(w, "  /retry, /r          - Send the last failed question again")
		fmt.Fprintln(w, "  /clear, /c          - Clear the conversation and the screen")
		fmt.Fprintln(w, "  /clear-history      - Forget recent questions")
		fmt.Fprintln(w, "  /exit, /quit        - Exit interactive mode")
		fmt.Fprintln(w, "  Ctrl+D              - Exit interactive mode")
		fmt.Fprintln(w, "")
		return true

	case "/info", "/i":
		fmt.Fprintln(w, "\nChat Information:")
		fmt.Fprintf(w, "  Model: %s\n", s.app.cfg.GetModel())
		fmt.Fprintf(w, "  Storage: %s\n", s.app.cfg.Storage)
		fmt.Fprintf(w, "  Messages: %d\n", s.app.store.Len())
		fmt.Fprintf(w, "  History: %d/%d\n", len(s.app.store.History()), conversation.MaxHistory)
		fmt.Fprintln(w, "")
		return true

	case "/history":
		renderHistory(w, s.app.store.History())
		return true

	case "/retry", "/r":
		if s.app.asker.Input() == "" {
			fmt.Fprintln(w, "Nothing to retry.")
			return true
		}
		s.submit(ctx)
		return true

	case "/clear", "/c":
		s.app.store.ClearConversation()
		// Clear screen (Unix/Linux)
		fmt.Fprint(s.out, "\033[H\033[2J")
		return true

	case "/clear-history":
		if err := s.app.store.ClearHistory(); err != nil {
			fmt.Fprintf(w, "Warning: failed to clear history: %v\n", err)
			return true
		}
		if s.lineHistory != nil {
			s.lineHistory.ResetHistory()
		}
		fmt.Fprintln(w, "History cleared.")
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(w, "Goodbye!")
		return false

	default:
		fmt.Fprintf(w, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
