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

	"github.com/longkey1/gemchat/internal/gemchat/asker"
	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Send a single question to Gemini and print the answer.
The question is read from the arguments, or from standard input when no
arguments are given.

Examples:
  gemchat ask "What is a goroutine?"
  echo "Explain channels" | gemchat ask`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question, err := readQuestion(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		return askOnce(cmd.Context(), a, question, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// askOnce asks a single question and prints the recorded answer.
// An empty question or a failed request is returned as an error.
func askOnce(ctx context.Context, a *app, question string, out, errOut io.Writer) error {
	switch a.asker.Ask(ctx, question) {
	case asker.OutcomeSkipped:
		return errors.New("question is empty")
	case asker.OutcomeFailed:
		if last, ok := a.store.Last(); ok {
			renderMessage(errOut, last)
		}
		return errors.New("request failed")
	}

	if last, ok := a.store.Last(); ok {
		renderMessage(out, last)
	}
	return nil
}

// readQuestion joins the arguments, or reads stdin when there are none
func readQuestion(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	input, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(input)), nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
