package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recent questions",
	Long: `Show or clear the recently asked questions.
Without a subcommand the history is listed, most recent first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListCmd.RunE(cmd, args)
	},
}

// historyListCmd represents the history list command
var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent questions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		renderHistory(cmd.OutOrStdout(), a.store.History())
		return nil
	},
}

// historyClearCmd represents the history clear command
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recent questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		return clearHistory(a, yes, cmd.InOrStdin(), cmd.ErrOrStderr())
	},
}

// clearHistory empties the stored history after confirmation, unless yes is set
func clearHistory(a *app, yes bool, in io.Reader, errOut io.Writer) error {
	if !yes && !confirm(in, errOut, "Clear all history? [y/N]: ") {
		fmt.Fprintln(errOut, "Cancelled.")
		return nil
	}

	if err := a.store.ClearHistory(); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	fmt.Fprintln(errOut, "History cleared.")
	return nil
}

// confirm asks a yes/no question and reports whether the answer was yes
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyClearCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}
