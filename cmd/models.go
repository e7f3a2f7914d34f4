/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/longkey1/gemchat/internal/gemini"
	"github.com/spf13/cobra"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available Gemini models",
	Long: `List the Gemini models that can answer questions.
Fetches the latest model information directly from the API.
The configured model is marked as the default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		models, err := a.client.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		if len(models) == 0 {
			return fmt.Errorf("no models returned from API")
		}

		renderModels(cmd.OutOrStdout(), models)
		return nil
	},
}

// renderModels writes the model table
func renderModels(w io.Writer, models []gemini.ModelInfo) {
	fmt.Fprintf(w, "Available models:\n\n")

	// Calculate column widths
	maxModelIDWidth := 15
	for _, model := range models {
		if len(model.ID) > maxModelIDWidth {
			maxModelIDWidth = len(model.ID)
		}
	}

	// Display header
	fmt.Fprintf(w, "%-*s  %-10s  %s\n", maxModelIDWidth, "MODEL ID", "DEFAULT", "DESCRIPTION")
	fmt.Fprintf(w, "%s  %s  %s\n",
		strings.Repeat("-", maxModelIDWidth),
		strings.Repeat("-", 10),
		strings.Repeat("-", 50))

	for _, model := range models {
		defaultMark := ""
		if model.IsDefault {
			defaultMark = "Yes"
		}
		fmt.Fprintf(w, "%-*s  %-10s  %s\n", maxModelIDWidth, model.ID, defaultMark, model.Description)
	}

	// Usage hint
	fmt.Fprintf(w, "\nUse a model with: GEMCHAT_MODEL=<model> gemchat chat\n")
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
