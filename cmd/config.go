package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/gemchat/internal/gemchat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, model, base_url, token, storage, data_dir, log_level"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  gemchat config             # Show all configuration
  gemchat config model       # Show only model
  gemchat config token       # Show only the (masked) API key
  gemchat config data_dir    # Show only the history directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration from file
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			value, ok := configField(cfg, args[0])
			if !ok {
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				return fmt.Errorf("unknown field: %s", args[0])
			}
			fmt.Println(value)
			return nil
		}

		// Display all configuration values
		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("Model: %s\n", cfg.GetModel())
		fmt.Printf("BaseURL: %s\n", cfg.BaseURL)
		fmt.Printf("Token: %s\n", maskToken(cfg.Token))
		fmt.Printf("Storage: %s\n", cfg.Storage)
		fmt.Printf("DataDir: %s\n", cfg.DataDir)
		fmt.Printf("LogLevel: %s\n", cfg.LogLevel)
		return nil
	},
}

// configField returns the display value of a single field
func configField(cfg *config.Config, field string) (string, bool) {
	switch strings.ToLower(field) {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "model":
		return cfg.GetModel(), true
	case "base_url", "baseurl":
		return cfg.BaseURL, true
	case "token":
		return maskToken(cfg.Token), true
	case "storage":
		return cfg.Storage, true
	case "data_dir", "datadir":
		return cfg.DataDir, true
	case "log_level", "loglevel":
		return cfg.LogLevel, true
	default:
		return "", false
	}
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
