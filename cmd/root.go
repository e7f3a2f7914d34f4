/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longkey1/gemchat/internal/gemchat/config"
	"github.com/longkey1/gemchat/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gemchat",
	Short: "A terminal chat client for the Gemini API",
	Long: `gemchat sends your questions to the Gemini API and prints the answers
as formatted chat output. Recent questions are remembered across runs.

You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel("debug")
			return
		}
		logger.SetLevel(viper.GetString("log_level"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gemchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("GEMCHAT")
	viper.AutomaticEnv()

	userConfigDir, err := config.DefaultConfigDir()
	cobra.CheckErr(err)

	defaultConfig := config.NewDefaultConfig("")

	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("base_url", defaultConfig.BaseURL)
	viper.SetDefault("token", defaultConfig.Token)
	viper.SetDefault("storage", defaultConfig.Storage)
	viper.SetDefault("data_dir", defaultConfig.DataDir)
	viper.SetDefault("log_level", defaultConfig.LogLevel)

	viper.BindEnv("model", "GEMCHAT_MODEL")
	viper.BindEnv("base_url", "GEMCHAT_BASE_URL")
	viper.BindEnv("token", "GEMCHAT_TOKEN")
	viper.BindEnv("storage", "GEMCHAT_STORAGE")
	viper.BindEnv("data_dir", "GEMCHAT_DATA_DIR")
	viper.BindEnv("log_level", "GEMCHAT_LOG_LEVEL")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/gemchat",
			"/usr/local/etc/gemchat",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			logger.L.Debug("loaded system-wide config", "file", viper.ConfigFileUsed())
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else {
				logger.L.Debug("merged user config", "file", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		logger.SetLevel("debug")
		logger.L.Debug("configuration",
			"file", viper.ConfigFileUsed(),
			"model", viper.GetString("model"),
			"base_url", viper.GetString("base_url"),
			"storage", viper.GetString("storage"),
			"data_dir", viper.GetString("data_dir"),
		)
	}
}

// defaultConfigFile returns the config file that init writes
func defaultConfigFile() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := config.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
