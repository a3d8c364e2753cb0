package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/bryanchriswhite/WindowShot/internal/config"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	prettyLog bool
	rootCmd   = &cobra.Command{
		Use:   "windowshot",
		Short: "WindowShot - capture a chosen window to numbered PNG files",
		Long: `WindowShot lists the top-level windows on the desktop, raises the one you
pick and saves its on-screen rectangle as test1.png, test2.png, ... in a
folder of your choice.

Features:
  • List capturable windows via X11
  • One-shot capture of a window by title
  • Auto capture every 10 seconds
  • Never overwrites an existing file
  • Web UI, REST API and MCP tools`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := viper.GetString("log_level")
			if level == "" {
				level = string(logger.InfoLevel)
			}
			logger.Init(level, prettyLog)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/windowshot/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8080)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", true, "human-readable log output")

	// Bind flags to viper
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	viper.SetEnvPrefix("WINDOWSHOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig reads the config file and applies flag and WINDOWSHOT_*
// environment overrides on top of it.
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for _, key := range config.Keys() {
		if !viper.IsSet(key) {
			continue
		}
		value := viper.GetString(key)
		if value == "" || (key == "server_port" && value == "0") {
			continue
		}
		if err := configMgr.Set(key, value); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}

	logger.Init(configMgr.Get().LogLevel, prettyLog)
	return configMgr, nil
}
