package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ragrouter/src/config"
	"ragrouter/src/log"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ragrouter",
	Short: "Route HR, IT and Finance questions to domain RAG agents",
	Long: `ragrouter classifies free-text employee questions, sends them to the
matching HR, IT or Finance agent and answers from that domain's policy
documents. Answers can optionally be graded by an evaluator model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env file is fine; the environment may be set already.
	_ = godotenv.Load()

	settingDefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to read config file %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
}

func setupLogging() error {
	opts := log.Options{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}
	if file := viper.GetString("log.file"); file != "" {
		opts.Outputs = []string{"stderr", file}
	}
	return log.Setup(opts)
}

// loadSettings decodes and validates the configuration.
func loadSettings() (*config.Settings, error) {
	s, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
