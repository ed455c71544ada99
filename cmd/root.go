/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/careerlens/apiserver/config"
	"github.com/careerlens/apiserver/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "careerlens",
	Short: "CareerLens job board backend",
	Long: `CareerLens job board backend. Employers post jobs, seekers apply,
and applications can be scored against a posting by an LLM.

	careerlens migrate up
	careerlens server
	careerlens worker
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates the environment and builds the logger.
func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg := config.LoadConfig()
	logger := logging.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return cfg, logger, err
	}
	return cfg, logger, nil
}
