package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/risk-warden/internal/config"
)

var (
	githubToken string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "warden-cli",
	Short: "warden-cli assesses GitHub pull requests for merge risk.",
	Long: `A CLI for the risk-warden pipeline. It scores pull requests, comments the
assessment, merges low-risk changes and looks up stored audit documents.

Configuration is read from config.yaml and RW_* environment variables.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token (overrides github.token)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print extra detail")
}

// loadConfig reads the service configuration and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if githubToken != "" {
		cfg.GitHub.Token = githubToken
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func requireToken(cfg *config.Config) error {
	if cfg.GitHub.Token == "" {
		return fmt.Errorf("no GitHub token configured\n\nTip: pass --github-token or set RW_GITHUB_TOKEN")
	}
	return nil
}
