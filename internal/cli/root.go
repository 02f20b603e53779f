package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "lineupctl",
		Short: "CLI for the lineup builder API",
		Long: `lineupctl drives the lineup builder service from a terminal.

Start a session for a match, pick a formation, place players, name a captain
and submit the lineup to the tournament backend.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.RequestedBy)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LINEUPCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.RequestedBy, "as", cfg.RequestedBy, "Coach identifier sent as X-Requested-By (env: LINEUPCTL_REQUESTED_BY)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newFormationCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newSubmissionCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
