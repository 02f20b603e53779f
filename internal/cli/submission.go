package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newSubmissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"submission"},
		Short:   "Submitted lineup commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <match-id>",
		Short: "List lineups accepted for a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Submission
			if err := client.Get(cmd.Context(), "/v1/matches/"+url.PathEscape(args[0])+"/lineup-submissions", &result); err != nil {
				return err
			}

			out := output(cmd)
			if len(result) == 0 && cfg.Output != "json" {
				out.PrintMessage("No lineups submitted yet")
				return nil
			}
			out.Print(result)
			return nil
		},
	})

	return cmd
}
