package cli

import (
	"github.com/spf13/cobra"
)

func newFormationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "formations",
		Aliases: []string{"formation"},
		Short:   "Formation commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the formations a lineup can use",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Formation
			if err := client.Get(cmd.Context(), "/v1/formations", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
