package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Lineup session commands",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionAbandonCmd())
	cmd.AddCommand(sessionAction("reload <session-id>", "Reload the roster, keeping the formation", http.MethodPost, "/roster/reload"))
	cmd.AddCommand(newSessionFormationCmd())
	cmd.AddCommand(newSessionAssignCmd())
	cmd.AddCommand(newSessionUnassignCmd())
	cmd.AddCommand(newSessionBenchCmd())
	cmd.AddCommand(newSessionCaptainCmd())
	cmd.AddCommand(sessionAction("auto-assign <session-id>", "Fill empty positions from available players", http.MethodPost, "/auto-assign"))
	cmd.AddCommand(sessionAction("clear <session-id>", "Empty every position and the bench", http.MethodPost, "/clear"))
	cmd.AddCommand(newSessionValidateCmd())
	cmd.AddCommand(newSessionSubmitCmd())

	return cmd
}

func sessionPath(sessionID string, parts ...string) string {
	path := "/v1/lineup-sessions/" + url.PathEscape(sessionID)
	for _, part := range parts {
		path += "/" + url.PathEscape(part)
	}
	return path
}

func newSessionStartCmd() *cobra.Command {
	var matchID, teamID string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a lineup session for a team in a match",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"match_id": matchID, "team_id": teamID}
			if cfg.RequestedBy != "" {
				req["requested_by"] = cfg.RequestedBy
			}

			var result Session
			if err := client.Post(cmd.Context(), "/v1/lineup-sessions", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&matchID, "match", "", "Match ID")
	cmd.Flags().StringVar(&teamID, "team", "", "Team ID")
	_ = cmd.MarkFlagRequired("match")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show the current state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Get(cmd.Context(), sessionPath(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <session-id>",
		Short: "Discard a session without submitting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), sessionPath(args[0]), nil); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Session %s abandoned", args[0]))
			return nil
		},
	}
}

// sessionAction builds a command that calls a body-less endpoint and prints
// the returned session.
func sessionAction(use, short, method, suffix string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Do(cmd.Context(), method, sessionPath(args[0])+suffix, nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionFormationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formation <session-id> <formation-id>",
		Short: "Choose a formation (clears the current lineup)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			req := map[string]string{"formation_id": args[1]}
			if err := client.Put(cmd.Context(), sessionPath(args[0], "formation"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <session-id> <position> <player-id>",
		Short: "Place a player in a starting position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			req := map[string]string{"player_id": args[2]}
			position := strings.ToUpper(args[1])
			if err := client.Put(cmd.Context(), sessionPath(args[0], "positions", position), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <session-id> <position>",
		Short: "Empty a starting position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			position := strings.ToUpper(args[1])
			if err := client.Delete(cmd.Context(), sessionPath(args[0], "positions", position), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Bench commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <session-id> <player-id>",
		Short: "Put a player on the bench",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Put(cmd.Context(), sessionPath(args[0], "bench", args[1]), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <session-id> <player-id>",
		Short: "Take a player off the bench",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Delete(cmd.Context(), sessionPath(args[0], "bench", args[1]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}

func newSessionCaptainCmd() *cobra.Command {
	var clearCaptain bool

	cmd := &cobra.Command{
		Use:   "captain <session-id> [player-id]",
		Short: "Name the captain, or clear it with --clear",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			path := sessionPath(args[0], "captain")

			switch {
			case clearCaptain:
				if err := client.Delete(cmd.Context(), path, &result); err != nil {
					return err
				}
			case len(args) == 2:
				req := map[string]string{"player_id": args[1]}
				if err := client.Put(cmd.Context(), path, req, &result); err != nil {
					return err
				}
			default:
				return fmt.Errorf("player-id is required unless --clear is set")
			}

			output(cmd).Print(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearCaptain, "clear", false, "Clear the captain")

	return cmd
}

func newSessionValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <session-id>",
		Short: "Check whether the lineup can be submitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ValidationResult
			if err := client.Get(cmd.Context(), sessionPath(args[0], "validation"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <session-id>",
		Short: "Validate and send the lineup to the tournament backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Submission
			if err := client.Post(cmd.Context(), sessionPath(args[0], "submit"), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
