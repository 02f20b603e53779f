package player

import "context"

// RosterReader loads the players registered for one team.
type RosterReader interface {
	ListByTeam(ctx context.Context, teamID string) ([]Player, error)
}
