package postgres

import "time"

const submissionTable = "lineup_submissions"

type submissionTableModel struct {
	ID            string    `db:"id"`
	MatchID       string    `db:"match_id"`
	TeamID        string    `db:"team_id"`
	FormationID   string    `db:"formation_id"`
	Entries       string    `db:"entries"`
	RequestedBy   string    `db:"requested_by"`
	RemoteMessage string    `db:"remote_message"`
	SubmittedAt   time.Time `db:"submitted_at"`
}

type submissionEntryModel struct {
	PlayerID  string `json:"playerId"`
	Position  string `json:"position"`
	Role      string `json:"role"`
	IsCaptain bool   `json:"isCaptain"`
}

var submissionColumns = []string{
	"id",
	"match_id",
	"team_id",
	"formation_id",
	"entries",
	"requested_by",
	"remote_message",
	"submitted_at",
}
