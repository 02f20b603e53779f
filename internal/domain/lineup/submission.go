package lineup

import "time"

// SubmissionEntry is one player line of a lineup approval request.
type SubmissionEntry struct {
	PlayerID  string
	Position  string
	Role      Role
	IsCaptain bool
}

// Submission is the lineup approval request sent to the tournament backend.
type Submission struct {
	MatchID   string
	Formation string
	Players   []SubmissionEntry
}

// SubmissionRecord is an accepted submission kept for auditing.
type SubmissionRecord struct {
	ID            string
	MatchID       string
	TeamID        string
	FormationID   string
	Entries       []SubmissionEntry
	RequestedBy   string
	RemoteMessage string
	SubmittedAt   time.Time
}

// BuildSubmission serializes the current lineup without validating it.
// Starters come first in slot order, then the bench in roster order.
func (e *Engine) BuildSubmission() Submission {
	out := Submission{
		MatchID: e.session.MatchID,
		Players: make([]SubmissionEntry, 0, len(e.order)),
	}
	if e.formation != nil {
		out.Formation = e.formation.ID
	}

	for _, p := range e.Starting() {
		out.Players = append(out.Players, SubmissionEntry{
			PlayerID:  p.ID,
			Position:  p.AssignedPosition,
			Role:      RoleStarting,
			IsCaptain: p.IsCaptain,
		})
	}
	for _, p := range e.Bench() {
		out.Players = append(out.Players, SubmissionEntry{
			PlayerID: p.ID,
			Position: p.NaturalPosition(),
			Role:     RoleBench,
		})
	}

	return out
}
