package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	sonic "github.com/bytedance/sonic"
)

// Output renders API results as text tables or indented JSON.
type Output struct {
	format string
	w      io.Writer
}

func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}

	switch v := data.(type) {
	case []Formation:
		o.printFormations(v)
	case Session:
		o.printSession(v)
	case ValidationResult:
		o.printValidation(v)
	case Submission:
		o.printSubmission(v)
	case []Submission:
		for i, item := range v {
			if i > 0 {
				fmt.Fprintln(o.w)
			}
			o.printSubmission(item)
		}
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	raw, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(o.w, "{\"error\":%q}\n", err.Error())
		return
	}
	fmt.Fprintln(o.w, string(raw))
}

func (o *Output) printFormations(items []Formation) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tPOSITIONS")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, item.Label, strings.Join(item.Positions, " "))
	}
	_ = tw.Flush()
}

func (o *Output) printSession(s Session) {
	fmt.Fprintf(o.w, "Session:   %s\n", s.ID)
	fmt.Fprintf(o.w, "Match:     %s  Team: %s\n", s.MatchID, s.TeamID)
	fmt.Fprintf(o.w, "Formation: %s\n", orDash(s.FormationID))
	fmt.Fprintf(o.w, "Captain:   %s\n", orDash(s.CaptainID))

	names := make(map[string]string, len(s.Players))
	for _, p := range s.Players {
		names[p.ID] = fmt.Sprintf("#%d %s", p.Number, p.Name)
	}

	if len(s.Slots) > 0 {
		fmt.Fprintln(o.w, "\nStarting:")
		tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
		for _, slot := range s.Slots {
			player := "-"
			if slot.PlayerID != "" {
				player = names[slot.PlayerID]
			}
			fmt.Fprintf(tw, "  %s\t%s\n", slot.Code, player)
		}
		_ = tw.Flush()
	}

	var bench, free []string
	for _, p := range s.Players {
		label := names[p.ID] + " (" + p.Position + ")"
		if !p.IsAvailable {
			label += " unavailable"
		}
		switch {
		case p.Role == "BENCH":
			bench = append(bench, label)
		case !p.IsSelected:
			free = append(free, label)
		}
	}
	fmt.Fprintf(o.w, "\nBench (%d): %s\n", len(bench), orDash(strings.Join(bench, ", ")))
	fmt.Fprintf(o.w, "Available (%d): %s\n", len(free), orDash(strings.Join(free, ", ")))
}

func (o *Output) printValidation(v ValidationResult) {
	if v.Valid {
		fmt.Fprintln(o.w, "Lineup is valid")
		return
	}
	fmt.Fprintf(o.w, "Lineup is invalid: %s (%s)\n", v.Message, v.Code)
	if len(v.MissingPositions) > 0 {
		fmt.Fprintf(o.w, "Missing: %s\n", strings.Join(v.MissingPositions, ", "))
	}
}

func (o *Output) printSubmission(s Submission) {
	fmt.Fprintf(o.w, "Submission %s  match=%s team=%s formation=%s at %s\n", s.ID, s.MatchID, s.TeamID, s.FormationID, s.SubmittedAt)
	if s.RemoteMessage != "" {
		fmt.Fprintf(o.w, "Backend: %s\n", s.RemoteMessage)
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	for _, p := range s.Players {
		captain := ""
		if p.IsCaptain {
			captain = "C"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.Role, p.Position, p.PlayerID, captain)
	}
	_ = tw.Flush()
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

type HealthResult struct {
	Status string `json:"status"`
}

type Formation struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Positions []string `json:"positions"`
	Size      int      `json:"size"`
}

type Slot struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id,omitempty"`
}

type SessionPlayer struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Number           int    `json:"number"`
	Position         string `json:"position"`
	IsAvailable      bool   `json:"is_available"`
	IsSelected       bool   `json:"is_selected"`
	AssignedPosition string `json:"assigned_position,omitempty"`
	Role             string `json:"role,omitempty"`
	IsCaptain        bool   `json:"is_captain"`
}

type Session struct {
	ID          string          `json:"id"`
	MatchID     string          `json:"match_id"`
	TeamID      string          `json:"team_id"`
	RequestedBy string          `json:"requested_by,omitempty"`
	FormationID string          `json:"formation_id,omitempty"`
	CaptainID   string          `json:"captain_id,omitempty"`
	Slots       []Slot          `json:"slots"`
	Players     []SessionPlayer `json:"players"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type ValidationResult struct {
	Valid            bool     `json:"valid"`
	Code             string   `json:"code,omitempty"`
	Message          string   `json:"message,omitempty"`
	MissingPositions []string `json:"missing_positions,omitempty"`
}

type SubmissionPlayer struct {
	PlayerID  string `json:"player_id"`
	Position  string `json:"position"`
	Role      string `json:"role"`
	IsCaptain bool   `json:"is_captain"`
}

type Submission struct {
	ID            string             `json:"id"`
	MatchID       string             `json:"match_id"`
	TeamID        string             `json:"team_id"`
	FormationID   string             `json:"formation_id"`
	RequestedBy   string             `json:"requested_by,omitempty"`
	RemoteMessage string             `json:"remote_message,omitempty"`
	SubmittedAt   string             `json:"submitted_at"`
	Players       []SubmissionPlayer `json:"players"`
}
