package match

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Match is one tournament fixture a lineup can be submitted for.
type Match struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	Status     string
	KickoffAt  *time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(m.HomeTeamID) == "" || strings.TrimSpace(m.AwayTeamID) == "" {
		return fmt.Errorf("match %s must reference both teams", m.ID)
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match %s home and away team must differ", m.ID)
	}
	return nil
}

// HasTeam reports whether teamID plays in the match.
func (m Match) HasTeam(teamID string) bool {
	teamID = strings.TrimSpace(teamID)
	return teamID != "" && (teamID == m.HomeTeamID || teamID == m.AwayTeamID)
}

// AcceptsLineups is false once the match is over or called off.
func (m Match) AcceptsLineups() bool {
	status := NormalizeStatus(m.Status)
	return !IsFinishedStatus(status) && !IsCancelledLikeStatus(status)
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "ABANDONED":
		return true
	default:
		return false
	}
}
