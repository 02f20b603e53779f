package lineup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/lineup-builder/internal/domain/player"
)

var (
	ErrConfig           = errors.New("lineup configuration error")
	ErrNotFound         = errors.New("player not in roster")
	ErrInvalidSelection = errors.New("invalid lineup selection")
	ErrInvalidRoster    = errors.New("invalid roster")
)

// Role is the part a selected player plays in the lineup.
type Role string

const (
	RoleStarting Role = "STARTING"
	RoleBench    Role = "BENCH"
)

// Session identifies whose lineup, for which match, the engine is building.
type Session struct {
	MatchID     string
	TeamID      string
	RequestedBy string
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.MatchID) == "" {
		return fmt.Errorf("session match id is required")
	}
	if strings.TrimSpace(s.TeamID) == "" {
		return fmt.Errorf("session team id is required")
	}
	return nil
}

// PlayerState is a roster player plus its derived lineup state.
// An empty AssignedPosition or Role means unset.
type PlayerState struct {
	player.Player
	IsSelected       bool
	AssignedPosition string
	Role             Role
	IsCaptain        bool
}

// IsNeutral reports whether the player carries no lineup state at all.
func (p PlayerState) IsNeutral() bool {
	return !p.IsSelected && p.AssignedPosition == "" && p.Role == "" && !p.IsCaptain
}

func (p *PlayerState) reset() {
	p.IsSelected = false
	p.AssignedPosition = ""
	p.Role = ""
	p.IsCaptain = false
}

// PositionSlot is a formation slot and the id of its starter, empty when vacant.
type PositionSlot struct {
	Code     string
	PlayerID string
}

func (s PositionSlot) Filled() bool {
	return s.PlayerID != ""
}

const (
	ValidationMissingPositions   = "missingPositions"
	ValidationBenchEmpty         = "benchEmpty"
	ValidationCaptainRequired    = "captainRequired"
	ValidationGoalkeeperRequired = "goalkeeperRequired"
)

// ValidationError describes the first unmet submission precondition.
type ValidationError struct {
	Code         string
	Message      string
	MissingSlots []string
}

func (e *ValidationError) Error() string {
	return e.Message
}
