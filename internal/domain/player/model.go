package player

import (
	"fmt"
	"strings"
)

// Player is one athlete on a team roster as reported by the tournament backend.
type Player struct {
	ID          string
	Name        string
	Number      int
	Position    string
	IsAvailable bool
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player %s name is required", p.ID)
	}
	if p.Number < 0 {
		return fmt.Errorf("player %s shirt number must not be negative", p.ID)
	}

	return nil
}

// NaturalPosition returns the player's preferred position code upper-cased.
func (p Player) NaturalPosition() string {
	return strings.ToUpper(strings.TrimSpace(p.Position))
}
