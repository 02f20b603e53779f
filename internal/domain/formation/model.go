package formation

import (
	"errors"
	"fmt"
	"strings"
)

// GoalkeeperCode is the slot code every catalog formation uses for its keeper.
const GoalkeeperCode = "GK"

var (
	ErrUnknownFormation = errors.New("unknown formation")
	ErrInvalidCatalog   = errors.New("invalid formation catalog")
)

// Formation is a named template of ordered position slots.
type Formation struct {
	ID        string
	Label     string
	Positions []string
}

func (f Formation) Size() int {
	return len(f.Positions)
}

// HasPosition reports whether code is one of the formation's slots.
func (f Formation) HasPosition(code string) bool {
	for _, p := range f.Positions {
		if p == code {
			return true
		}
	}
	return false
}

func (f Formation) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("formation id is required")
	}
	if strings.TrimSpace(f.Label) == "" {
		return fmt.Errorf("formation %s label is required", f.ID)
	}
	if len(f.Positions) == 0 {
		return fmt.Errorf("formation %s must have at least one position", f.ID)
	}

	seen := make(map[string]struct{}, len(f.Positions))
	for _, code := range f.Positions {
		if code == "" || code != NormalizeCode(code) {
			return fmt.Errorf("formation %s has invalid position code %q", f.ID, code)
		}
		if _, exists := seen[code]; exists {
			return fmt.Errorf("formation %s has duplicate position code %s", f.ID, code)
		}
		seen[code] = struct{}{}
	}
	if _, ok := seen[GoalkeeperCode]; !ok {
		return fmt.Errorf("formation %s must have a %s position", f.ID, GoalkeeperCode)
	}

	return nil
}

// NormalizeCode upper-cases and trims a position code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BaseCode strips the numeric disambiguation suffix, e.g. CM02 -> CM.
func BaseCode(code string) string {
	code = NormalizeCode(code)
	end := len(code)
	for end > 0 && code[end-1] >= '0' && code[end-1] <= '9' {
		end--
	}
	if end == 0 {
		return code
	}
	return code[:end]
}

func clone(f Formation) Formation {
	copied := f
	copied.Positions = append([]string(nil), f.Positions...)
	return copied
}
