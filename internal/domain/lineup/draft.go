package lineup

import (
	"fmt"

	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
)

// Draft is a serializable picture of an engine.
type Draft struct {
	Session     Session
	Roster      []player.Player
	FormationID string
	// Starting maps slot code to player id.
	Starting  map[string]string
	Bench     []string
	CaptainID string
}

func (e *Engine) Snapshot() Draft {
	out := Draft{
		Session:  e.session,
		Roster:   make([]player.Player, 0, len(e.order)),
		Starting: make(map[string]string),
	}
	for _, id := range e.order {
		out.Roster = append(out.Roster, e.players[id].Player)
	}
	if e.formation != nil {
		out.FormationID = e.formation.ID
	}
	for code, id := range e.slots {
		if id != "" {
			out.Starting[code] = id
		}
	}
	for _, p := range e.Bench() {
		out.Bench = append(out.Bench, p.ID)
	}
	if captain, ok := e.Captain(); ok {
		out.CaptainID = captain.ID
	}
	return out
}

// Restore replays a draft through the engine operations so a stored draft
// that breaks any lineup rule is refused.
func Restore(draft Draft, catalog formation.Catalog) (*Engine, error) {
	engine := NewEngine(draft.Session, catalog)
	if err := engine.LoadRoster(draft.Roster); err != nil {
		return nil, fmt.Errorf("restore roster: %w", err)
	}

	if draft.FormationID == "" {
		if len(draft.Starting) > 0 || len(draft.Bench) > 0 || draft.CaptainID != "" {
			return nil, fmt.Errorf("%w: draft has selections without a formation", ErrConfig)
		}
		return engine, nil
	}
	if err := engine.SelectFormation(draft.FormationID); err != nil {
		return nil, fmt.Errorf("restore formation: %w", err)
	}

	seen := make(map[string]struct{}, len(draft.Starting)+len(draft.Bench))
	for _, code := range engine.formation.Positions {
		playerID, ok := draft.Starting[code]
		if !ok {
			continue
		}
		if _, dup := seen[playerID]; dup {
			return nil, fmt.Errorf("%w: player %s selected twice", ErrInvalidSelection, playerID)
		}
		seen[playerID] = struct{}{}
		if err := engine.AssignToPosition(playerID, code); err != nil {
			return nil, fmt.Errorf("restore position %s: %w", code, err)
		}
	}
	if len(seen) != len(draft.Starting) {
		return nil, fmt.Errorf("%w: draft references positions outside formation %s", ErrConfig, draft.FormationID)
	}

	for _, playerID := range draft.Bench {
		if _, dup := seen[playerID]; dup {
			return nil, fmt.Errorf("%w: player %s selected twice", ErrInvalidSelection, playerID)
		}
		seen[playerID] = struct{}{}
		if err := engine.AddToBench(playerID); err != nil {
			return nil, fmt.Errorf("restore bench: %w", err)
		}
	}

	if draft.CaptainID != "" {
		if err := engine.SetCaptain(draft.CaptainID); err != nil {
			return nil, fmt.Errorf("restore captain: %w", err)
		}
	}
	return engine, nil
}
