package lineup

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
)

// Engine owns the roster and formation state of one match lineup and keeps
// player state and slot occupancy consistent across every operation.
// It is not safe for concurrent use.
type Engine struct {
	session   Session
	catalog   formation.Catalog
	formation *formation.Formation

	order   []string
	players map[string]*PlayerState
	// slot code -> starting player id; every formation slot has a key.
	slots map[string]string
}

func NewEngine(session Session, catalog formation.Catalog) *Engine {
	return &Engine{
		session: session,
		catalog: catalog,
		players: make(map[string]*PlayerState),
		slots:   make(map[string]string),
	}
}

func (e *Engine) Session() Session {
	return e.session
}

// Formation returns the selected formation, if any.
func (e *Engine) Formation() (formation.Formation, bool) {
	if e.formation == nil {
		return formation.Formation{}, false
	}
	out := *e.formation
	out.Positions = append([]string(nil), e.formation.Positions...)
	return out, true
}

// LoadRoster replaces the roster. Every player starts neutral and every slot
// of the current formation is emptied. The roster is left untouched when any
// id is empty or repeated.
func (e *Engine) LoadRoster(players []player.Player) error {
	order := make([]string, 0, len(players))
	states := make(map[string]*PlayerState, len(players))
	for _, p := range players {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return fmt.Errorf("%w: player id is required", ErrInvalidRoster)
		}
		if _, exists := states[p.ID]; exists {
			return fmt.Errorf("%w: duplicate player id %s", ErrInvalidRoster, p.ID)
		}
		states[p.ID] = &PlayerState{Player: p}
		order = append(order, p.ID)
	}

	e.order = order
	e.players = states
	for code := range e.slots {
		e.slots[code] = ""
	}
	return nil
}

// SelectFormation switches to the given formation and clears every
// assignment, bench seat and captaincy.
func (e *Engine) SelectFormation(id string) error {
	f, err := e.catalog.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	e.ClearAll()
	e.formation = &f
	e.slots = make(map[string]string, f.Size())
	for _, code := range f.Positions {
		e.slots[code] = ""
	}
	return nil
}

// AssignToPosition makes the player the starter of the slot. The previous
// occupant goes back to neutral and the player's previous slot, if any, is
// vacated.
func (e *Engine) AssignToPosition(playerID, code string) error {
	slot, err := e.slotCode(code)
	if err != nil {
		return err
	}
	target, err := e.player(playerID)
	if err != nil {
		return err
	}
	if !target.IsAvailable {
		return fmt.Errorf("%w: player %s is unavailable", ErrInvalidSelection, target.ID)
	}

	if occupantID := e.slots[slot]; occupantID != "" && occupantID != target.ID {
		e.players[occupantID].reset()
	}
	if target.Role == RoleStarting && target.AssignedPosition != slot {
		e.slots[target.AssignedPosition] = ""
	}

	target.IsSelected = true
	target.AssignedPosition = slot
	target.Role = RoleStarting
	target.IsCaptain = false
	e.slots[slot] = target.ID
	return nil
}

// RemoveFromPosition returns the slot's starter to neutral.
func (e *Engine) RemoveFromPosition(code string) error {
	slot, err := e.slotCode(code)
	if err != nil {
		return err
	}

	if occupantID := e.slots[slot]; occupantID != "" {
		e.players[occupantID].reset()
	}
	e.slots[slot] = ""
	return nil
}

// AddToBench seats the player on the bench, vacating any slot it held.
func (e *Engine) AddToBench(playerID string) error {
	target, err := e.player(playerID)
	if err != nil {
		return err
	}
	if !target.IsAvailable {
		return fmt.Errorf("%w: player %s is unavailable", ErrInvalidSelection, target.ID)
	}

	if target.Role == RoleStarting {
		e.slots[target.AssignedPosition] = ""
	}
	target.IsSelected = true
	target.AssignedPosition = ""
	target.Role = RoleBench
	target.IsCaptain = false
	return nil
}

// RemoveFromBench returns the player to neutral.
func (e *Engine) RemoveFromBench(playerID string) error {
	target, err := e.player(playerID)
	if err != nil {
		return err
	}
	if target.Role == RoleStarting {
		e.slots[target.AssignedPosition] = ""
	}
	target.reset()
	return nil
}

// SetCaptain hands the armband to a starting player. Anyone else is rejected
// and the current captain keeps it.
func (e *Engine) SetCaptain(playerID string) error {
	target, err := e.player(playerID)
	if err != nil {
		return err
	}
	if target.Role != RoleStarting {
		return fmt.Errorf("%w: captain must be in the starting lineup", ErrInvalidSelection)
	}

	for _, p := range e.players {
		p.IsCaptain = false
	}
	target.IsCaptain = true
	return nil
}

func (e *Engine) ClearCaptain() {
	for _, p := range e.players {
		p.IsCaptain = false
	}
}

// AutoAssign fills every vacant slot in formation order. A slot takes the
// first free available player whose natural position matches it, otherwise
// the first free available player of the roster.
func (e *Engine) AutoAssign() error {
	if e.formation == nil {
		return fmt.Errorf("%w: select a formation first", ErrConfig)
	}

	free := make([]*PlayerState, 0, len(e.order))
	for _, id := range e.order {
		p := e.players[id]
		if p.IsAvailable && !p.IsSelected {
			free = append(free, p)
		}
	}

	for _, slot := range e.formation.Positions {
		if e.slots[slot] != "" || len(free) == 0 {
			continue
		}

		pick := 0
		for i, p := range free {
			if positionMatches(slot, p.Position) {
				pick = i
				break
			}
		}

		chosen := free[pick]
		free = append(free[:pick], free[pick+1:]...)
		chosen.IsSelected = true
		chosen.AssignedPosition = slot
		chosen.Role = RoleStarting
		chosen.IsCaptain = false
		e.slots[slot] = chosen.ID
	}
	return nil
}

// ClearAll returns every player to neutral and empties every slot.
func (e *Engine) ClearAll() {
	for _, p := range e.players {
		p.reset()
	}
	for code := range e.slots {
		e.slots[code] = ""
	}
}

// Validate reports the first unmet submission precondition, or nil.
func (e *Engine) Validate() *ValidationError {
	if e.formation == nil {
		return &ValidationError{
			Code:    ValidationMissingPositions,
			Message: "select a formation first",
		}
	}

	missing := make([]string, 0)
	for _, slot := range e.formation.Positions {
		if e.slots[slot] == "" {
			missing = append(missing, slot)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Code:         ValidationMissingPositions,
			Message:      "missing players for positions: " + strings.Join(missing, ", "),
			MissingSlots: missing,
		}
	}

	if len(e.Bench()) == 0 {
		return &ValidationError{
			Code:    ValidationBenchEmpty,
			Message: "add at least 1 bench player",
		}
	}

	captains := 0
	for _, p := range e.players {
		if p.IsCaptain && p.Role == RoleStarting {
			captains++
		}
	}
	if captains != 1 {
		return &ValidationError{
			Code:    ValidationCaptainRequired,
			Message: "select exactly one captain from the starting lineup",
		}
	}

	if e.slots[formation.GoalkeeperCode] == "" {
		return &ValidationError{
			Code:    ValidationGoalkeeperRequired,
			Message: "a goalkeeper must start in the " + formation.GoalkeeperCode + " position",
		}
	}

	return nil
}

// PositionSlots lists the formation slots in order with their starters.
func (e *Engine) PositionSlots() []PositionSlot {
	if e.formation == nil {
		return nil
	}
	out := make([]PositionSlot, 0, e.formation.Size())
	for _, code := range e.formation.Positions {
		out = append(out, PositionSlot{Code: code, PlayerID: e.slots[code]})
	}
	return out
}

// Players returns every roster player in roster order.
func (e *Engine) Players() []PlayerState {
	return e.filter(func(PlayerState) bool { return true })
}

// Starting returns the starters in formation slot order.
func (e *Engine) Starting() []PlayerState {
	if e.formation == nil {
		return nil
	}
	out := make([]PlayerState, 0, e.formation.Size())
	for _, code := range e.formation.Positions {
		if id := e.slots[code]; id != "" {
			out = append(out, *e.players[id])
		}
	}
	return out
}

func (e *Engine) Bench() []PlayerState {
	return e.filter(func(p PlayerState) bool { return p.Role == RoleBench })
}

// Available returns unselected players that can still be picked.
func (e *Engine) Available() []PlayerState {
	return e.filter(func(p PlayerState) bool { return p.IsAvailable && !p.IsSelected })
}

func (e *Engine) Captain() (PlayerState, bool) {
	for _, id := range e.order {
		if p := e.players[id]; p.IsCaptain {
			return *p, true
		}
	}
	return PlayerState{}, false
}

func (e *Engine) filter(keep func(PlayerState) bool) []PlayerState {
	out := make([]PlayerState, 0, len(e.order))
	for _, id := range e.order {
		if p := *e.players[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) player(playerID string) (*PlayerState, error) {
	playerID = strings.TrimSpace(playerID)
	p, ok := e.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, playerID)
	}
	return p, nil
}

func (e *Engine) slotCode(code string) (string, error) {
	if e.formation == nil {
		return "", fmt.Errorf("%w: select a formation first", ErrConfig)
	}
	slot := formation.NormalizeCode(code)
	if _, ok := e.slots[slot]; !ok {
		return "", fmt.Errorf("%w: unknown position %s for formation %s", ErrConfig, code, e.formation.ID)
	}
	return slot, nil
}

// positionMatches compares a slot with a natural position ignoring case,
// numeric suffixes and a left/right side prefix (RCB plays CB).
func positionMatches(slot, natural string) bool {
	natural = formation.NormalizeCode(natural)
	if natural == "" {
		return false
	}
	slot = formation.NormalizeCode(slot)
	if natural == slot {
		return true
	}
	base := formation.BaseCode(slot)
	return natural == base || withoutSide(natural) == base
}

func withoutSide(code string) string {
	if len(code) >= 3 && (code[0] == 'L' || code[0] == 'R') {
		return code[1:]
	}
	return code
}
