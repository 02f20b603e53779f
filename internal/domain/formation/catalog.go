package formation

import (
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// Catalog is the static, ordered list of formations a coach may choose from.
type Catalog struct {
	items []Formation
	index map[string]int
}

func NewCatalog(items []Formation) (Catalog, error) {
	if len(items) == 0 {
		return Catalog{}, fmt.Errorf("%w: at least one formation is required", ErrInvalidCatalog)
	}

	out := Catalog{
		items: make([]Formation, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		item.Label = strings.TrimSpace(item.Label)
		positions := make([]string, 0, len(item.Positions))
		for _, code := range item.Positions {
			positions = append(positions, NormalizeCode(code))
		}
		item.Positions = positions

		if err := item.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		if _, exists := out.index[item.ID]; exists {
			return Catalog{}, fmt.Errorf("%w: duplicate formation id %s", ErrInvalidCatalog, item.ID)
		}
		out.index[item.ID] = len(out.items)
		out.items = append(out.items, item)
	}

	return out, nil
}

func (c Catalog) Get(id string) (Formation, error) {
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Formation{}, fmt.Errorf("%w: %s", ErrUnknownFormation, id)
	}
	return clone(c.items[idx]), nil
}

func (c Catalog) List() []Formation {
	out := make([]Formation, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, clone(item))
	}
	return out
}

func (c Catalog) Len() int {
	return len(c.items)
}

type catalogFileItem struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Positions []string `json:"positions"`
}

// ParseCatalogJSON reads a catalog from `[{"id","label","positions":[...]}]`.
func ParseCatalogJSON(raw []byte) (Catalog, error) {
	var decoded []catalogFileItem
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return Catalog{}, fmt.Errorf("%w: decode catalog: %v", ErrInvalidCatalog, err)
	}

	items := make([]Formation, 0, len(decoded))
	for _, item := range decoded {
		items = append(items, Formation{
			ID:        item.ID,
			Label:     item.Label,
			Positions: item.Positions,
		})
	}
	return NewCatalog(items)
}

// DefaultCatalog returns the built-in eleven-a-side formations.
func DefaultCatalog() Catalog {
	catalog, err := NewCatalog([]Formation{
		{ID: "4-4-2", Label: "4-4-2", Positions: []string{"GK", "LB", "CB01", "CB02", "RB", "LM", "CM01", "CM02", "RM", "ST01", "ST02"}},
		{ID: "4-3-3", Label: "4-3-3", Positions: []string{"GK", "LB", "CB01", "CB02", "RB", "CM01", "CM02", "CM03", "LW", "ST", "RW"}},
		{ID: "4-2-3-1", Label: "4-2-3-1", Positions: []string{"GK", "LB", "CB01", "CB02", "RB", "CDM01", "CDM02", "LM", "CAM", "RM", "ST"}},
		{ID: "3-5-2", Label: "3-5-2", Positions: []string{"GK", "CB01", "CB02", "CB03", "LWB", "CM01", "CDM", "CM02", "RWB", "ST01", "ST02"}},
		{ID: "3-4-3", Label: "3-4-3", Positions: []string{"GK", "CB01", "CB02", "CB03", "LM", "CM01", "CM02", "RM", "LW", "ST", "RW"}},
		{ID: "5-3-2", Label: "5-3-2", Positions: []string{"GK", "LWB", "CB01", "CB02", "CB03", "RWB", "CM01", "CM02", "CM03", "ST01", "ST02"}},
		{ID: "4-1-4-1", Label: "4-1-4-1", Positions: []string{"GK", "LB", "CB01", "CB02", "RB", "CDM", "LM", "CM01", "CM02", "RM", "ST"}},
	})
	if err != nil {
		panic(fmt.Sprintf("default formation catalog: %v", err))
	}
	return catalog
}
