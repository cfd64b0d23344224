package achievement

import (
	"fmt"
	"strings"
)

// Catalog is an immutable, validated list of achievement definitions. It is
// always passed explicitly; there is no package-level instance, so tests can
// run the engine against arbitrarily small catalogs.
type Catalog struct {
	defs   []Definition
	byName map[string]int
}

// NewCatalog validates the definitions and builds a catalog. Malformed
// entries are rejected here, at startup, never at evaluation time.
func NewCatalog(defs []Definition) (*Catalog, error) {
	byName := make(map[string]int, len(defs))
	byID := make(map[string]struct{}, len(defs))

	for i, def := range defs {
		if strings.TrimSpace(def.ID) == "" {
			return nil, fmt.Errorf("definition %d: id is required", i)
		}
		if strings.TrimSpace(def.Name) == "" {
			return nil, fmt.Errorf("definition %q: name is required", def.ID)
		}
		if _, dup := byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement id: %s", def.ID)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate achievement name: %s", def.Name)
		}
		if !validCategory(def.Category) {
			return nil, fmt.Errorf("achievement %q: unknown category %s", def.Name, def.Category)
		}
		if _, ok := rarityRanks[def.Rarity]; !ok {
			return nil, fmt.Errorf("achievement %q: unknown rarity %s", def.Name, def.Rarity)
		}
		if def.Points < 0 {
			return nil, fmt.Errorf("achievement %q: points must be non-negative", def.Name)
		}
		if def.Requirement == nil {
			return nil, fmt.Errorf("achievement %q: requirement is required", def.Name)
		}
		if err := def.Requirement.validate(); err != nil {
			return nil, fmt.Errorf("achievement %q: %w", def.Name, err)
		}

		byID[def.ID] = struct{}{}
		byName[def.Name] = i
	}

	copied := make([]Definition, len(defs))
	copy(copied, defs)

	return &Catalog{defs: copied, byName: byName}, nil
}

// MustCatalog panics on validation errors. Intended for the compiled-in
// default catalog, where a malformed entry is a programming error.
func MustCatalog(defs []Definition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(fmt.Errorf("invalid achievement catalog: %w", err))
	}
	return c
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int { return len(c.defs) }

// All returns the definitions in catalog order. Callers get a copy.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// ByName looks up a definition by its display name.
func (c *Catalog) ByName(name string) (Definition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// ByCategory returns all definitions in the given category, in catalog order.
func (c *Catalog) ByCategory(cat Category) []Definition {
	var out []Definition
	for _, def := range c.defs {
		if def.Category == cat {
			out = append(out, def)
		}
	}
	return out
}

func validCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
