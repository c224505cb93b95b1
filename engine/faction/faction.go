// Package faction models named factions and the directed relationship graph
// between them.
package faction

import (
	"fmt"
	"sort"
	"strings"
)

// Relationship is how one faction regards another.
type Relationship int

const (
	Neutral Relationship = iota
	Friendly
	Hostile
)

func (r Relationship) String() string {
	switch r {
	case Friendly:
		return "Friendly"
	case Hostile:
		return "Hostile"
	default:
		return "Neutral"
	}
}

// ParseRelationship converts a name (case-insensitive) to a Relationship.
func ParseRelationship(s string) (Relationship, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "friendly":
		return Friendly, nil
	case "neutral":
		return Neutral, nil
	case "hostile":
		return Hostile, nil
	default:
		return Neutral, fmt.Errorf("unknown relationship %q", s)
	}
}

// Member is anything that belongs to a faction.
type Member interface {
	FactionName() string
}

// Faction is a named group with one-sided relationships to other factions.
type Faction struct {
	Name          string
	relationships map[string]Relationship
}

// Relationship returns how f regards the named faction. Factions with no
// entry are Neutral; a faction is Friendly with itself.
func (f *Faction) Relationship(other string) Relationship {
	if other == f.Name {
		return Friendly
	}
	if r, ok := f.relationships[other]; ok {
		return r
	}
	return Neutral
}

// SetRelationship sets how f regards other. The reverse direction is not
// touched.
func (f *Faction) SetRelationship(other string, r Relationship) {
	if f.relationships == nil {
		f.relationships = map[string]Relationship{}
	}
	f.relationships[other] = r
}

// RelationshipWith resolves the relationship to a member's faction. The
// boolean is false when member is nil, which callers must treat as neither
// friendly nor hostile.
func (f *Faction) RelationshipWith(m Member) (Relationship, bool) {
	if isNil(m) {
		return Neutral, false
	}
	return f.Relationship(m.FactionName()), true
}

// IsFriendly reports a resolved Friendly relationship.
func (f *Faction) IsFriendly(m Member) bool {
	r, ok := f.RelationshipWith(m)
	return ok && r == Friendly
}

// IsHostile reports a resolved Hostile relationship.
func (f *Faction) IsHostile(m Member) bool {
	r, ok := f.RelationshipWith(m)
	return ok && r == Hostile
}

// Relationships returns the explicit entries sorted by faction name.
func (f *Faction) Relationships() []CustomRelationship {
	names := make([]string, 0, len(f.relationships))
	for n := range f.relationships {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]CustomRelationship, 0, len(names))
	for _, n := range names {
		out = append(out, CustomRelationship{Faction1: f.Name, Faction2: n, Relationship: f.relationships[n]})
	}
	return out
}

// Registry holds every faction in a campaign by name.
type Registry struct {
	factions map[string]*Faction
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factions: map[string]*Faction{}}
}

// Add creates (or returns the existing) faction with name.
func (r *Registry) Add(name string) *Faction {
	if f, ok := r.factions[name]; ok {
		return f
	}
	f := &Faction{Name: name, relationships: map[string]Relationship{}}
	r.factions[name] = f
	return f
}

// Get looks a faction up by name.
func (r *Registry) Get(name string) (*Faction, bool) {
	f, ok := r.factions[name]
	return f, ok
}

// Names returns all faction names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factions))
	for n := range r.factions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Between resolves how the faction named a regards the faction named b.
// Unknown factions are Neutral toward everything but themselves.
func (r *Registry) Between(a, b string) Relationship {
	if f, ok := r.factions[a]; ok {
		return f.Relationship(b)
	}
	if a == b {
		return Friendly
	}
	return Neutral
}

// CustomRelationship is a campaign-level override between two factions.
type CustomRelationship struct {
	Faction1     string
	Faction2     string
	Relationship Relationship
}

// Apply sets the relationship on both factions, making it symmetric. Both
// factions must exist in the registry.
func (c CustomRelationship) Apply(r *Registry) error {
	f1, ok := r.Get(c.Faction1)
	if !ok {
		return fmt.Errorf("unknown faction %q", c.Faction1)
	}
	f2, ok := r.Get(c.Faction2)
	if !ok {
		return fmt.Errorf("unknown faction %q", c.Faction2)
	}
	f1.SetRelationship(f2.Name, c.Relationship)
	f2.SetRelationship(f1.Name, c.Relationship)
	return nil
}

func isNil(m Member) bool {
	if m == nil {
		return true
	}
	type nilChecker interface{ IsNil() bool }
	if n, ok := m.(nilChecker); ok {
		return n.IsNil()
	}
	return false
}
