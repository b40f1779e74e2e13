package importer

import (
	"fmt"
	"sort"
)

// Profile understands one export format. Implementations are pure: they
// never touch the ledger.
type Profile interface {
	// ID is the registry key, e.g. "standard".
	ID() string
	Description() string

	// InferMapping maps CSV headers to fields. It fails when a required
	// field cannot be found.
	InferMapping(headers []string) (Mapping, error)

	// Normalize converts one mapped record. A zero Item means skip.
	Normalize(row MappedRow, defaultCurrency string) (Item, error)
}

// Finalizer is implemented by profiles that need a pass over the whole
// batch after every record was normalized.
type Finalizer interface {
	Finalize(items []Item, defaultCurrency string) ([]Row, error)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the available profiles by ID.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds the built-in profiles using the given header variants.
func NewRegistry(variants Variants) *Registry {
	if variants == nil {
		variants = DefaultVariants()
	}
	r := &Registry{profiles: make(map[string]Profile)}
	r.Register(NewStandardProfile(variants))
	r.Register(NewLegsProfile(variants, false))
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) {
	r.profiles[p.ID()] = p
}

// Lookup returns the profile registered under id.
func (r *Registry) Lookup(id string) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// Profiles returns every registered profile sorted by ID.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

var defaultRegistry = NewRegistry(nil)

// Lookup finds a built-in profile with the default header variants.
func Lookup(id string) (Profile, error) {
	return defaultRegistry.Lookup(id)
}

// Profiles lists the built-in profiles with the default header variants.
func Profiles() []Profile {
	return defaultRegistry.Profiles()
}
