package worker

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// DefaultRecommendationKey names the recommendation list used for task
// types without their own entry.
const DefaultRecommendationKey = "default"

// Registry is an immutable catalog of worker specs. Construct it once and
// pass it to the components that need it.
type Registry struct {
	specs           map[string]Spec
	keys            []string
	recommendations map[string][]string
}

// NewRegistry builds a registry from specs and a task-type recommendation
// table. Keys must be non-empty and unique.
func NewRegistry(specs []Spec, recommendations map[string][]string) (*Registry, error) {
	r := &Registry{
		specs:           make(map[string]Spec, len(specs)),
		recommendations: make(map[string][]string, len(recommendations)),
	}
	for _, s := range specs {
		if s.Key == "" {
			return nil, fmt.Errorf("worker spec with empty key")
		}
		if _, dup := r.specs[s.Key]; dup {
			return nil, fmt.Errorf("duplicate worker key: %s", s.Key)
		}
		r.specs[s.Key] = s.clone()
		r.keys = append(r.keys, s.Key)
	}
	sort.Strings(r.keys)

	for taskType, keys := range recommendations {
		r.recommendations[taskType] = slices.Clone(keys)
	}
	return r, nil
}

// Default returns a registry over the built-in catalog.
func Default() *Registry {
	r, err := NewRegistry(DefaultCatalog(), DefaultRecommendations())
	if err != nil {
		panic(fmt.Sprintf("built-in worker catalog: %v", err))
	}
	return r
}

// Get returns the spec for key.
func (r *Registry) Get(key string) (Spec, bool) {
	s, ok := r.specs[key]
	if !ok {
		return Spec{}, false
	}
	return s.clone(), true
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.specs[key]
	return ok
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	return len(r.specs)
}

// Keys returns every registered key in sorted order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

// All returns every spec sorted by key.
func (r *Registry) All() []Spec {
	out := make([]Spec, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.specs[k].clone())
	}
	return out
}

// ByCategory returns the specs in category c, sorted by key.
func (r *Registry) ByCategory(c Category) []Spec {
	return r.filter(func(s Spec) bool { return s.Category == c })
}

// ByPriority returns the specs with priority p, sorted by key.
func (r *Registry) ByPriority(p Priority) []Spec {
	return r.filter(func(s Spec) bool { return s.Priority == p })
}

func (r *Registry) filter(keep func(Spec) bool) []Spec {
	var out []Spec
	for _, k := range r.keys {
		if s := r.specs[k]; keep(s) {
			out = append(out, s.clone())
		}
	}
	return out
}

// RecommendedFor returns the ordered worker keys usually needed for
// taskType. Unknown task types get the default list.
func (r *Registry) RecommendedFor(taskType string) []string {
	if keys, ok := r.recommendations[taskType]; ok {
		return slices.Clone(keys)
	}
	return slices.Clone(r.recommendations[DefaultRecommendationKey])
}

// TaskTypes returns the task types with their own recommendation list.
func (r *Registry) TaskTypes() []string {
	types := slices.Sorted(maps.Keys(r.recommendations))
	return slices.DeleteFunc(types, func(t string) bool { return t == DefaultRecommendationKey })
}
