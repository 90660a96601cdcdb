package plan

import (
	"slices"

	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

// DependencyLookup returns the declared dependencies of a worker key and
// whether the key is known.
type DependencyLookup func(key string) (deps []string, ok bool)

// BuildExecutionPlan orders ids so that every id follows the dependencies
// already scheduled from the same batch.
//
// Each pass walks the remaining ids in order and schedules an id when it is
// unknown to lookup or when all of its dependencies have been scheduled,
// including ids scheduled earlier in the same pass. When a pass schedules
// nothing, the remainder is appended as is. Dependencies absent from ids
// therefore block an id until that final append. The result is always a
// permutation of ids.
func BuildExecutionPlan(ids []string, lookup DependencyLookup) []string {
	order := make([]string, 0, len(ids))
	remaining := append([]string(nil), ids...)
	processed := make(map[string]bool, len(ids))

	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]

		for _, id := range remaining {
			deps, known := lookup(id)
			if !known || allProcessed(deps, processed) {
				order = append(order, id)
				processed[id] = true
				progressed = true
				continue
			}
			next = append(next, id)
		}
		remaining = next

		if !progressed {
			order = append(order, remaining...)
			break
		}
	}

	return order
}

func allProcessed(deps []string, processed map[string]bool) bool {
	for _, d := range deps {
		if !processed[d] {
			return false
		}
	}
	return true
}

// RegistryLookup resolves dependencies from a worker registry.
func RegistryLookup(registry *worker.Registry) DependencyLookup {
	return func(key string) ([]string, bool) {
		s, ok := registry.Get(key)
		if !ok {
			return nil, false
		}
		return s.Dependencies, true
	}
}

// Waves splits a schedule into consecutive groups that may run
// concurrently. A new wave starts whenever the next id depends on an id
// already in the current wave. Order is preserved and every id lands in
// exactly one wave.
func Waves(schedule []string, lookup DependencyLookup) [][]string {
	var waves [][]string
	var current []string
	inWave := make(map[string]bool)

	for _, id := range schedule {
		deps, _ := lookup(id)
		if slices.ContainsFunc(deps, func(d string) bool { return inWave[d] }) {
			waves = append(waves, current)
			current = nil
			clear(inWave)
		}
		current = append(current, id)
		inWave[id] = true
	}
	if len(current) > 0 {
		waves = append(waves, current)
	}
	return waves
}
