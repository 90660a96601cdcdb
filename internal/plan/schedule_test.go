package plan

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(graph map[string][]string) DependencyLookup {
	return func(key string) ([]string, bool) {
		deps, ok := graph[key]
		return deps, ok
	}
}

func TestBuildExecutionPlanTopological(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"A", "B"},
	})

	order := BuildExecutionPlan([]string{"C", "B", "A"}, lookup)

	assert.ElementsMatch(t, []string{"A", "B", "C"}, order)
	assert.Less(t, slices.Index(order, "A"), slices.Index(order, "B"))
	assert.Less(t, slices.Index(order, "B"), slices.Index(order, "C"))
}

func TestBuildExecutionPlanUsesEarlierIdsInSamePass(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
	})

	assert.Equal(t, []string{"A", "B", "C"}, BuildExecutionPlan([]string{"A", "B", "C"}, lookup))
}

func TestBuildExecutionPlanCycle(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})

	order := BuildExecutionPlan([]string{"A", "B"}, lookup)
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestBuildExecutionPlanCycleAfterProgress(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"root": {},
		"X":    {"Y", "root"},
		"Y":    {"X"},
	})

	order := BuildExecutionPlan([]string{"X", "root", "Y"}, lookup)
	assert.Equal(t, []string{"root", "X", "Y"}, order)
}

func TestBuildExecutionPlanUnknownWorker(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"A": {},
		"B": {"A"},
	})

	for _, ids := range [][]string{
		{"ghost", "B", "A"},
		{"B", "ghost", "A"},
		{"B", "A", "ghost"},
	} {
		t.Run(fmt.Sprint(ids), func(t *testing.T) {
			order := BuildExecutionPlan(ids, lookup)
			assert.ElementsMatch(t, ids, order)
			count := 0
			for _, id := range order {
				if id == "ghost" {
					count++
				}
			}
			assert.Equal(t, 1, count)
		})
	}
}

func TestBuildExecutionPlanMissingDependencyScheduledLast(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"frontend_scanner": {"stack_detector"},
		"stack_detector":   {},
		"config_scanner":   {},
	})

	order := BuildExecutionPlan([]string{"frontend_scanner", "config_scanner"}, lookup)
	assert.Equal(t, []string{"config_scanner", "frontend_scanner"}, order)
}

func TestBuildExecutionPlanDoesNotMutateInput(t *testing.T) {
	ids := []string{"B", "A"}
	lookup := lookupFrom(map[string][]string{"A": {}, "B": {"A"}})

	_ = BuildExecutionPlan(ids, lookup)
	assert.Equal(t, []string{"B", "A"}, ids)
	assert.Empty(t, BuildExecutionPlan(nil, lookup))
}

func TestWaves(t *testing.T) {
	lookup := lookupFrom(map[string][]string{
		"A": {},
		"B": {},
		"C": {"A"},
		"D": {"C"},
		"E": {"A"},
	})

	waves := Waves([]string{"A", "B", "C", "E", "D", "ghost"}, lookup)

	assert.Equal(t, [][]string{{"A", "B"}, {"C", "E"}, {"D", "ghost"}}, waves)
}

func TestWavesEmpty(t *testing.T) {
	assert.Empty(t, Waves(nil, lookupFrom(nil)))
}
