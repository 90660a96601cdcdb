package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the registered workers",
	Long: `List the workers in the active catalog with their category, priority and
dependencies.

The YAML output is a valid catalog file:
  miow workers -f yaml > .miow/workers.yaml`,
	Args: cobra.NoArgs,
	RunE: runWorkers,
}

var (
	workersCategory string
	workersPriority string
	workersTaskType string
)

func init() {
	workersCmd.Flags().StringVar(&workersCategory, "category", "", "only workers in this category")
	workersCmd.Flags().StringVar(&workersPriority, "priority", "", "only workers with this priority")
	workersCmd.Flags().StringVar(&workersTaskType, "task-type", "", "only workers recommended for this task type, in order")

	rootCmd.AddCommand(workersCmd)
}

// workersView mirrors worker.CatalogFile so YAML output can be loaded back.
type workersView struct {
	Workers         []worker.Spec       `json:"workers" yaml:"workers"`
	Recommendations map[string][]string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

func (v workersView) Sections() []ux.Section {
	s := ux.Section{Title: fmt.Sprintf("Workers (%d)", len(v.Workers))}
	for _, w := range v.Workers {
		value := fmt.Sprintf("[%s/%s] %s", w.Category, w.Priority, w.Description)
		if len(w.Dependencies) > 0 {
			value += " (after " + strings.Join(w.Dependencies, ", ") + ")"
		}
		s.Rows = append(s.Rows, ux.Row{Key: w.Key, Value: value})
	}
	sections := []ux.Section{s}

	if len(v.Recommendations) > 0 {
		r := ux.Section{Title: "Recommendations"}
		for _, t := range sortedKeys(v.Recommendations) {
			r.Rows = append(r.Rows, ux.Row{Key: t, Value: strings.Join(v.Recommendations[t], ", ")})
		}
		sections = append(sections, r)
	}
	return sections
}

func runWorkers(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	reg, err := a.registry()
	if err != nil {
		return err
	}
	return output(cmd, selectWorkers(reg, workersCategory, workersPriority, workersTaskType))
}

// selectWorkers applies the listing filters. The recommendation table is
// included only for an unfiltered listing.
func selectWorkers(reg *worker.Registry, category, priority, taskType string) workersView {
	var specs []worker.Spec
	switch {
	case taskType != "":
		for _, k := range reg.RecommendedFor(taskType) {
			if s, ok := reg.Get(k); ok {
				specs = append(specs, s)
			}
		}
	case category != "":
		specs = reg.ByCategory(worker.Category(category))
	default:
		specs = reg.All()
	}

	if priority != "" {
		filtered := specs[:0]
		for _, s := range specs {
			if s.Priority == worker.Priority(priority) {
				filtered = append(filtered, s)
			}
		}
		specs = filtered
	}
	if category != "" && taskType != "" {
		filtered := specs[:0]
		for _, s := range specs {
			if s.Category == worker.Category(category) {
				filtered = append(filtered, s)
			}
		}
		specs = filtered
	}

	view := workersView{Workers: specs}
	if category == "" && priority == "" && taskType == "" {
		view.Recommendations = make(map[string][]string)
		for _, t := range reg.TaskTypes() {
			view.Recommendations[t] = reg.RecommendedFor(t)
		}
		view.Recommendations[worker.DefaultRecommendationKey] = reg.RecommendedFor(worker.DefaultRecommendationKey)
	}
	return view
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
