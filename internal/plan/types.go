package plan

import "strings"

// SearchQuery is one semantic or keyword query against the codebase.
type SearchQuery struct {
	Query       string   `json:"query" yaml:"query"`
	Kind        string   `json:"kind,omitempty" yaml:"kind,omitempty"` // component, type, schema, api, style, helper, any
	TargetPaths []string `json:"target_paths,omitempty" yaml:"target_paths,omitempty"`
}

// KindOrAny returns the query kind, or "any" when unset.
func (q SearchQuery) KindOrAny() string {
	if q.Kind == "" {
		return "any"
	}
	return q.Kind
}

// WorkerPlan assigns queries to one worker.
type WorkerPlan struct {
	WorkerID    string        `json:"worker_id" yaml:"worker_id"`
	Description string        `json:"description" yaml:"description"`
	Queries     []SearchQuery `json:"queries" yaml:"queries"`
}

// SearchPlan is the planner's output: an intent label, general queries,
// per-worker plans and the derived execution order.
type SearchPlan struct {
	GlobalIntent  string        `json:"global_intent" yaml:"global_intent"`
	SearchQueries []SearchQuery `json:"search_queries" yaml:"search_queries"`
	Workers       []WorkerPlan  `json:"workers" yaml:"workers"`

	// ExecutionSchedule is computed by BuildExecutionPlan; it is a
	// permutation of the workers' ids.
	ExecutionSchedule []string `json:"execution_schedule" yaml:"execution_schedule"`
}

// WorkerIDs returns the worker ids in plan order.
func (p *SearchPlan) WorkerIDs() []string {
	ids := make([]string, 0, len(p.Workers))
	for _, w := range p.Workers {
		ids = append(ids, w.WorkerID)
	}
	return ids
}

// Worker returns the plan entry for id.
func (p *SearchPlan) Worker(id string) (WorkerPlan, bool) {
	for _, w := range p.Workers {
		if w.WorkerID == id {
			return w, true
		}
	}
	return WorkerPlan{}, false
}

// AllQueryStrings returns every non-blank query, trimmed, general queries
// first and then each worker's in plan order.
func (p *SearchPlan) AllQueryStrings() []string {
	var out []string
	for _, q := range p.SearchQueries {
		if s := strings.TrimSpace(q.Query); s != "" {
			out = append(out, s)
		}
	}
	for _, w := range p.Workers {
		for _, q := range w.Queries {
			if s := strings.TrimSpace(q.Query); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// IsEmpty reports whether the plan has no intent, no queries and no workers.
func (p *SearchPlan) IsEmpty() bool {
	return strings.TrimSpace(p.GlobalIntent) == "" &&
		len(p.SearchQueries) == 0 &&
		len(p.Workers) == 0
}

// Normalize trims queries and drops blank ones, and drops worker entries
// without an id.
func (p *SearchPlan) Normalize() {
	p.GlobalIntent = strings.TrimSpace(p.GlobalIntent)
	p.SearchQueries = normalizeQueries(p.SearchQueries)

	workers := p.Workers[:0]
	for _, w := range p.Workers {
		w.WorkerID = strings.TrimSpace(w.WorkerID)
		if w.WorkerID == "" {
			continue
		}
		w.Queries = normalizeQueries(w.Queries)
		workers = append(workers, w)
	}
	p.Workers = workers
}

func normalizeQueries(qs []SearchQuery) []SearchQuery {
	out := qs[:0]
	for _, q := range qs {
		q.Query = strings.TrimSpace(q.Query)
		if q.Query == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}
