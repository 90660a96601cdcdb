package question

import (
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

// Priority ranks how badly a question needs an answer.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// ParsePriority maps critical and high to their priorities and anything else
// to PriorityMedium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// CriticalQuestion is a factual lookup against the codebase, such as
// "Is there a Button component?".
type CriticalQuestion struct {
	Question     string   `json:"question" yaml:"question"`
	SearchQuery  string   `json:"search_query" yaml:"search_query"`
	ExpectedType string   `json:"expected_type" yaml:"expected_type"`
	Priority     Priority `json:"priority" yaml:"priority"`
}

// Answer holds the symbols that answered a question.
type Answer struct {
	Question   string               `json:"question" yaml:"question"`
	Symbols    []search.SymbolMatch `json:"symbols" yaml:"symbols"`
	Confidence float64              `json:"confidence" yaml:"confidence"`
}

// Verification is the model's judgement of a result set.
type Verification struct {
	IsCorrect  bool    `json:"is_correct"`
	Reason     string  `json:"reason"`
	Suggestion *string `json:"suggestion"`
}

// Outcome is the terminal state of one question.
type Outcome string

const (
	OutcomeFound          Outcome = "found"
	OutcomePartiallyFound Outcome = "partially_found"
	OutcomeNotFound       Outcome = "not_found"
)

// Confidence values attached to answers.
const (
	ConfidenceFound   = 1.0
	ConfidencePartial = 0.5
)

// Result is the outcome of running one question through the loop.
type Result struct {
	Outcome  Outcome          `json:"outcome" yaml:"outcome"`
	Answer   *Answer          `json:"answer,omitempty" yaml:"answer,omitempty"`
	Attempts int              `json:"attempts" yaml:"attempts"`
	Final    CriticalQuestion `json:"final" yaml:"final"`
}
