package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/project"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/reply"
)

type generatedQuestion struct {
	Question     string `json:"question"`
	SearchQuery  string `json:"search_query"`
	ExpectedType string `json:"expected_type"`
	Priority     string `json:"priority"`
}

// Generate asks the model for critical questions about task. Entries
// without a question or search query are dropped. An undecodable reply is
// returned as a DECODE-001 error.
func Generate(ctx context.Context, llm provider.Provider, task, language, framework string) ([]CriticalQuestion, error) {
	if language == "" {
		language = "unknown"
	}
	var frameworkCtx string
	if framework != "" {
		frameworkCtx = fmt.Sprintf(" using %s framework", framework)
	}

	resp, err := llm.Generate(ctx, fmt.Sprintf(generatePrompt, language, frameworkCtx, task))
	if err != nil {
		return nil, err
	}

	out := reply.Decode[[]generatedQuestion]("questions", resp.Content)
	raw, ok := out.Decoded()
	if !ok {
		return nil, out.Err()
	}

	questions := make([]CriticalQuestion, 0, len(raw))
	for _, g := range raw {
		q := CriticalQuestion{
			Question:     strings.TrimSpace(g.Question),
			SearchQuery:  strings.TrimSpace(g.SearchQuery),
			ExpectedType: strings.TrimSpace(g.ExpectedType),
			Priority:     ParsePriority(g.Priority),
		}
		if q.Question == "" || q.SearchQuery == "" {
			continue
		}
		if q.ExpectedType == "" {
			q.ExpectedType = "unknown"
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// FromTemplates turns stack templates into medium-priority questions, for
// runs where Generate fails.
func FromTemplates(templates []project.QuestionTemplate) []CriticalQuestion {
	questions := make([]CriticalQuestion, 0, len(templates))
	for _, t := range templates {
		if t.Question == "" || t.SearchQuery == "" {
			continue
		}
		kind := t.ExpectedType
		if kind == "" {
			kind = "unknown"
		}
		questions = append(questions, CriticalQuestion{
			Question:     t.Question,
			SearchQuery:  t.SearchQuery,
			ExpectedType: kind,
			Priority:     PriorityMedium,
		})
	}
	return questions
}
