package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
)

const (
	caseEvaluationAge = 7 * 24 * time.Hour
	planStaleAge      = 14 * 24 * time.Hour
)

var attentionDeficitPatterns = []string{"tdah", "adhd", "attention deficit", "déficit de atención", "deficit de atencion"}

// suggestionNamespace scopes the name-based ids handed out for suggestions.
var suggestionNamespace = uuid.MustParse("6f1c2b8e-4a53-4c0f-9d1e-5b7a2e3c9f10")

// Suggest scans the current store contents and derives recommendations. Nothing is
// persisted; ids are derived from the referenced entities so unchanged state yields
// equal results.
func (s *DomainStore) Suggest(_ context.Context) []models.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]models.Suggestion, 0)

	var staleCases []string
	for _, c := range s.cases {
		if mentionsAttentionDeficit(c.Diagnosis) && now.Sub(c.UpdatedAt) > caseEvaluationAge {
			staleCases = append(staleCases, c.ID)
		}
	}
	if len(staleCases) > 0 {
		out = append(out, models.Suggestion{
			ID:          suggestionID(models.SuggestionEvaluation, staleCases...),
			Type:        models.SuggestionEvaluation,
			Priority:    models.SuggestionPriorityHigh,
			Title:       "Attention follow-up evaluation needed",
			Description: fmt.Sprintf("%d case(s) with an attention-deficit diagnosis have not been updated in over a week", len(staleCases)),
			Action:      "schedule_evaluation",
			Data:        models.SuggestionData{CaseIDs: staleCases},
		})
	}

	for _, p := range s.plans {
		if p.Status != models.SupportPlanActive || now.Sub(p.UpdatedAt) <= planStaleAge {
			continue
		}
		out = append(out, models.Suggestion{
			ID:          suggestionID(models.SuggestionPlanUpdate, p.ID),
			Type:        models.SuggestionPlanUpdate,
			Priority:    models.SuggestionPriorityMedium,
			Title:       "Support plan needs an update",
			Description: fmt.Sprintf("Plan %q has not been reviewed in over two weeks", p.Title),
			Action:      "review_plan",
			Data:        models.SuggestionData{PlanIDs: []string{p.ID}, StudentIDs: []string{p.StudentID}},
		})
	}

	for _, a := range s.alerts {
		if a.Acknowledged || a.Severity != models.AlertSeverityCritical {
			continue
		}
		out = append(out, models.Suggestion{
			ID:          suggestionID(models.SuggestionIntervention, a.ID),
			Type:        models.SuggestionIntervention,
			Priority:    models.SuggestionPriorityUrgent,
			Title:       "Immediate intervention required",
			Description: fmt.Sprintf("Critical %s alert is still unacknowledged", a.Type),
			Action:      "intervene_now",
			Data:        models.SuggestionData{AlertIDs: []string{a.ID}, StudentIDs: []string{a.StudentID}},
		})
	}
	return out
}

func mentionsAttentionDeficit(diagnosis string) bool {
	d := strings.ToLower(diagnosis)
	for _, pattern := range attentionDeficitPatterns {
		if strings.Contains(d, pattern) {
			return true
		}
	}
	return false
}

func suggestionID(kind models.SuggestionType, ids ...string) string {
	return uuid.NewSHA1(suggestionNamespace, []byte(string(kind)+":"+strings.Join(ids, ","))).String()
}
