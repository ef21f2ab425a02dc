package models

// SuggestionType classifies a derived recommendation.
type SuggestionType string

const (
	SuggestionEvaluation   SuggestionType = "evaluation"
	SuggestionPlanUpdate   SuggestionType = "plan_update"
	SuggestionIntervention SuggestionType = "intervention"
)

// SuggestionPriority ranks a recommendation.
type SuggestionPriority string

const (
	SuggestionPriorityMedium SuggestionPriority = "medium"
	SuggestionPriorityHigh   SuggestionPriority = "high"
	SuggestionPriorityUrgent SuggestionPriority = "urgent"
)

// Suggestion is computed from store contents on demand and never persisted.
type Suggestion struct {
	ID          string             `json:"id"`
	Type        SuggestionType     `json:"type"`
	Priority    SuggestionPriority `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Action      string             `json:"action"`
	Data        SuggestionData     `json:"data"`
}

// SuggestionData identifies the entities a suggestion refers to.
type SuggestionData struct {
	CaseIDs    []string `json:"caseIds,omitempty"`
	PlanIDs    []string `json:"planIds,omitempty"`
	AlertIDs   []string `json:"alertIds,omitempty"`
	StudentIDs []string `json:"studentIds,omitempty"`
}
