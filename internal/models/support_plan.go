package models

import "time"

// SupportPlanStatus tracks the lifecycle of an intervention plan.
type SupportPlanStatus string

const (
	SupportPlanActive    SupportPlanStatus = "active"
	SupportPlanCompleted SupportPlanStatus = "completed"
	SupportPlanPaused    SupportPlanStatus = "paused"
)

// SupportPlan is a structured intervention plan tied to a student.
type SupportPlan struct {
	ID          string            `json:"id"`
	StudentID   string            `json:"studentId"`
	CaseID      string            `json:"caseId,omitempty"`
	Title       string            `json:"title"`
	Status      SupportPlanStatus `json:"status"`
	Progress    int               `json:"progress"`
	Objectives  []Objective       `json:"objectives"`
	Strategies  []Strategy        `json:"strategies"`
	Evaluations []Evaluation      `json:"evaluations"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// EntityID implements Entity.
func (p SupportPlan) EntityID() string { return p.ID }

// Objective is a goal the plan pursues.
type Objective struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Achieved    bool   `json:"achieved"`
}

// Strategy is a concrete approach used to reach the objectives.
type Strategy struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Responsible string `json:"responsible,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
}

// Evaluation is a periodic review of the plan.
type Evaluation struct {
	ID          string    `json:"id"`
	Notes       string    `json:"notes"`
	Progress    *int      `json:"progress,omitempty"`
	EvaluatedBy string    `json:"evaluatedBy,omitempty"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// SupportPlanFilter narrows plan listings.
type SupportPlanFilter struct {
	Status    SupportPlanStatus
	StudentID string
	CaseID    string
}

// Clone returns a deep copy of the plan.
func (p SupportPlan) Clone() SupportPlan {
	out := p
	out.Objectives = cloneSlice(p.Objectives)
	out.Strategies = cloneSlice(p.Strategies)
	if p.Evaluations != nil {
		out.Evaluations = make([]Evaluation, len(p.Evaluations))
		for i, e := range p.Evaluations {
			if e.Progress != nil {
				progress := *e.Progress
				e.Progress = &progress
			}
			out.Evaluations[i] = e
		}
	}
	return out
}
