package models

import "time"

// CaseStatus tracks the lifecycle of a support case.
type CaseStatus string

const (
	CaseStatusActive  CaseStatus = "active"
	CaseStatusClosed  CaseStatus = "closed"
	CaseStatusPending CaseStatus = "pending"
)

// CasePriority ranks how urgently a case needs attention.
type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

// Case is a tracked student support situation.
type Case struct {
	ID            string         `json:"id"`
	StudentID     string         `json:"studentId"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Diagnosis     string         `json:"diagnosis,omitempty"`
	Status        CaseStatus     `json:"status"`
	Priority      CasePriority   `json:"priority"`
	AssignedTo    *string        `json:"assignedTo"`
	Progress      int            `json:"progress"`
	Assessments   []Assessment   `json:"assessments"`
	Interventions []Intervention `json:"interventions"`
	Notes         []string       `json:"notes"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// EntityID implements Entity.
func (c Case) EntityID() string { return c.ID }

// Assessment records an evaluation performed within a case.
type Assessment struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Type        string    `json:"type"`
	Summary     string    `json:"summary"`
	Score       *float64  `json:"score,omitempty"`
	PerformedBy string    `json:"performedBy,omitempty"`
	PerformedAt time.Time `json:"performedAt"`
}

// Intervention records an action taken within a case.
type Intervention struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Outcome     string    `json:"outcome,omitempty"`
	PerformedBy string    `json:"performedBy,omitempty"`
	PerformedAt time.Time `json:"performedAt"`
}

// CaseFilter narrows case listings. Empty fields are ignored; set fields are ANDed.
type CaseFilter struct {
	Status     CaseStatus
	Priority   CasePriority
	AssignedTo string
	StudentID  string
}

// Clone returns a deep copy so callers never share slices with the store.
func (c Case) Clone() Case {
	out := c
	if c.AssignedTo != nil {
		v := *c.AssignedTo
		out.AssignedTo = &v
	}
	if c.Assessments != nil {
		out.Assessments = make([]Assessment, len(c.Assessments))
		for i, a := range c.Assessments {
			if a.Score != nil {
				score := *a.Score
				a.Score = &score
			}
			out.Assessments[i] = a
		}
	}
	out.Interventions = cloneSlice(c.Interventions)
	out.Notes = cloneSlice(c.Notes)
	return out
}
