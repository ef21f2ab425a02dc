package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// CreateCaseRequest describes a new case. Status and priority default to active and medium.
type CreateCaseRequest struct {
	StudentID   string              `json:"studentId" validate:"required"`
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	Diagnosis   string              `json:"diagnosis"`
	Status      models.CaseStatus   `json:"status" validate:"omitempty,oneof=active closed pending"`
	Priority    models.CasePriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string             `json:"assignedTo"`
	Progress    int                 `json:"progress" validate:"gte=0,lte=100"`
	Notes       []string            `json:"notes"`
}

// UpdateCaseRequest patches a case. Nil fields are left untouched.
type UpdateCaseRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1"`
	Description *string              `json:"description"`
	Diagnosis   *string              `json:"diagnosis"`
	Status      *models.CaseStatus   `json:"status" validate:"omitempty,oneof=active closed pending"`
	Priority    *models.CasePriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string              `json:"assignedTo"`
	Progress    *int                 `json:"progress" validate:"omitempty,gte=0,lte=100"`

	// Unassign clears AssignedTo and wins over AssignedTo.
	Unassign bool `json:"unassign"`
}

// AddAssessmentRequest appends an assessment to a case.
type AddAssessmentRequest struct {
	Type        string   `json:"type" validate:"required"`
	Summary     string   `json:"summary" validate:"required"`
	Score       *float64 `json:"score"`
	PerformedBy string   `json:"performedBy"`
}

// AddInterventionRequest appends an intervention to a case.
type AddInterventionRequest struct {
	Type        string `json:"type" validate:"required"`
	Description string `json:"description" validate:"required"`
	Outcome     string `json:"outcome"`
	PerformedBy string `json:"performedBy"`
}

// CreateCase stores a new case and links it to its student when the student is known.
func (s *DomainStore) CreateCase(ctx context.Context, req CreateCaseRequest) (*models.Case, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	now := s.now()
	c := models.Case{
		ID:            s.newID(),
		StudentID:     req.StudentID,
		Title:         req.Title,
		Description:   req.Description,
		Diagnosis:     req.Diagnosis,
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedTo:    req.AssignedTo,
		Progress:      req.Progress,
		Assessments:   []models.Assessment{},
		Interventions: []models.Intervention{},
		Notes:         []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.Status == "" {
		c.Status = models.CaseStatusActive
	}
	if c.Priority == "" {
		c.Priority = models.CasePriorityMedium
	}
	for _, note := range req.Notes {
		c.Notes = addNote(c.Notes, note)
	}

	s.mu.Lock()
	next := withAppended(s.cases, c)
	if err := s.backends.Cases.Save(ctx, models.CollectionCases, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionCases)
	}
	s.cases = next
	s.enqueue(models.EventCaseCreated, c.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := c.Clone()
	s.linkStudent(ctx, c.StudentID, c.ID, "")
	return &out, nil
}

// ListCases returns the cases matching every set filter field.
func (s *DomainStore) ListCases(_ context.Context, filter models.CaseFilter) []models.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && c.Priority != filter.Priority {
			continue
		}
		if filter.StudentID != "" && c.StudentID != filter.StudentID {
			continue
		}
		if filter.AssignedTo != "" && (c.AssignedTo == nil || *c.AssignedTo != filter.AssignedTo) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// GetCase returns one case by id.
func (s *DomainStore) GetCase(_ context.Context, id string) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.cases, id)
	if idx < 0 {
		return nil, appErrors.NotFound("case", id)
	}
	out := s.cases[idx].Clone()
	return &out, nil
}

// UpdateCase merges req into the case. Unknown ids leave the collection unchanged.
func (s *DomainStore) UpdateCase(ctx context.Context, id string, req UpdateCaseRequest) (*models.Case, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutateCase(ctx, id, func(c *models.Case, _ time.Time) bool {
		if req.Title != nil {
			c.Title = *req.Title
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Diagnosis != nil {
			c.Diagnosis = *req.Diagnosis
		}
		if req.Status != nil {
			c.Status = *req.Status
		}
		if req.Priority != nil {
			c.Priority = *req.Priority
		}
		if req.AssignedTo != nil {
			assignee := *req.AssignedTo
			c.AssignedTo = &assignee
		}
		if req.Unassign {
			c.AssignedTo = nil
		}
		if req.Progress != nil {
			c.Progress = *req.Progress
		}
		return true
	})
}

// AddAssessment appends an assessment owned by the case.
func (s *DomainStore) AddAssessment(ctx context.Context, caseID string, req AddAssessmentRequest) (*models.Case, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutateCase(ctx, caseID, func(c *models.Case, now time.Time) bool {
		c.Assessments = append(c.Assessments, models.Assessment{
			ID:          s.newID(),
			CaseID:      c.ID,
			Type:        req.Type,
			Summary:     req.Summary,
			Score:       req.Score,
			PerformedBy: req.PerformedBy,
			PerformedAt: now,
		})
		return true
	})
}

// AddIntervention appends an intervention owned by the case.
func (s *DomainStore) AddIntervention(ctx context.Context, caseID string, req AddInterventionRequest) (*models.Case, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutateCase(ctx, caseID, func(c *models.Case, now time.Time) bool {
		c.Interventions = append(c.Interventions, models.Intervention{
			ID:          s.newID(),
			CaseID:      c.ID,
			Type:        req.Type,
			Description: req.Description,
			Outcome:     req.Outcome,
			PerformedBy: req.PerformedBy,
			PerformedAt: now,
		})
		return true
	})
}

// AddNote adds a free-text note. Notes form a set; a duplicate is a no-op.
func (s *DomainStore) AddNote(ctx context.Context, caseID, note string) (*models.Case, error) {
	if strings.TrimSpace(note) == "" {
		return nil, appErrors.MissingField("note")
	}
	return s.mutateCase(ctx, caseID, func(c *models.Case, _ time.Time) bool {
		before := len(c.Notes)
		c.Notes = addNote(c.Notes, note)
		return len(c.Notes) != before
	})
}

// mutateCase applies fn to a copy of the case, persists and publishes it.
// fn reports whether it changed anything; unchanged cases are neither saved nor published.
func (s *DomainStore) mutateCase(ctx context.Context, id string, fn func(c *models.Case, now time.Time) bool) (*models.Case, error) {
	s.mu.Lock()
	idx := indexOf(s.cases, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, appErrors.NotFound("case", id)
	}
	now := s.now()
	updated := s.cases[idx].Clone()
	if !fn(&updated, now) {
		s.mu.Unlock()
		return &updated, nil
	}
	updated.UpdatedAt = now
	next := withReplaced(s.cases, idx, updated)
	if err := s.backends.Cases.Save(ctx, models.CollectionCases, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionCases)
	}
	s.cases = next
	s.enqueue(models.EventCaseUpdated, updated.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := updated.Clone()
	return &out, nil
}

func addNote(notes []string, note string) []string {
	note = strings.TrimSpace(note)
	if note == "" {
		return notes
	}
	return appendUnique(notes, note)
}

// linkStudent records a case or plan back-reference on the student. It is a separate
// write from the owning record; failures are logged and do not undo the owner.
func (s *DomainStore) linkStudent(ctx context.Context, studentID, caseID, planID string) {
	_, err := s.mutateStudent(ctx, studentID, func(st *models.Student) bool {
		before := len(st.CaseIDs) + len(st.PlanIDs)
		if caseID != "" {
			st.CaseIDs = appendUnique(st.CaseIDs, caseID)
		}
		if planID != "" {
			st.PlanIDs = appendUnique(st.PlanIDs, planID)
		}
		return len(st.CaseIDs)+len(st.PlanIDs) != before
	})
	if err != nil && !isNotFound(err) {
		s.logger.Warn("failed to link student back-reference",
			zap.String("student_id", studentID),
			zap.String("case_id", caseID),
			zap.String("plan_id", planID),
			zap.Error(err))
	}
}
