package service

import (
	"context"
	"time"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// CreateSupportPlanRequest describes a new plan. Status defaults to active.
type CreateSupportPlanRequest struct {
	StudentID  string                   `json:"studentId" validate:"required"`
	CaseID     string                   `json:"caseId"`
	Title      string                   `json:"title" validate:"required"`
	Status     models.SupportPlanStatus `json:"status" validate:"omitempty,oneof=active completed paused"`
	Progress   int                      `json:"progress" validate:"gte=0,lte=100"`
	Objectives []models.Objective       `json:"objectives" validate:"dive"`
	Strategies []models.Strategy        `json:"strategies" validate:"dive"`
}

// UpdateSupportPlanRequest patches a plan. A nil slice leaves the current one in place.
type UpdateSupportPlanRequest struct {
	Title      *string                   `json:"title" validate:"omitempty,min=1"`
	Status     *models.SupportPlanStatus `json:"status" validate:"omitempty,oneof=active completed paused"`
	Progress   *int                      `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Objectives []models.Objective        `json:"objectives" validate:"omitempty,dive"`
	Strategies []models.Strategy         `json:"strategies" validate:"omitempty,dive"`
}

// AddEvaluationRequest records a plan review. A supplied progress becomes the plan progress.
type AddEvaluationRequest struct {
	Notes       string `json:"notes" validate:"required"`
	Progress    *int   `json:"progress" validate:"omitempty,gte=0,lte=100"`
	EvaluatedBy string `json:"evaluatedBy"`
}

// CreatePlan stores a new support plan and links it to its student when the student is known.
func (s *DomainStore) CreatePlan(ctx context.Context, req CreateSupportPlanRequest) (*models.SupportPlan, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	now := s.now()
	p := models.SupportPlan{
		ID:          s.newID(),
		StudentID:   req.StudentID,
		CaseID:      req.CaseID,
		Title:       req.Title,
		Status:      req.Status,
		Progress:    req.Progress,
		Objectives:  s.objectivesWithIDs(req.Objectives),
		Strategies:  s.strategiesWithIDs(req.Strategies),
		Evaluations: []models.Evaluation{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = models.SupportPlanActive
	}

	s.mu.Lock()
	next := withAppended(s.plans, p)
	if err := s.backends.Plans.Save(ctx, models.CollectionSupportPlans, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionSupportPlans)
	}
	s.plans = next
	s.enqueue(models.EventSupportPlanCreated, p.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := p.Clone()
	s.linkStudent(ctx, p.StudentID, "", p.ID)
	return &out, nil
}

// ListPlans returns the plans matching every set filter field.
func (s *DomainStore) ListPlans(_ context.Context, filter models.SupportPlanFilter) []models.SupportPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SupportPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.CaseID != "" && p.CaseID != filter.CaseID {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// GetPlan returns one plan by id.
func (s *DomainStore) GetPlan(_ context.Context, id string) (*models.SupportPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.plans, id)
	if idx < 0 {
		return nil, appErrors.NotFound("support plan", id)
	}
	out := s.plans[idx].Clone()
	return &out, nil
}

// UpdatePlan merges req into the plan.
func (s *DomainStore) UpdatePlan(ctx context.Context, id string, req UpdateSupportPlanRequest) (*models.SupportPlan, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutatePlan(ctx, id, func(p *models.SupportPlan, _ time.Time) {
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		if req.Progress != nil {
			p.Progress = *req.Progress
		}
		if req.Objectives != nil {
			p.Objectives = s.objectivesWithIDs(req.Objectives)
		}
		if req.Strategies != nil {
			p.Strategies = s.strategiesWithIDs(req.Strategies)
		}
	})
}

// AddEvaluation appends a review to the plan.
func (s *DomainStore) AddEvaluation(ctx context.Context, planID string, req AddEvaluationRequest) (*models.SupportPlan, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutatePlan(ctx, planID, func(p *models.SupportPlan, now time.Time) {
		p.Evaluations = append(p.Evaluations, models.Evaluation{
			ID:          s.newID(),
			Notes:       req.Notes,
			Progress:    req.Progress,
			EvaluatedBy: req.EvaluatedBy,
			EvaluatedAt: now,
		})
		if req.Progress != nil {
			p.Progress = *req.Progress
		}
	})
}

func (s *DomainStore) mutatePlan(ctx context.Context, id string, fn func(p *models.SupportPlan, now time.Time)) (*models.SupportPlan, error) {
	s.mu.Lock()
	idx := indexOf(s.plans, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, appErrors.NotFound("support plan", id)
	}
	now := s.now()
	updated := s.plans[idx].Clone()
	fn(&updated, now)
	updated.UpdatedAt = now
	next := withReplaced(s.plans, idx, updated)
	if err := s.backends.Plans.Save(ctx, models.CollectionSupportPlans, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionSupportPlans)
	}
	s.plans = next
	s.enqueue(models.EventSupportPlanUpdated, updated.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := updated.Clone()
	return &out, nil
}

func (s *DomainStore) objectivesWithIDs(in []models.Objective) []models.Objective {
	out := make([]models.Objective, len(in))
	for i, o := range in {
		if o.ID == "" {
			o.ID = s.newID()
		}
		out[i] = o
	}
	return out
}

func (s *DomainStore) strategiesWithIDs(in []models.Strategy) []models.Strategy {
	out := make([]models.Strategy, len(in))
	for i, st := range in {
		if st.ID == "" {
			st.ID = s.newID()
		}
		out[i] = st
	}
	return out
}
