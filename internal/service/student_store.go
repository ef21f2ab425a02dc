package service

import (
	"context"
	"errors"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// CreateStudentRequest registers a learner profile.
type CreateStudentRequest struct {
	FullName       string                `json:"fullName" validate:"required"`
	Grade          string                `json:"grade" validate:"required"`
	Section        string                `json:"section"`
	Status         models.StudentStatus  `json:"status" validate:"omitempty,oneof=active inactive"`
	GuardianID     string                `json:"guardianId"`
	EmotionalState models.EmotionalState `json:"emotionalState"`
}

// UpdateStudentRequest patches a student. Back-references are managed by the store.
type UpdateStudentRequest struct {
	FullName       *string                `json:"fullName" validate:"omitempty,min=1"`
	Grade          *string                `json:"grade" validate:"omitempty,min=1"`
	Section        *string                `json:"section"`
	Status         *models.StudentStatus  `json:"status" validate:"omitempty,oneof=active inactive"`
	GuardianID     *string                `json:"guardianId"`
	EmotionalState *models.EmotionalState `json:"emotionalState"`
}

// CreateStudent stores a new student.
func (s *DomainStore) CreateStudent(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	now := s.now()
	st := models.Student{
		ID:             s.newID(),
		FullName:       req.FullName,
		Grade:          req.Grade,
		Section:        req.Section,
		Status:         req.Status,
		GuardianID:     req.GuardianID,
		EmotionalState: req.EmotionalState,
		CaseIDs:        []string{},
		PlanIDs:        []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if st.Status == "" {
		st.Status = models.StudentStatusActive
	}

	s.mu.Lock()
	next := withAppended(s.students, st)
	if err := s.backends.Students.Save(ctx, models.CollectionStudents, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionStudents)
	}
	s.students = next
	s.enqueue(models.EventStudentCreated, st.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := st.Clone()
	return &out, nil
}

// ListStudents returns the students matching every set filter field.
func (s *DomainStore) ListStudents(_ context.Context, filter models.StudentFilter) []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		if filter.Grade != "" && st.Grade != filter.Grade {
			continue
		}
		if filter.Section != "" && st.Section != filter.Section {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		if filter.GuardianID != "" && st.GuardianID != filter.GuardianID {
			continue
		}
		out = append(out, st.Clone())
	}
	return out
}

// GetStudent returns one student by id.
func (s *DomainStore) GetStudent(_ context.Context, id string) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.students, id)
	if idx < 0 {
		return nil, appErrors.NotFound("student", id)
	}
	out := s.students[idx].Clone()
	return &out, nil
}

// UpdateStudent merges req into the student.
func (s *DomainStore) UpdateStudent(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutateStudent(ctx, id, func(st *models.Student) bool {
		if req.FullName != nil {
			st.FullName = *req.FullName
		}
		if req.Grade != nil {
			st.Grade = *req.Grade
		}
		if req.Section != nil {
			st.Section = *req.Section
		}
		if req.Status != nil {
			st.Status = *req.Status
		}
		if req.GuardianID != nil {
			st.GuardianID = *req.GuardianID
		}
		if req.EmotionalState != nil {
			st.EmotionalState = *req.EmotionalState
		}
		return true
	})
}

func (s *DomainStore) mutateStudent(ctx context.Context, id string, fn func(st *models.Student) bool) (*models.Student, error) {
	s.mu.Lock()
	idx := indexOf(s.students, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, appErrors.NotFound("student", id)
	}
	updated := s.students[idx].Clone()
	if !fn(&updated) {
		s.mu.Unlock()
		return &updated, nil
	}
	now := s.now()
	updated.UpdatedAt = now
	next := withReplaced(s.students, idx, updated)
	if err := s.backends.Students.Save(ctx, models.CollectionStudents, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionStudents)
	}
	s.students = next
	s.enqueue(models.EventStudentUpdated, updated.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := updated.Clone()
	return &out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, appErrors.ErrNotFound)
}
