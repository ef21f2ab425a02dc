package service

import (
	"context"
	"time"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// CreateAlertRequest raises a new emotional alert. Alerts start active and unacknowledged.
type CreateAlertRequest struct {
	StudentID string               `json:"studentId" validate:"required"`
	Type      string               `json:"type" validate:"required"`
	Message   string               `json:"message"`
	Severity  models.AlertSeverity `json:"severity" validate:"required,oneof=low medium high critical"`
}

// UpdateAlertRequest patches an alert. Acknowledgement only changes through AcknowledgeAlert.
type UpdateAlertRequest struct {
	Message  *string               `json:"message"`
	Severity *models.AlertSeverity `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status   *models.AlertStatus   `json:"status" validate:"omitempty,oneof=active resolved false_positive"`
}

// CreateAlert stores a new alert.
func (s *DomainStore) CreateAlert(ctx context.Context, req CreateAlertRequest) (*models.EmotionalAlert, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	now := s.now()
	a := models.EmotionalAlert{
		ID:        s.newID(),
		StudentID: req.StudentID,
		Type:      req.Type,
		Message:   req.Message,
		Severity:  req.Severity,
		Status:    models.AlertStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	next := withAppended(s.alerts, a)
	if err := s.backends.Alerts.Save(ctx, models.CollectionEmotionalAlerts, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionEmotionalAlerts)
	}
	s.alerts = next
	s.enqueue(models.EventAlertCreated, a.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := a.Clone()
	return &out, nil
}

// ListAlerts returns the alerts matching every set filter field.
func (s *DomainStore) ListAlerts(_ context.Context, filter models.EmotionalAlertFilter) []models.EmotionalAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EmotionalAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.StudentID != "" && a.StudentID != filter.StudentID {
			continue
		}
		if filter.Acknowledged != nil && a.Acknowledged != *filter.Acknowledged {
			continue
		}
		out = append(out, a.Clone())
	}
	return out
}

// GetAlert returns one alert by id.
func (s *DomainStore) GetAlert(_ context.Context, id string) (*models.EmotionalAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.alerts, id)
	if idx < 0 {
		return nil, appErrors.NotFound("emotional alert", id)
	}
	out := s.alerts[idx].Clone()
	return &out, nil
}

// UpdateAlert merges req into the alert.
func (s *DomainStore) UpdateAlert(ctx context.Context, id string, req UpdateAlertRequest) (*models.EmotionalAlert, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.mutateAlert(ctx, id, models.EventAlertUpdated, func(a *models.EmotionalAlert, _ time.Time) bool {
		if req.Message != nil {
			a.Message = *req.Message
		}
		if req.Severity != nil {
			a.Severity = *req.Severity
		}
		if req.Status != nil {
			a.Status = *req.Status
		}
		return true
	})
}

// AcknowledgeAlert sets Acknowledged and AcknowledgedAt in one write. Acknowledging an
// already acknowledged alert returns it unchanged and emits no event.
func (s *DomainStore) AcknowledgeAlert(ctx context.Context, id, by string) (*models.EmotionalAlert, error) {
	return s.mutateAlert(ctx, id, models.EventAlertAcknowledged, func(a *models.EmotionalAlert, now time.Time) bool {
		if a.Acknowledged {
			return false
		}
		a.Acknowledged = true
		a.AcknowledgedAt = &now
		a.AcknowledgedBy = by
		return true
	})
}

func (s *DomainStore) mutateAlert(ctx context.Context, id string, kind models.EventKind, fn func(a *models.EmotionalAlert, now time.Time) bool) (*models.EmotionalAlert, error) {
	s.mu.Lock()
	idx := indexOf(s.alerts, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, appErrors.NotFound("emotional alert", id)
	}
	now := s.now()
	updated := s.alerts[idx].Clone()
	if !fn(&updated, now) {
		s.mu.Unlock()
		return &updated, nil
	}
	updated.UpdatedAt = now
	next := withReplaced(s.alerts, idx, updated)
	if err := s.backends.Alerts.Save(ctx, models.CollectionEmotionalAlerts, next); err != nil {
		s.mu.Unlock()
		return nil, persistError(err, models.CollectionEmotionalAlerts)
	}
	s.alerts = next
	s.enqueue(kind, updated.Clone(), now)
	s.mu.Unlock()
	s.flush()

	out := updated.Clone()
	return &out, nil
}
