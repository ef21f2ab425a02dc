package models

import "time"

// AlertSeverity grades how serious an emotional risk signal is.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertStatus tracks the resolution of an alert.
type AlertStatus string

const (
	AlertStatusActive        AlertStatus = "active"
	AlertStatusResolved      AlertStatus = "resolved"
	AlertStatusFalsePositive AlertStatus = "false_positive"
)

// EmotionalAlert is a flagged risk signal. AcknowledgedAt is set iff Acknowledged is true.
type EmotionalAlert struct {
	ID             string        `json:"id"`
	StudentID      string        `json:"studentId"`
	Type           string        `json:"type"`
	Message        string        `json:"message"`
	Severity       AlertSeverity `json:"severity"`
	Status         AlertStatus   `json:"status"`
	Acknowledged   bool          `json:"acknowledged"`
	AcknowledgedAt *time.Time    `json:"acknowledgedAt"`
	AcknowledgedBy string        `json:"acknowledgedBy,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// EntityID implements Entity.
func (a EmotionalAlert) EntityID() string { return a.ID }

// EmotionalAlertFilter narrows alert listings.
type EmotionalAlertFilter struct {
	Severity     AlertSeverity
	Status       AlertStatus
	StudentID    string
	Acknowledged *bool
}

// Clone returns a deep copy of the alert.
func (a EmotionalAlert) Clone() EmotionalAlert {
	out := a
	if a.AcknowledgedAt != nil {
		ts := *a.AcknowledgedAt
		out.AcknowledgedAt = &ts
	}
	return out
}
