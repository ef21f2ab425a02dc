package models

import "time"

// Collection names double as the persisted keys.
const (
	CollectionCases           = "cases"
	CollectionSupportPlans    = "support-plans"
	CollectionEmotionalAlerts = "emotional-alerts"
	CollectionStudents        = "students"
)

// EventKind tags every store mutation so subscribers can filter without string parsing.
type EventKind string

const (
	EventCaseCreated        EventKind = "case.created"
	EventCaseUpdated        EventKind = "case.updated"
	EventSupportPlanCreated EventKind = "support_plan.created"
	EventSupportPlanUpdated EventKind = "support_plan.updated"
	EventAlertCreated       EventKind = "alert.created"
	EventAlertUpdated       EventKind = "alert.updated"
	EventAlertAcknowledged  EventKind = "alert.acknowledged"
	EventStudentCreated     EventKind = "student.created"
	EventStudentUpdated     EventKind = "student.updated"
)

// Collection returns the collection an event kind belongs to.
func (k EventKind) Collection() string {
	switch k {
	case EventCaseCreated, EventCaseUpdated:
		return CollectionCases
	case EventSupportPlanCreated, EventSupportPlanUpdated:
		return CollectionSupportPlans
	case EventAlertCreated, EventAlertUpdated, EventAlertAcknowledged:
		return CollectionEmotionalAlerts
	case EventStudentCreated, EventStudentUpdated:
		return CollectionStudents
	default:
		return ""
	}
}

// Event is delivered to subscribers after a mutation is persisted.
// Entity holds a copy of the affected record.
type Event struct {
	Kind       EventKind `json:"kind"`
	EntityID   string    `json:"entityId"`
	Entity     Entity    `json:"entity"`
	OccurredAt time.Time `json:"occurredAt"`
}
