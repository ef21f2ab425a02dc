package models

import "time"

// StudentStatus marks whether a learner is currently followed.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// EmotionalState is the latest emotional snapshot for a student. Levels are 0..10.
type EmotionalState struct {
	CurrentMood        string `json:"currentMood"`
	StressLevel        int    `json:"stressLevel" validate:"gte=0,lte=10"`
	AnxietyLevel       int    `json:"anxietyLevel" validate:"gte=0,lte=10"`
	SocialEngagement   int    `json:"socialEngagement" validate:"gte=0,lte=10"`
	AcademicMotivation int    `json:"academicMotivation" validate:"gte=0,lte=10"`
}

// Student is a registered learner profile. CaseIDs and PlanIDs are denormalized
// back-references; the case and plan collections own those records.
type Student struct {
	ID             string         `json:"id"`
	FullName       string         `json:"fullName"`
	Grade          string         `json:"grade"`
	Section        string         `json:"section,omitempty"`
	Status         StudentStatus  `json:"status"`
	GuardianID     string         `json:"guardianId,omitempty"`
	EmotionalState EmotionalState `json:"emotionalState"`
	CaseIDs        []string       `json:"caseIds"`
	PlanIDs        []string       `json:"planIds"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// EntityID implements Entity.
func (s Student) EntityID() string { return s.ID }

// StudentFilter narrows student listings.
type StudentFilter struct {
	Grade      string
	Section    string
	Status     StudentStatus
	GuardianID string
}

// Clone returns a deep copy of the student.
func (s Student) Clone() Student {
	out := s
	out.CaseIDs = cloneSlice(s.CaseIDs)
	out.PlanIDs = cloneSlice(s.PlanIDs)
	return out
}
