package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseCloneCopiesAssessmentScores(t *testing.T) {
	score := 7.5
	assigned := "psy-1"
	original := Case{ID: "c1", AssignedTo: &assigned, Assessments: []Assessment{{ID: "a1", Score: &score}}}

	clone := original.Clone()
	*clone.Assessments[0].Score = 1
	*clone.AssignedTo = "psy-2"

	assert.Equal(t, 7.5, *original.Assessments[0].Score)
	assert.Equal(t, "psy-1", *original.AssignedTo)
	assert.Nil(t, Case{}.Clone().Assessments)
}

func TestSupportPlanCloneCopiesEvaluationProgress(t *testing.T) {
	progress := 40
	original := SupportPlan{ID: "p1", Evaluations: []Evaluation{{ID: "e1", Progress: &progress}}}

	clone := original.Clone()
	require.NotNil(t, clone.Evaluations[0].Progress)
	*clone.Evaluations[0].Progress = 90
	clone.Evaluations[0].Notes = "changed"

	assert.Equal(t, 40, *original.Evaluations[0].Progress)
	assert.Empty(t, original.Evaluations[0].Notes)
}
