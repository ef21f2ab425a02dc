package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
)

func TestSuggestStalePlanYieldsOnePlanUpdate(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	start := clock.now
	clock.now = start.Add(-20 * 24 * time.Hour)
	stale, err := store.CreatePlan(ctx, CreateSupportPlanRequest{StudentID: "s1", Title: "Reading plan"})
	require.NoError(t, err)
	_, err = store.CreatePlan(ctx, CreateSupportPlanRequest{StudentID: "s2", Title: "Paused plan", Status: models.SupportPlanPaused})
	require.NoError(t, err)
	clock.now = start
	_, err = store.CreatePlan(ctx, CreateSupportPlanRequest{StudentID: "s3", Title: "Fresh plan"})
	require.NoError(t, err)

	suggestions := store.Suggest(ctx)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, models.SuggestionPlanUpdate, s.Type)
	assert.Equal(t, models.SuggestionPriorityMedium, s.Priority)
	assert.Equal(t, []string{stale.ID}, s.Data.PlanIDs)
}

func TestSuggestBundlesStaleAttentionCases(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	start := clock.now
	clock.now = start.Add(-8 * 24 * time.Hour)
	first, err := store.CreateCase(ctx, CreateCaseRequest{StudentID: "s1", Title: "a", Diagnosis: "Posible TDAH combinado"})
	require.NoError(t, err)
	second, err := store.CreateCase(ctx, CreateCaseRequest{StudentID: "s2", Title: "b", Diagnosis: "suspected ADHD"})
	require.NoError(t, err)
	_, err = store.CreateCase(ctx, CreateCaseRequest{StudentID: "s3", Title: "c", Diagnosis: "dyslexia"})
	require.NoError(t, err)
	clock.now = start
	_, err = store.CreateCase(ctx, CreateCaseRequest{StudentID: "s4", Title: "d", Diagnosis: "Déficit de atención"})
	require.NoError(t, err)

	suggestions := store.Suggest(ctx)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionEvaluation, suggestions[0].Type)
	assert.Equal(t, models.SuggestionPriorityHigh, suggestions[0].Priority)
	assert.Equal(t, []string{first.ID, second.ID}, suggestions[0].Data.CaseIDs)
}

func TestSuggestUnacknowledgedCriticalAlerts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	critical, err := store.CreateAlert(ctx, CreateAlertRequest{StudentID: "s1", Type: "self-harm", Severity: models.AlertSeverityCritical})
	require.NoError(t, err)
	handled, err := store.CreateAlert(ctx, CreateAlertRequest{StudentID: "s2", Type: "self-harm", Severity: models.AlertSeverityCritical})
	require.NoError(t, err)
	_, err = store.CreateAlert(ctx, CreateAlertRequest{StudentID: "s3", Type: "stress", Severity: models.AlertSeverityHigh})
	require.NoError(t, err)
	_, err = store.AcknowledgeAlert(ctx, handled.ID, "psy-1")
	require.NoError(t, err)

	suggestions := store.Suggest(ctx)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionIntervention, suggestions[0].Type)
	assert.Equal(t, models.SuggestionPriorityUrgent, suggestions[0].Priority)
	assert.Equal(t, []string{critical.ID}, suggestions[0].Data.AlertIDs)
	assert.Equal(t, []string{"s1"}, suggestions[0].Data.StudentIDs)
}

func TestSuggestIsStableWithoutMutation(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	clock.now = clock.now.Add(-30 * 24 * time.Hour)
	_, err := store.CreateCase(ctx, CreateCaseRequest{StudentID: "s1", Title: "a", Diagnosis: "ADHD"})
	require.NoError(t, err)
	_, err = store.CreatePlan(ctx, CreateSupportPlanRequest{StudentID: "s1", Title: "p"})
	require.NoError(t, err)
	_, err = store.CreateAlert(ctx, CreateAlertRequest{StudentID: "s1", Type: "crisis", Severity: models.AlertSeverityCritical})
	require.NoError(t, err)
	clock.Advance(30 * 24 * time.Hour)

	first := store.Suggest(ctx)
	second := store.Suggest(ctx)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	first[0].Data.CaseIDs[0] = "tampered"
	assert.NotEqual(t, first[0].Data.CaseIDs, second[0].Data.CaseIDs)
}

func TestSuggestEmptyStore(t *testing.T) {
	store, _ := newTestStore(t)
	suggestions := store.Suggest(context.Background())
	assert.NotNil(t, suggestions)
	assert.Empty(t, suggestions)
}
