package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

func TestExportServiceCaseReportCSV(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	st, err := store.CreateStudent(ctx, CreateStudentRequest{FullName: "Ana Pérez", Grade: "7"})
	require.NoError(t, err)
	c, err := store.CreateCase(ctx, CreateCaseRequest{StudentID: st.ID, Title: "Attention", Diagnosis: "TDAH"})
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)
	_, err = store.AddIntervention(ctx, c.ID, AddInterventionRequest{Type: "meeting", Description: "family meeting", Outcome: "agreed routine"})
	require.NoError(t, err)
	clock.Advance(-24 * time.Hour)
	score := 4.0
	_, err = store.AddAssessment(ctx, c.ID, AddAssessmentRequest{Type: "screening", Summary: "inattentive", Score: &score})
	require.NoError(t, err)

	svc := NewExportService(store, zap.NewNop(), nil, nil)
	result, err := svc.CaseReport(ctx, c.ID, ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "case_"+c.ID+"_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	body := string(result.Body)
	assert.Contains(t, body, "Student,Ana Pérez")
	assert.Contains(t, body, "Diagnosis,TDAH")
	assessmentAt := strings.Index(body, "screening")
	interventionAt := strings.Index(body, "family meeting -> agreed routine")
	require.True(t, assessmentAt > 0 && interventionAt > 0)
	assert.Less(t, assessmentAt, interventionAt)
}

func TestExportServiceCaseReportPDF(t *testing.T) {
	store, _ := newTestStore(t)
	c, err := store.CreateCase(context.Background(), CreateCaseRequest{StudentID: "unregistered", Title: "Anxiety"})
	require.NoError(t, err)

	svc := NewExportService(store, zap.NewNop(), nil, nil)
	result, err := svc.CaseReport(context.Background(), c.ID, ReportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF-")))
}

func TestExportServiceErrors(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewExportService(store, zap.NewNop(), nil, nil)

	_, err := svc.CaseReport(context.Background(), "missing", ReportFormatCSV)
	requireAppCode(t, err, appErrors.ErrNotFound.Code)

	c, err := store.CreateCase(context.Background(), CreateCaseRequest{StudentID: "s", Title: "t"})
	require.NoError(t, err)
	_, err = svc.CaseReport(context.Background(), c.ID, ReportFormat("xlsx"))
	requireAppCode(t, err, appErrors.ErrUnsupportedFormat.Code)
}
