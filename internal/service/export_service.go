package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
	"github.com/noah-isme/sma-adp-counseling/pkg/export"
)

// ReportFormat selects the rendered export type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type caseReader interface {
	GetCase(ctx context.Context, id string) (*models.Case, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered report ready to be served.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders case reports.
type ExportService struct {
	cases  caseReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(cases caseReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{cases: cases, csv: csv, pdf: pdf, logger: logger}
}

// CaseReport renders the case with its assessment and intervention timeline.
func (s *ExportService) CaseReport(ctx context.Context, caseID string, format ReportFormat) (*ExportResult, error) {
	c, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	studentName := c.StudentID
	if st, err := s.cases.GetStudent(ctx, c.StudentID); err == nil {
		studentName = st.FullName
	} else if !isNotFound(err) {
		s.logger.Warn("case report student lookup failed", zap.String("case_id", c.ID), zap.Error(err))
	}

	dataset := buildCaseDataset(c, studentName)
	var (
		body        []byte
		contentType string
	)
	switch format {
	case ReportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ReportFormatPDF:
		body, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render case report")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("case_%s_%s.%s", sanitizeFilename(c.ID), time.Now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

var caseReportHeaders = []string{"date", "kind", "type", "detail", "by"}

func buildCaseDataset(c *models.Case, studentName string) export.Dataset {
	assigned := "unassigned"
	if c.AssignedTo != nil {
		assigned = *c.AssignedTo
	}
	ds := export.Dataset{
		Title: "Case report: " + c.Title,
		Summary: []export.Field{
			{Label: "Student", Value: studentName},
			{Label: "Status", Value: string(c.Status)},
			{Label: "Priority", Value: string(c.Priority)},
			{Label: "Progress", Value: strconv.Itoa(c.Progress) + "%"},
			{Label: "Assigned to", Value: assigned},
		},
		Headers: caseReportHeaders,
	}
	if c.Diagnosis != "" {
		ds.Summary = append(ds.Summary, export.Field{Label: "Diagnosis", Value: c.Diagnosis})
	}
	if len(c.Notes) > 0 {
		ds.Summary = append(ds.Summary, export.Field{Label: "Notes", Value: strings.Join(c.Notes, "; ")})
	}

	type entry struct {
		at  time.Time
		row map[string]string
	}
	entries := make([]entry, 0, len(c.Assessments)+len(c.Interventions))
	for _, a := range c.Assessments {
		detail := a.Summary
		if a.Score != nil {
			detail = fmt.Sprintf("%s (score %s)", detail, strconv.FormatFloat(*a.Score, 'f', -1, 64))
		}
		entries = append(entries, entry{at: a.PerformedAt, row: map[string]string{
			"date": a.PerformedAt.Format("2006-01-02"), "kind": "assessment", "type": a.Type, "detail": detail, "by": a.PerformedBy,
		}})
	}
	for _, iv := range c.Interventions {
		detail := iv.Description
		if iv.Outcome != "" {
			detail = detail + " -> " + iv.Outcome
		}
		entries = append(entries, entry{at: iv.PerformedAt, row: map[string]string{
			"date": iv.PerformedAt.Format("2006-01-02"), "kind": "intervention", "type": iv.Type, "detail": detail, "by": iv.PerformedBy,
		}})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	for _, e := range entries {
		ds.Rows = append(ds.Rows, e.row)
	}
	return ds
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
