package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
	"github.com/noah-isme/sma-adp-counseling/pkg/response"
)

type caseStore interface {
	CreateCase(ctx context.Context, req service.CreateCaseRequest) (*models.Case, error)
	ListCases(ctx context.Context, filter models.CaseFilter) []models.Case
	GetCase(ctx context.Context, id string) (*models.Case, error)
	UpdateCase(ctx context.Context, id string, req service.UpdateCaseRequest) (*models.Case, error)
	AddAssessment(ctx context.Context, caseID string, req service.AddAssessmentRequest) (*models.Case, error)
	AddIntervention(ctx context.Context, caseID string, req service.AddInterventionRequest) (*models.Case, error)
	AddNote(ctx context.Context, caseID, note string) (*models.Case, error)
}

type caseExporter interface {
	CaseReport(ctx context.Context, caseID string, format service.ReportFormat) (*service.ExportResult, error)
}

// CaseHandler exposes support case endpoints.
type CaseHandler struct {
	cases   caseStore
	exports caseExporter
}

// NewCaseHandler constructs CaseHandler. exports may be nil when exports are disabled.
func NewCaseHandler(cases caseStore, exports caseExporter) *CaseHandler {
	return &CaseHandler{cases: cases, exports: exports}
}

// List returns cases filtered by status, priority, assignedTo and studentId.
// Unknown query keys are ignored.
func (h *CaseHandler) List(c *gin.Context) {
	filter := models.CaseFilter{
		Status:     models.CaseStatus(c.Query("status")),
		Priority:   models.CasePriority(c.Query("priority")),
		AssignedTo: c.Query("assignedTo"),
		StudentID:  c.Query("studentId"),
	}
	cases := h.cases.ListCases(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, cases, map[string]interface{}{"total": len(cases)})
}

// Get returns one case.
func (h *CaseHandler) Get(c *gin.Context) {
	item, err := h.cases.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create opens a new case.
func (h *CaseHandler) Create(c *gin.Context) {
	var req service.CreateCaseRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.cases.CreateCase(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update patches a case.
func (h *CaseHandler) Update(c *gin.Context) {
	var req service.UpdateCaseRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.cases.UpdateCase(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// AddAssessment records an assessment performed by the caller.
func (h *CaseHandler) AddAssessment(c *gin.Context) {
	var req service.AddAssessmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PerformedBy == "" {
		req.PerformedBy = callerID(c)
	}
	item, err := h.cases.AddAssessment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// AddIntervention records an intervention performed by the caller.
func (h *CaseHandler) AddIntervention(c *gin.Context) {
	var req service.AddInterventionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PerformedBy == "" {
		req.PerformedBy = callerID(c)
	}
	item, err := h.cases.AddIntervention(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

type addNoteRequest struct {
	Note string `json:"note"`
}

// AddNote adds a note to the case note set.
func (h *CaseHandler) AddNote(c *gin.Context) {
	var req addNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.cases.AddNote(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Export renders the case report as csv (default) or pdf.
func (h *CaseHandler) Export(c *gin.Context) {
	if h.exports == nil {
		c.Status(http.StatusNotFound)
		return
	}
	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ReportFormatCSV))))
	result, err := h.exports.CaseReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}
