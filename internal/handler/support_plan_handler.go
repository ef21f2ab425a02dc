package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
	"github.com/noah-isme/sma-adp-counseling/pkg/response"
)

type supportPlanStore interface {
	CreatePlan(ctx context.Context, req service.CreateSupportPlanRequest) (*models.SupportPlan, error)
	ListPlans(ctx context.Context, filter models.SupportPlanFilter) []models.SupportPlan
	GetPlan(ctx context.Context, id string) (*models.SupportPlan, error)
	UpdatePlan(ctx context.Context, id string, req service.UpdateSupportPlanRequest) (*models.SupportPlan, error)
	AddEvaluation(ctx context.Context, planID string, req service.AddEvaluationRequest) (*models.SupportPlan, error)
}

// SupportPlanHandler exposes support plan endpoints.
type SupportPlanHandler struct {
	plans supportPlanStore
}

// NewSupportPlanHandler constructs SupportPlanHandler.
func NewSupportPlanHandler(plans supportPlanStore) *SupportPlanHandler {
	return &SupportPlanHandler{plans: plans}
}

// List returns plans filtered by status, studentId and caseId.
func (h *SupportPlanHandler) List(c *gin.Context) {
	filter := models.SupportPlanFilter{
		Status:    models.SupportPlanStatus(c.Query("status")),
		StudentID: c.Query("studentId"),
		CaseID:    c.Query("caseId"),
	}
	plans := h.plans.ListPlans(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, plans, map[string]interface{}{"total": len(plans)})
}

// Get returns one plan.
func (h *SupportPlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Create stores a new plan.
func (h *SupportPlanHandler) Create(c *gin.Context) {
	var req service.CreateSupportPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Update patches a plan.
func (h *SupportPlanHandler) Update(c *gin.Context) {
	var req service.UpdateSupportPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.UpdatePlan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// AddEvaluation appends a review by the caller.
func (h *SupportPlanHandler) AddEvaluation(c *gin.Context) {
	var req service.AddEvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.EvaluatedBy == "" {
		req.EvaluatedBy = callerID(c)
	}
	plan, err := h.plans.AddEvaluation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}
