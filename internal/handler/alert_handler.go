package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
	"github.com/noah-isme/sma-adp-counseling/pkg/response"
)

type alertStore interface {
	CreateAlert(ctx context.Context, req service.CreateAlertRequest) (*models.EmotionalAlert, error)
	ListAlerts(ctx context.Context, filter models.EmotionalAlertFilter) []models.EmotionalAlert
	GetAlert(ctx context.Context, id string) (*models.EmotionalAlert, error)
	UpdateAlert(ctx context.Context, id string, req service.UpdateAlertRequest) (*models.EmotionalAlert, error)
	AcknowledgeAlert(ctx context.Context, id, by string) (*models.EmotionalAlert, error)
}

// AlertHandler exposes emotional alert endpoints.
type AlertHandler struct {
	alerts alertStore
}

// NewAlertHandler constructs AlertHandler.
func NewAlertHandler(alerts alertStore) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// List returns alerts filtered by severity, status, studentId and acknowledged.
func (h *AlertHandler) List(c *gin.Context) {
	filter := models.EmotionalAlertFilter{
		Severity:  models.AlertSeverity(c.Query("severity")),
		Status:    models.AlertStatus(c.Query("status")),
		StudentID: c.Query("studentId"),
	}
	if raw := c.Query("acknowledged"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Acknowledged = &v
		}
	}
	alerts := h.alerts.ListAlerts(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, alerts, map[string]interface{}{"total": len(alerts)})
}

// Get returns one alert.
func (h *AlertHandler) Get(c *gin.Context) {
	alert, err := h.alerts.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alert)
}

// Create raises an alert.
func (h *AlertHandler) Create(c *gin.Context) {
	var req service.CreateAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	alert, err := h.alerts.CreateAlert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alert)
}

// Update patches an alert's message, severity or status.
func (h *AlertHandler) Update(c *gin.Context) {
	var req service.UpdateAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	alert, err := h.alerts.UpdateAlert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alert)
}

// Acknowledge marks the alert as seen by the caller.
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	alert, err := h.alerts.AcknowledgeAlert(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alert)
}
