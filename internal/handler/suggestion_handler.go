package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/pkg/response"
)

type suggester interface {
	Suggest(ctx context.Context) []models.Suggestion
}

// SuggestionHandler serves derived recommendations.
type SuggestionHandler struct {
	store suggester
}

// NewSuggestionHandler constructs SuggestionHandler.
func NewSuggestionHandler(store suggester) *SuggestionHandler {
	return &SuggestionHandler{store: store}
}

// List recomputes suggestions from the current store contents.
func (h *SuggestionHandler) List(c *gin.Context) {
	suggestions := h.store.Suggest(c.Request.Context())
	response.JSON(c, http.StatusOK, suggestions, map[string]interface{}{"total": len(suggestions)})
}
