package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-counseling/internal/gateway"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
	"github.com/noah-isme/sma-adp-counseling/pkg/response"
)

type invoker interface {
	Invoke(ctx context.Context, endpoint string, payload gateway.Payload) (*gateway.Response, error)
}

// GatewayHandler relays dashboard calls to remote endpoints.
type GatewayHandler struct {
	gateway invoker
}

// NewGatewayHandler constructs GatewayHandler.
func NewGatewayHandler(gw invoker) *GatewayHandler {
	return &GatewayHandler{gateway: gw}
}

// Invoke forwards the JSON object body to the named endpoint. An empty body is sent
// as an empty payload. Remote failures keep their error code in the envelope.
func (h *GatewayHandler) Invoke(c *gin.Context) {
	payload := gateway.Payload{}
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload must be a JSON object"))
		return
	}

	resp, err := h.gateway.Invoke(c.Request.Context(), c.Param("endpoint"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"endpoint": resp.Endpoint, "upstream_status": resp.Status}
	if resp.Raw != "" {
		meta["raw_text"] = true
	}
	response.JSON(c, http.StatusOK, resp.Data, meta)
}
