package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/middleware"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

type clientService interface {
	List(ctx context.Context) ([]models.Client, bool, error)
}

// ClientHandler serves the approved client list.
type ClientHandler struct {
	service clientService
}

// NewClientHandler constructs the handler.
func NewClientHandler(service clientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List godoc
// @Summary Approved clients
// @Tags Clients
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, cacheHit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, clients, middleware.ExtractMeta(c))
}
