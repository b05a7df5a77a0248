package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditHandler exposes recorded status decisions to administrators.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary Status decision audit trail
// @Tags Audit
// @Produce json
// @Param job_id query string false "Only this job"
// @Param limit query int false "Max rows, default 50"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.service.List(c.Request.Context(), models.AuditFilter{
		JobID:  strings.TrimSpace(c.Query("job_id")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, logs)
}
