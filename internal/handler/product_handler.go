package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

type productService interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, *models.Pagination, error)
	Export(ctx context.Context) (*gateway.Blob, error)
}

// ProductHandler serves catalog browsing.
type ProductHandler struct {
	service productService
}

// NewProductHandler constructs the handler.
func NewProductHandler(service productService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List godoc
// @Summary Browse the catalog
// @Tags Products
// @Produce json
// @Param client_id query string false "Narrow to one client"
// @Param search query string false "Part number, name or description"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		response.Error(c, err)
		return
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		response.Error(c, err)
		return
	}
	products, pagination, err := h.service.List(c.Request.Context(), models.ProductFilter{
		ClientID: strings.TrimSpace(c.Query("client_id")),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, pagination)
}

// Export godoc
// @Summary Download the catalog export
// @Tags Products
// @Produce application/octet-stream
// @Success 200 {file} file
// @Router /products/export [get]
func (h *ProductHandler) Export(c *gin.Context) {
	blob, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	defer blob.Body.Close()
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	response.Stream(c, blob.Filename, contentType, blob.ContentLength, blob.Body)
}
