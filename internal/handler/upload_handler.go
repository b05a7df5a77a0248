package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/service"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

const uploadField = "file"

type uploadService interface {
	Preview(file service.UploadFile) (*dto.UploadPreview, error)
	UploadPricelist(ctx context.Context, clientID string, file service.UploadFile) (*models.PricelistUploadResult, error)
	ImportCatalog(ctx context.Context, clientID string, file service.UploadFile) (*models.CatalogImportResult, error)
}

// UploadHandler accepts spreadsheet uploads.
type UploadHandler struct {
	service uploadService
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service uploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Preview godoc
// @Summary Preview the first rows of a spreadsheet
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.xlsx)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /uploads/preview [post]
func (h *UploadHandler) Preview(c *gin.Context) {
	h.withFile(c, func(file service.UploadFile) {
		preview, err := h.service.Preview(file)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, preview)
	})
}

// UploadPricelist godoc
// @Summary Upload a commercial pricelist for analysis
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param client_id path string true "Client ID"
// @Param file formData file true "Spreadsheet (.xlsx or .xls)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clients/{client_id}/pricelists [post]
func (h *UploadHandler) UploadPricelist(c *gin.Context) {
	h.withFile(c, func(file service.UploadFile) {
		result, err := h.service.UploadPricelist(c.Request.Context(), c.Param("client_id"), file)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, result)
	})
}

// ImportCatalog godoc
// @Summary Replace a client's GSA catalog
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param client_id path string true "Client ID"
// @Param file formData file true "Spreadsheet (.xlsx or .xls)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clients/{client_id}/catalog [post]
func (h *UploadHandler) ImportCatalog(c *gin.Context) {
	h.withFile(c, func(file service.UploadFile) {
		result, err := h.service.ImportCatalog(c.Request.Context(), c.Param("client_id"), file)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	})
}

func (h *UploadHandler) withFile(c *gin.Context, fn func(file service.UploadFile)) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "failed to read upload"))
		return
	}
	defer f.Close()

	fn(service.UploadFile{
		Filename:    header.Filename,
		ContentType: strings.TrimSpace(header.Header.Get("Content-Type")),
		Size:        header.Size,
		Body:        f,
	})
}
