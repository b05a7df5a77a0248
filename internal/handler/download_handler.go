package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/service"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

type exportLinkService interface {
	Create(ctx context.Context, req service.ExportLinkRequest) (*dto.ExportLink, error)
	Open(token string) (*service.Download, error)
}

// DownloadHandler issues and serves signed export links.
type DownloadHandler struct {
	links exportLinkService
}

// NewDownloadHandler constructs the handler.
func NewDownloadHandler(links exportLinkService) *DownloadHandler {
	return &DownloadHandler{links: links}
}

// CreateLink godoc
// @Summary Create a signed download link for a job export
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Param format query string false "xlsx (default), pdf or csv"
// @Param category query string false "Category for csv links"
// @Param filename query string false "Workbook file name override"
// @Success 201 {object} response.Envelope
// @Router /jobs/{id}/export/link [post]
func (h *DownloadHandler) CreateLink(c *gin.Context) {
	link, err := h.links.Create(c.Request.Context(), service.ExportLinkRequest{
		JobID:    c.Param("id"),
		Format:   c.Query("format"),
		Category: c.Query("category"),
		Filename: strings.TrimSpace(c.Query("filename")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Follow a signed download link
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /downloads/{token} [get]
func (h *DownloadHandler) Download(c *gin.Context) {
	download, err := h.links.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()
	response.Stream(c, download.Filename, download.ContentType, download.Size, download.File)
}
