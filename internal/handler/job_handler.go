package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/middleware"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	"github.com/noah-isme/pricelist-review-api/internal/service"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/middleware/requestid"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

type jobService interface {
	List(ctx context.Context, query dto.JobListQuery) (*dto.JobListResponse, error)
	Dashboard(ctx context.Context, query dto.JobListQuery) (*dto.DashboardResponse, error)
	Detail(ctx context.Context, id string, pageSize int) (*dto.JobDetailResponse, bool, error)
	Table(ctx context.Context, id string, category review.Category, page, pageSize int) (*dto.CategoryPage, error)
	Confirmation(ctx context.Context, id, action string) (*review.Confirmation, error)
}

type statusService interface {
	Change(ctx context.Context, change service.StatusChange) (*dto.StatusChangeResponse, error)
}

type exportService interface {
	Workbook(ctx context.Context, jobID, filename string) (*service.ExportFile, error)
	Summary(ctx context.Context, jobID string) (*service.ExportFile, error)
	Category(ctx context.Context, jobID string, category review.Category) (*service.ExportFile, error)
}

// JobHandler serves the job history and job review screens.
type JobHandler struct {
	jobs    jobService
	status  statusService
	exports exportService
}

// NewJobHandler constructs the handler.
func NewJobHandler(jobs jobService, status statusService, exports exportService) *JobHandler {
	return &JobHandler{jobs: jobs, status: status, exports: exports}
}

// List godoc
// @Summary Job history
// @Description Filtered, sorted and paginated analysis jobs
// @Tags Jobs
// @Produce json
// @Param search query string false "Matches job id, client, user or contract"
// @Param client query string false "Client name, All for any"
// @Param status query string false "pending, approved, rejected or All"
// @Param date_from query string false "Inclusive lower bound (YYYY-MM-DD or RFC3339)"
// @Param date_to query string false "Inclusive upper bound (YYYY-MM-DD or RFC3339)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_key query string false "Sort key"
// @Param sort_dir query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	query, err := jobListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.jobs.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, result.Pagination)
}

// Dashboard godoc
// @Summary Job history with client list
// @Description Loads the job history and the approved clients in one call
// @Tags Jobs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *JobHandler) Dashboard(c *gin.Context) {
	query, err := jobListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.jobs.Dashboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Detail godoc
// @Summary Job review
// @Description Job header, per-category counts and the first page of every category table
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param page_size query int false "Rows per table"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Detail(c *gin.Context) {
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, cacheHit, err := h.jobs.Detail(c.Request.Context(), c.Param("id"), pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	if detail.Dropped > 0 {
		middleware.SetMeta(c, "dropped_records", detail.Dropped)
	}
	response.OK(c, detail, middleware.ExtractMeta(c))
}

// Table godoc
// @Summary One category table
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param category path string true "additions, deletions, priceIncreases, priceDecreases or descriptionChanges"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/tables/{category} [get]
func (h *JobHandler) Table(c *gin.Context) {
	category, ok := review.ParseCategory(c.Param("category"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown category"))
		return
	}
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
	result, err := h.jobs.Table(c.Request.Context(), c.Param("id"), category, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Table, result.Pagination)
}

// Confirmation godoc
// @Summary Approve/reject dialog content
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param action query string true "approve or reject"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs/{id}/status/confirmation [get]
func (h *JobHandler) Confirmation(c *gin.Context) {
	result, err := h.jobs.Confirmation(c.Request.Context(), c.Param("id"), c.Query("action"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ChangeStatus godoc
// @Summary Approve or reject a pending job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param payload body dto.StatusChangeRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs/{id}/status [post]
func (h *JobHandler) ChangeStatus(c *gin.Context) {
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	actor := ""
	if claims := claimsFromContext(c); claims != nil {
		actor = claims.Actor()
	}
	result, err := h.status.Change(c.Request.Context(), service.StatusChange{
		JobID:     c.Param("id"),
		Actor:     actor,
		RequestID: requestid.Value(c),
		Request:   req,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Export godoc
// @Summary Download the analysis workbook
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Job ID"
// @Param filename query string false "Override the default file name"
// @Success 200 {file} file
// @Router /jobs/{id}/export [get]
func (h *JobHandler) Export(c *gin.Context) {
	file, err := h.exports.Workbook(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("filename")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Summary godoc
// @Summary Download the PDF summary
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Job ID"
// @Success 200 {file} file
// @Router /jobs/{id}/summary.pdf [get]
func (h *JobHandler) Summary(c *gin.Context) {
	file, err := h.exports.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// CategoryCSV godoc
// @Summary Download one category as CSV
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Job ID"
// @Param category path string true "Category"
// @Success 200 {file} file
// @Router /jobs/{id}/tables/{category}/export.csv [get]
func (h *JobHandler) CategoryCSV(c *gin.Context) {
	category, ok := review.ParseCategory(c.Param("category"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown category"))
		return
	}
	file, err := h.exports.Category(c.Request.Context(), c.Param("id"), category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
