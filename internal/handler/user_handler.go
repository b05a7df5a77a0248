package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]dto.UserSummary, *models.Pagination, error)
	SetApproval(ctx context.Context, id string, req dto.UserApprovalRequest) (map[string]interface{}, error)
	ChangeRole(ctx context.Context, id string, req dto.ChangeRoleRequest) (map[string]interface{}, error)
}

// UserHandler serves the user activation screen.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary List dashboard accounts
// @Tags Users
// @Produce json
// @Param status query string false "active, inactive, pending or All"
// @Param search query string false "Name or email"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
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
	users, pagination, err := h.service.List(c.Request.Context(), models.UserFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// SetApproval godoc
// @Summary Activate or deactivate an account
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.UserApprovalRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/approval [patch]
func (h *UserHandler) SetApproval(c *gin.Context) {
	var req dto.UserApprovalRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid approval payload"))
		return
	}
	result, err := h.service.SetApproval(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ChangeRole godoc
// @Summary Change an account's role
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.ChangeRoleRequest true "Role"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid role payload"))
		return
	}
	result, err := h.service.ChangeRole(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
