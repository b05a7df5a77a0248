package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
)

type userStore interface {
	List(ctx context.Context) ([]models.User, error)
	SetApproval(ctx context.Context, id string, action models.UserApproval) (map[string]interface{}, error)
	ChangeRole(ctx context.Context, id string, role models.UserRole) (map[string]interface{}, error)
}

// UserService administers dashboard accounts.
type UserService struct {
	store    userStore
	validate *validator.Validate
	pageSize int
	logger   *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(store userStore, validate *validator.Validate, pageSize int, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, validate: validate, pageSize: pageSize, logger: logger}
}

// List returns a page of accounts filtered by status and a search over
// name and email.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]dto.UserSummary, *models.Pagination, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	status := strings.ToLower(strings.TrimSpace(filter.Status))
	if status == strings.ToLower(models.FilterAll) {
		status = ""
	}
	q := strings.ToLower(strings.TrimSpace(filter.Search))

	rows := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		effective := string(review.NormalizeStatus(u.EffectiveStatus()))
		if status != "" && effective != status {
			continue
		}
		if q != "" && !containsFold(q, u.Name, u.Email) {
			continue
		}
		rows = append(rows, dto.UserSummary{
			ID:     u.ID.String(),
			Email:  u.Email,
			Name:   u.Name,
			Role:   u.Role,
			Status: effective,
		})
	}

	size := filter.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	current := filter.Page
	if current < 1 {
		current = 1
	}
	page := review.Paginate(len(rows), size, current, review.MaxVisiblePages)
	return review.Slice(rows, page), page.Pagination(), nil
}

// SetApproval activates or deactivates an account.
func (s *UserService) SetApproval(ctx context.Context, id string, req dto.UserApprovalRequest) (map[string]interface{}, error) {
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve or reject")
	}
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	result, err := s.store.SetApproval(ctx, id, models.UserApproval(req.Action))
	if err != nil {
		return nil, err
	}
	s.logger.Info("user approval changed", zap.String("user_id", id), zap.String("action", req.Action))
	return result, nil
}

// ChangeRole assigns admin or user to an account.
func (s *UserService) ChangeRole(ctx context.Context, id string, req dto.ChangeRoleRequest) (map[string]interface{}, error) {
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be admin or user")
	}
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	result, err := s.store.ChangeRole(ctx, id, models.UserRole(req.Role))
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", req.Role))
	return result, nil
}
