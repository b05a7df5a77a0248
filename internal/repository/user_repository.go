package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

// UserRepository administers dashboard accounts on the backend.
type UserRepository struct {
	remote Remote
}

// NewUserRepository constructs the repository.
func NewUserRepository(remote Remote) *UserRepository {
	return &UserRepository{remote: remote}
}

// List returns every dashboard account.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var raw json.RawMessage
	if err := r.remote.Get(ctx, "/users/all", nil, &raw); err != nil {
		return nil, upstreamError(err)
	}
	users := make([]models.User, 0)
	if err := decodeList(raw, &users); err != nil {
		return nil, decodeFailure(err)
	}
	return users, nil
}

// SetApproval activates or deactivates an account.
func (r *UserRepository) SetApproval(ctx context.Context, id string, action models.UserApproval) (map[string]interface{}, error) {
	var result map[string]interface{}
	query := url.Values{"action": {string(action)}}
	if err := r.remote.Patch(ctx, fmt.Sprintf("/users/%s/approve", url.PathEscape(id)), query, nil, &result); err != nil {
		return nil, upstreamError(err)
	}
	return result, nil
}

// ChangeRole assigns a new role to an account.
func (r *UserRepository) ChangeRole(ctx context.Context, id string, role models.UserRole) (map[string]interface{}, error) {
	var result map[string]interface{}
	body := map[string]string{"role": string(role)}
	if err := r.remote.Put(ctx, fmt.Sprintf("/users/change_role/%s", url.PathEscape(id)), nil, body, &result); err != nil {
		return nil, upstreamError(err)
	}
	return result, nil
}
