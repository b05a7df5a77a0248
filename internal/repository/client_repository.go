package repository

import (
	"context"
	"encoding/json"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

// ClientRepository lists the approved clients used for filtering.
type ClientRepository struct {
	remote Remote
}

// NewClientRepository constructs the repository.
func NewClientRepository(remote Remote) *ClientRepository {
	return &ClientRepository{remote: remote}
}

// ListApproved returns clients whose contracts are approved.
func (r *ClientRepository) ListApproved(ctx context.Context) ([]models.Client, error) {
	var raw json.RawMessage
	if err := r.remote.Get(ctx, "/clients/approved", nil, &raw); err != nil {
		return nil, upstreamError(err)
	}
	clients := make([]models.Client, 0)
	if err := decodeList(raw, &clients); err != nil {
		return nil, decodeFailure(err)
	}
	return clients, nil
}
