package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
)

// ProductRepository browses the reference catalog.
type ProductRepository struct {
	remote Remote
}

// NewProductRepository constructs the repository.
func NewProductRepository(remote Remote) *ProductRepository {
	return &ProductRepository{remote: remote}
}

// List returns the catalog, narrowed to one client when clientID is set.
func (r *ProductRepository) List(ctx context.Context, clientID string) ([]models.Product, error) {
	path := "/products"
	if clientID != "" {
		path = fmt.Sprintf("/products/client/%s", url.PathEscape(clientID))
	}
	var raw json.RawMessage
	if err := r.remote.Get(ctx, path, nil, &raw); err != nil {
		return nil, upstreamError(err)
	}
	products := make([]models.Product, 0)
	if err := decodeList(raw, &products); err != nil {
		return nil, decodeFailure(err)
	}
	return products, nil
}

// Export streams the backend's catalog export. The caller closes the body.
func (r *ProductRepository) Export(ctx context.Context) (*gateway.Blob, error) {
	blob, err := r.remote.Download(ctx, "/export/", nil)
	if err != nil {
		return nil, upstreamError(err)
	}
	return blob, nil
}
