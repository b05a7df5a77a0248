package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
)

type productStore interface {
	List(ctx context.Context, clientID string) ([]models.Product, error)
	Export(ctx context.Context) (*gateway.Blob, error)
}

// ProductService browses the reference catalog.
type ProductService struct {
	store    productStore
	pageSize int
	logger   *zap.Logger
}

// NewProductService constructs a ProductService.
func NewProductService(store productStore, pageSize int, logger *zap.Logger) *ProductService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{store: store, pageSize: pageSize, logger: logger}
}

// List returns one page of the catalog. The search matches part number,
// name and description, case-insensitively.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, *models.Pagination, error) {
	products, err := s.store.List(ctx, strings.TrimSpace(filter.ClientID))
	if err != nil {
		return nil, nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		matched := make([]models.Product, 0, len(products))
		for _, p := range products {
			if containsFold(q, p.ManufacturerPartNumber, p.ProductName, p.Description) {
				matched = append(matched, p)
			}
		}
		products = matched
	}

	size := filter.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	current := filter.Page
	if current < 1 {
		current = 1
	}
	page := review.Paginate(len(products), size, current, review.MaxVisibleProductPages)
	return review.Slice(products, page), page.Pagination(), nil
}

// Export streams the backend's catalog export. The caller closes the body.
func (s *ProductService) Export(ctx context.Context) (*gateway.Blob, error) {
	blob, err := s.store.Export(ctx)
	if err != nil {
		return nil, err
	}
	if blob.Filename == "" {
		blob.Filename = "products_export.xlsx"
	}
	return blob, nil
}

func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
