package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

const uploadField = "file"

// UploadRepository forwards spreadsheets to the analysis backend.
type UploadRepository struct {
	remote Remote
}

// NewUploadRepository constructs the repository.
func NewUploadRepository(remote Remote) *UploadRepository {
	return &UploadRepository{remote: remote}
}

// UploadPricelist submits a commercial pricelist; the backend analyses it
// into a new pending job.
func (r *UploadRepository) UploadPricelist(ctx context.Context, clientID, filename string, file io.Reader) (*models.PricelistUploadResult, error) {
	var result models.PricelistUploadResult
	path := fmt.Sprintf("/cpl/%s", url.PathEscape(clientID))
	if err := r.remote.Upload(ctx, path, uploadField, filename, file, &result); err != nil {
		return nil, upstreamError(err)
	}
	return &result, nil
}

// ImportCatalog replaces a client's GSA catalog with the uploaded sheet.
func (r *UploadRepository) ImportCatalog(ctx context.Context, clientID, filename string, file io.Reader) (*models.CatalogImportResult, error) {
	var result models.CatalogImportResult
	path := fmt.Sprintf("/upload/%s", url.PathEscape(clientID))
	if err := r.remote.Upload(ctx, path, uploadField, filename, file, &result); err != nil {
		return nil, upstreamError(err)
	}
	return &result, nil
}
