package service

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/realtime"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/export"
)

var spreadsheetExtensions = map[string]bool{".xlsx": true, ".xls": true}

var spreadsheetMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
}

type uploadStore interface {
	UploadPricelist(ctx context.Context, clientID, filename string, file io.Reader) (*models.PricelistUploadResult, error)
	ImportCatalog(ctx context.Context, clientID, filename string, file io.Reader) (*models.CatalogImportResult, error)
}

// UploadServiceConfig bounds uploads.
type UploadServiceConfig struct {
	MaxFileSize int64
	PreviewRows int
}

// UploadFile is a spreadsheet received from a client.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService validates spreadsheets and forwards them to the backend.
type UploadService struct {
	store     uploadStore
	publisher EventPublisher
	cfg       UploadServiceConfig
	logger    *zap.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(store uploadStore, publisher EventPublisher, cfg UploadServiceConfig, logger *zap.Logger) *UploadService {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 * 1024 * 1024
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{store: store, publisher: publisher, cfg: cfg, logger: logger}
}

// Validate accepts .xlsx and .xls files. A supplied content type must be a
// spreadsheet type; an absent or generic one is accepted on extension alone.
func (s *UploadService) Validate(file UploadFile) error {
	if file.Body == nil || strings.TrimSpace(file.Filename) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if !spreadsheetExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return appErrors.Clone(appErrors.ErrValidation, "only .xlsx and .xls files are accepted")
	}
	if file.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(file.ContentType)
		if err != nil || (!spreadsheetMIMETypes[mediaType] && mediaType != "application/octet-stream") {
			return appErrors.Clone(appErrors.ErrValidation, "only Excel spreadsheets are accepted")
		}
	}
	if file.Size > s.cfg.MaxFileSize {
		return appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum upload size")
	}
	return nil
}

// Preview parses the header and first rows of an .xlsx upload locally.
func (s *UploadService) Preview(file UploadFile) (*dto.UploadPreview, error) {
	if err := s.Validate(file); err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".xlsx" {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "preview is only available for .xlsx files")
	}
	body, err := io.ReadAll(io.LimitReader(file.Body, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if int64(len(body)) > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum upload size")
	}
	sheet, headers, rows, err := export.Preview(bytes.NewReader(body), s.cfg.PreviewRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not a readable spreadsheet")
	}
	if rows == nil {
		rows = [][]string{}
	}
	return &dto.UploadPreview{Filename: file.Filename, Sheet: sheet, Headers: headers, Rows: rows}, nil
}

// UploadPricelist submits a commercial pricelist for analysis and announces
// the resulting job on the live feed.
func (s *UploadService) UploadPricelist(ctx context.Context, clientID string, file UploadFile) (*models.PricelistUploadResult, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "client id is required")
	}
	if err := s.Validate(file); err != nil {
		return nil, err
	}
	result, err := s.store.UploadPricelist(ctx, clientID, filepath.Base(file.Filename), file.Body)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil && result.JobID != "" {
		s.publisher.Publish(realtime.EventJobCreated, realtime.JobCreatedPayload{JobID: result.JobID.String(), ClientID: clientID})
	}
	s.logger.Info("pricelist uploaded", zap.String("client_id", clientID), zap.String("job_id", result.JobID.String()))
	return result, nil
}

// ImportCatalog replaces a client's reference catalog.
func (s *UploadService) ImportCatalog(ctx context.Context, clientID string, file UploadFile) (*models.CatalogImportResult, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "client id is required")
	}
	if err := s.Validate(file); err != nil {
		return nil, err
	}
	result, err := s.store.ImportCatalog(ctx, clientID, filepath.Base(file.Filename), file.Body)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog imported", zap.String("client_id", clientID), zap.Int("inserted", result.Inserted), zap.Int("updated", result.Updated))
	return result, nil
}
