package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/export"
	"github.com/noah-isme/pricelist-review-api/pkg/storage"
)

// Export link formats.
const (
	LinkFormatXLSX = "xlsx"
	LinkFormatPDF  = "pdf"
	LinkFormatCSV  = "csv"
)

type jobExporter interface {
	Workbook(ctx context.Context, jobID, filename string) (*ExportFile, error)
	Summary(ctx context.Context, jobID string) (*ExportFile, error)
	Category(ctx context.Context, jobID string, category review.Category) (*ExportFile, error)
}

type fileStore interface {
	Save(key string, data []byte) error
	Open(key string) (*os.File, error)
	Sweep(cutoff time.Time) ([]string, error)
}

type linkSigner interface {
	Sign(jobID, key string) (string, storage.Link, error)
	Verify(token string) (storage.Link, error)
	TTL() time.Duration
}

// ExportLinkRequest selects what a download link points at.
type ExportLinkRequest struct {
	JobID    string
	Format   string
	Category string
	Filename string
}

// Download is an opened stored export.
type Download struct {
	Filename    string
	ContentType string
	Size        int64
	File        *os.File
}

// ExportLinkService renders an export once with the caller's credentials and
// hands out a short-lived signed link to it. Browsers can follow the link
// without a bearer header.
type ExportLinkService struct {
	exports  jobExporter
	store    fileStore
	signer   linkSigner
	basePath string
	logger   *zap.Logger
}

// NewExportLinkService constructs the service. basePath is the public path
// prefix tokens are appended to, e.g. "/api/v1/downloads".
func NewExportLinkService(exports jobExporter, store fileStore, signer linkSigner, basePath string, logger *zap.Logger) *ExportLinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportLinkService{
		exports:  exports,
		store:    store,
		signer:   signer,
		basePath: strings.TrimRight(basePath, "/"),
		logger:   logger,
	}
}

// Create renders the requested export, stores it and signs a link.
func (s *ExportLinkService) Create(ctx context.Context, req ExportLinkRequest) (*dto.ExportLink, error) {
	file, err := s.render(ctx, req)
	if err != nil {
		return nil, err
	}

	key := req.JobID + "/" + uuid.NewString() + "/" + file.Filename
	if err := s.store.Save(key, file.Data); err != nil {
		s.logger.Error("store export failed", zap.String("job_id", req.JobID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, link, err := s.signer.Sign(req.JobID, key)
	if err != nil {
		s.logger.Error("sign export link failed", zap.String("job_id", req.JobID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	return &dto.ExportLink{
		URL:       s.basePath + "/" + token,
		Filename:  file.Filename,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

func (s *ExportLinkService) render(ctx context.Context, req ExportLinkRequest) (*ExportFile, error) {
	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "", LinkFormatXLSX:
		return s.exports.Workbook(ctx, req.JobID, req.Filename)
	case LinkFormatPDF:
		return s.exports.Summary(ctx, req.JobID)
	case LinkFormatCSV:
		category, ok := review.ParseCategory(req.Category)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category is required for csv links")
		}
		return s.exports.Category(ctx, req.JobID, category)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be xlsx, pdf or csv")
	}
}

// Open verifies token and opens the stored file. The caller closes File.
func (s *ExportLinkService) Open(token string) (*Download, error) {
	link, err := s.signer.Verify(token)
	switch {
	case errors.Is(err, storage.ErrLinkExpired):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
	case err != nil:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link not found")
	}

	f, err := s.store.Open(link.Key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}

	filename := link.Key[strings.LastIndex(link.Key, "/")+1:]
	return &Download{
		Filename:    filename,
		ContentType: contentTypeFor(filename),
		Size:        info.Size(),
		File:        f,
	}, nil
}

// RunJanitor removes exports older than the link TTL every interval until
// ctx is done.
func (s *ExportLinkService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.signer.TTL()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes exports whose links can no longer be valid.
func (s *ExportLinkService) Sweep() int {
	removed, err := s.store.Sweep(time.Now().Add(-s.signer.TTL()))
	if err != nil {
		s.logger.Warn("export sweep failed", zap.Error(err))
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return len(removed)
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".xlsx"):
		return export.XLSXContentType
	case strings.HasSuffix(filename, ".pdf"):
		return export.PDFContentType
	case strings.HasSuffix(filename, ".csv"):
		return CSVContentType
	default:
		return "application/octet-stream"
	}
}
