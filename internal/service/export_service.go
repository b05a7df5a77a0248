package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/export"
)

// CSVContentType is the MIME type of category CSV downloads.
const CSVContentType = "text/csv; charset=utf-8"

type categorizedJobs interface {
	Categorized(ctx context.Context, id string) (*models.AnalysisJob, review.Bucketed, error)
}

type workbookRenderer interface {
	Render(sheets []export.Sheet) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders job analyses into downloadable documents.
type ExportService struct {
	jobs   categorizedJobs
	xlsx   workbookRenderer
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService; nil renderers use the defaults.
func NewExportService(jobs categorizedJobs, logger *zap.Logger, xlsx workbookRenderer, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{jobs: jobs, xlsx: xlsx, csv: csv, pdf: pdf, logger: logger}
}

// Workbook renders every non-empty category of a job as one xlsx sheet.
// filename overrides the default name when set.
func (s *ExportService) Workbook(ctx context.Context, jobID, filename string) (*ExportFile, error) {
	_, bucketed, err := s.jobs.Categorized(ctx, jobID)
	if err != nil {
		return nil, err
	}
	data, err := s.xlsx.Render(review.BuildWorkbook(bucketed.Actions))
	if err != nil {
		if errors.Is(err, export.ErrNoSheets) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "no modifications to export")
		}
		s.logger.Error("render workbook", zap.String("job_id", jobID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}

	name := review.ExportFilename(jobID)
	if custom := sanitizeFilename(filename); custom != "" {
		name = custom
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			name += ".xlsx"
		}
	}
	return &ExportFile{Filename: name, ContentType: export.XLSXContentType, Data: data}, nil
}

// Summary renders the printable PDF summary of a job.
func (s *ExportService) Summary(ctx context.Context, jobID string) (*ExportFile, error) {
	job, bucketed, err := s.jobs.Categorized(ctx, jobID)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(review.SummaryDocument(*job, bucketed.Actions))
	if err != nil {
		s.logger.Error("render summary", zap.String("job_id", jobID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render summary")
	}
	return &ExportFile{Filename: review.SummaryFilename(jobID), ContentType: export.PDFContentType, Data: data}, nil
}

// Category renders one category table as CSV. Empty categories produce a
// header-only file.
func (s *ExportService) Category(ctx context.Context, jobID string, category review.Category) (*ExportFile, error) {
	_, bucketed, err := s.jobs.Categorized(ctx, jobID)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(review.CategoryDataset(bucketed.Actions[category]))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &ExportFile{Filename: review.CategoryFilename(jobID, category), ContentType: CSVContentType, Data: data}, nil
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(filepath.Base(strings.ReplaceAll(raw, "\\", "/")))
	if raw == "" || raw == "." || raw == "/" {
		return ""
	}
	replacer := strings.NewReplacer(" ", "_", ":", "-", "\"", "", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
