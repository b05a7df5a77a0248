package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/realtime"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/export"
)

type uploadStoreStub struct {
	pricelistCalls int
	catalogCalls   int
	filename       string
	body           string
	err            error
}

func (s *uploadStoreStub) UploadPricelist(_ context.Context, _ string, filename string, file io.Reader) (*models.PricelistUploadResult, error) {
	s.pricelistCalls++
	s.filename = filename
	data, _ := io.ReadAll(file)
	s.body = string(data)
	if s.err != nil {
		return nil, s.err
	}
	return &models.PricelistUploadResult{JobID: "99", Summary: models.UploadSummary{NewProducts: 2}, NextStep: "review"}, nil
}

func (s *uploadStoreStub) ImportCatalog(_ context.Context, _ string, filename string, _ io.Reader) (*models.CatalogImportResult, error) {
	s.catalogCalls++
	s.filename = filename
	if s.err != nil {
		return nil, s.err
	}
	return &models.CatalogImportResult{Inserted: 3}, nil
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	data, err := export.NewXLSXExporter().Render([]export.Sheet{{
		Name:    "Pricelist",
		Headers: []string{"Part Number", "Price"},
		Rows:    [][]interface{}{{"W-1", 10.5}, {"W-2", 11.0}, {"W-3", 12.0}},
	}})
	require.NoError(t, err)
	return data
}

func TestUploadServiceValidate(t *testing.T) {
	svc := NewUploadService(&uploadStoreStub{}, nil, UploadServiceConfig{MaxFileSize: 1024}, zap.NewNop())
	body := strings.NewReader("x")

	cases := []struct {
		name string
		file UploadFile
		ok   bool
	}{
		{"xlsx", UploadFile{Filename: "prices.xlsx", Body: body}, true},
		{"xls upper", UploadFile{Filename: "PRICES.XLS", ContentType: "application/vnd.ms-excel", Body: body}, true},
		{"csv", UploadFile{Filename: "prices.csv", Body: body}, false},
		{"wrong mime", UploadFile{Filename: "prices.xlsx", ContentType: "text/plain", Body: body}, false},
		{"too large", UploadFile{Filename: "prices.xlsx", Size: 2048, Body: body}, false},
		{"missing", UploadFile{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Validate(tc.file)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}

func TestUploadServicePreview(t *testing.T) {
	svc := NewUploadService(&uploadStoreStub{}, nil, UploadServiceConfig{PreviewRows: 2}, zap.NewNop())

	preview, err := svc.Preview(UploadFile{Filename: "prices.xlsx", Body: bytes.NewReader(workbookBytes(t))})
	require.NoError(t, err)
	assert.Equal(t, "Pricelist", preview.Sheet)
	assert.Equal(t, []string{"Part Number", "Price"}, preview.Headers)
	require.Len(t, preview.Rows, 2)
	assert.Equal(t, "W-1", preview.Rows[0][0])

	_, err = svc.Preview(UploadFile{Filename: "legacy.xls", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedMedia)

	_, err = svc.Preview(UploadFile{Filename: "broken.xlsx", Body: strings.NewReader("not a workbook")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUploadServicePricelistAnnouncesJob(t *testing.T) {
	store := &uploadStoreStub{}
	publisher := &publisherStub{}
	svc := NewUploadService(store, publisher, UploadServiceConfig{}, zap.NewNop())

	result, err := svc.UploadPricelist(context.Background(), "7", UploadFile{Filename: "q1.xlsx", Body: strings.NewReader("payload")})
	require.NoError(t, err)
	assert.Equal(t, models.FlexibleID("99"), result.JobID)
	assert.Equal(t, "q1.xlsx", store.filename)
	assert.Equal(t, "payload", store.body)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, realtime.EventJobCreated, publisher.events[0].Type)
	assert.Equal(t, realtime.JobCreatedPayload{JobID: "99", ClientID: "7"}, publisher.events[0].Payload)
}

func TestUploadServiceRejectsBeforeUpstream(t *testing.T) {
	store := &uploadStoreStub{}
	svc := NewUploadService(store, nil, UploadServiceConfig{}, zap.NewNop())

	_, err := svc.UploadPricelist(context.Background(), "7", UploadFile{Filename: "q1.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.ImportCatalog(context.Background(), "", UploadFile{Filename: "gsa.xlsx", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, store.pricelistCalls)
	assert.Zero(t, store.catalogCalls)

	result, err := svc.ImportCatalog(context.Background(), "7", UploadFile{Filename: "gsa.xlsx", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
}
