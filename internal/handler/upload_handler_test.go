package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/service"
)

type fakeUploadSrv struct {
	clientID string
	filename string
	body     []byte
}

func (f *fakeUploadSrv) capture(file service.UploadFile) {
	f.filename = file.Filename
	f.body, _ = io.ReadAll(file.Body)
}

func (f *fakeUploadSrv) Preview(file service.UploadFile) (*dto.UploadPreview, error) {
	f.capture(file)
	return &dto.UploadPreview{Filename: file.Filename}, nil
}

func (f *fakeUploadSrv) UploadPricelist(_ context.Context, clientID string, file service.UploadFile) (*models.PricelistUploadResult, error) {
	f.clientID = clientID
	f.capture(file)
	return &models.PricelistUploadResult{}, nil
}

func (f *fakeUploadSrv) ImportCatalog(_ context.Context, clientID string, file service.UploadFile) (*models.CatalogImportResult, error) {
	f.clientID = clientID
	f.capture(file)
	return &models.CatalogImportResult{}, nil
}

func multipartRequest(t *testing.T, target, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandlerUploadPricelist(t *testing.T) {
	srv := &fakeUploadSrv{}
	handler := NewUploadHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/", "")
	c.Request = multipartRequest(t, "/clients/7/pricelists", uploadField, "march.xlsx", []byte("sheet"))
	c.Params = gin.Params{{Key: "client_id", Value: "7"}}

	handler.UploadPricelist(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "7", srv.clientID)
	assert.Equal(t, "march.xlsx", srv.filename)
	assert.Equal(t, []byte("sheet"), srv.body)
}

func TestUploadHandlerRequiresFile(t *testing.T) {
	srv := &fakeUploadSrv{}
	handler := NewUploadHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/", "")
	c.Request = multipartRequest(t, "/uploads/preview", "attachment", "march.xlsx", []byte("sheet"))

	handler.Preview(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", decodeEnvelope(t, rec).Error.Message)
	assert.Empty(t, srv.filename)
}
