package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/middleware"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	"github.com/noah-isme/pricelist-review-api/internal/service"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

type fakeJobSrv struct {
	lastQuery    dto.JobListQuery
	listResp     *dto.JobListResponse
	detail       *dto.JobDetailResponse
	detailHit    bool
	tablePage    int
	tableCat     review.Category
	confirmation *review.Confirmation
	err          error
}

func (f *fakeJobSrv) List(_ context.Context, query dto.JobListQuery) (*dto.JobListResponse, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.listResp, nil
}

func (f *fakeJobSrv) Dashboard(_ context.Context, query dto.JobListQuery) (*dto.DashboardResponse, error) {
	f.lastQuery = query
	return &dto.DashboardResponse{}, f.err
}

func (f *fakeJobSrv) Detail(context.Context, string, int) (*dto.JobDetailResponse, bool, error) {
	return f.detail, f.detailHit, f.err
}

func (f *fakeJobSrv) Table(_ context.Context, _ string, category review.Category, page, _ int) (*dto.CategoryPage, error) {
	f.tableCat, f.tablePage = category, page
	return &dto.CategoryPage{Table: review.RenderTable(category, nil), Pagination: &models.Pagination{Page: page}}, f.err
}

func (f *fakeJobSrv) Confirmation(context.Context, string, string) (*review.Confirmation, error) {
	return f.confirmation, f.err
}

type fakeStatusSrv struct {
	last service.StatusChange
	err  error
}

func (f *fakeStatusSrv) Change(_ context.Context, change service.StatusChange) (*dto.StatusChangeResponse, error) {
	f.last = change
	if f.err != nil {
		return nil, f.err
	}
	return &dto.StatusChangeResponse{JobID: change.JobID, Status: review.Badge("rejected")}, nil
}

type fakeExportSrv struct {
	filename string
	err      error
}

func (f *fakeExportSrv) Workbook(_ context.Context, jobID, filename string) (*service.ExportFile, error) {
	f.filename = filename
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: review.ExportFilename(jobID), ContentType: "application/xlsx", Data: []byte("xlsx")}, nil
}

func (f *fakeExportSrv) Summary(_ context.Context, jobID string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: review.SummaryFilename(jobID), ContentType: "application/pdf", Data: []byte("%PDF")}, f.err
}

func (f *fakeExportSrv) Category(_ context.Context, jobID string, category review.Category) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: review.CategoryFilename(jobID, category), ContentType: service.CSVContentType, Data: []byte("a,b\n")}, f.err
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, rec
}

func TestJobHandlerListParsesFilters(t *testing.T) {
	srv := &fakeJobSrv{listResp: &dto.JobListResponse{Total: 0, Pagination: &models.Pagination{Page: 2}}}
	handler := NewJobHandler(srv, nil, nil)
	c, rec := newTestContext(http.MethodGet, "/jobs?search=acme&status=pending&date_to=2024-03-01&page=2&sort_dir=asc", "")

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	filters := srv.lastQuery.Filters
	assert.Equal(t, "acme", filters.SearchQuery)
	assert.Equal(t, "pending", filters.StatusFilter)
	assert.Equal(t, models.FilterAll, filters.ClientFilter)
	assert.Equal(t, 2, filters.CurrentPage)
	assert.Equal(t, models.SortAsc, filters.Sort.Direction)
	require.NotNil(t, filters.DateTo)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC), *filters.DateTo)
	assert.Equal(t, 2, decodeEnvelope(t, rec).Pagination.Page)
}

func TestJobHandlerListRejectsBadInput(t *testing.T) {
	handler := NewJobHandler(&fakeJobSrv{}, nil, nil)
	for _, target := range []string{
		"/jobs?page=0",
		"/jobs?date_from=yesterday",
		"/jobs?date_from=2024-03-02&date_to=2024-03-01",
		"/jobs?sort_dir=sideways",
	} {
		c, rec := newTestContext(http.MethodGet, target, "")
		handler.List(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestJobHandlerDetailReportsCacheAndDropped(t *testing.T) {
	srv := &fakeJobSrv{detail: &dto.JobDetailResponse{Total: 3, Dropped: 1}, detailHit: true}
	handler := NewJobHandler(srv, nil, nil)
	c, rec := newTestContext(http.MethodGet, "/jobs/42", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.Detail(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.EqualValues(t, 1, envelope.Meta["dropped_records"])
}

func TestJobHandlerTableValidatesCategory(t *testing.T) {
	srv := &fakeJobSrv{}
	handler := NewJobHandler(srv, nil, nil)

	c, rec := newTestContext(http.MethodGet, "/jobs/42/tables/bogus", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "category", Value: "bogus"}}
	handler.Table(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/jobs/42/tables/priceIncreases?page=3", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "category", Value: "priceIncreases"}}
	handler.Table(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, review.CategoryPriceIncreases, srv.tableCat)
	assert.Equal(t, 3, srv.tablePage)
}

func TestJobHandlerChangeStatusPassesActor(t *testing.T) {
	srv := &fakeStatusSrv{}
	handler := NewJobHandler(nil, srv, nil)
	c, rec := newTestContext(http.MethodPost, "/jobs/42/status", `{"action":"reject","confirmed":true}`)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Email: "admin@acme.test", Role: models.RoleAdmin})

	handler.ChangeStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", srv.last.JobID)
	assert.Equal(t, "admin@acme.test", srv.last.Actor)
	assert.True(t, srv.last.Request.Confirmed)
}

func TestJobHandlerChangeStatusMapsConflict(t *testing.T) {
	srv := &fakeStatusSrv{err: appErrors.Clone(appErrors.ErrConflict, "job is already being updated")}
	handler := NewJobHandler(nil, srv, nil)
	c, rec := newTestContext(http.MethodPost, "/jobs/42/status", `{"action":"approve","confirmed":true}`)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.ChangeStatus(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "job is already being updated", decodeEnvelope(t, rec).Error.Message)
}

func TestJobHandlerExportSetsDisposition(t *testing.T) {
	srv := &fakeExportSrv{}
	handler := NewJobHandler(nil, nil, srv)
	c, rec := newTestContext(http.MethodGet, "/jobs/42/export?filename=march", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "march", srv.filename)
	assert.Equal(t, `attachment; filename="ANAL-JOB-42-analysis.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", rec.Body.String())
}
