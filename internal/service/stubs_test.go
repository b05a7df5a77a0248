package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
)

type stubCacheRepo struct {
	mu      sync.Mutex
	store   map[string][]byte
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.store, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

type jobRepoStub struct {
	mu          sync.Mutex
	jobs        []models.AnalysisJob
	detail      map[string]models.AnalysisJob
	listErr     error
	getErr      error
	updateErr   error
	getCalls    int
	updateCalls []string
	result      *models.StatusChangeResult
	// allowToken, when set, rejects Get for any other bearer token.
	allowToken string
	// block, when set, holds UpdateStatus until it is closed.
	block chan struct{}
}

func (r *jobRepoStub) List(context.Context) ([]models.AnalysisJob, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.jobs, nil
}

func (r *jobRepoStub) Get(ctx context.Context, id string) (*models.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.allowToken != "" {
		if token, _ := gateway.ContextToken.Token(ctx); token != r.allowToken {
			return nil, appErrors.ErrForbidden
		}
	}
	job, ok := r.detail[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Job not found")
	}
	return &job, nil
}

func (r *jobRepoStub) UpdateStatus(_ context.Context, id string, action models.StatusAction) (*models.StatusChangeResult, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls = append(r.updateCalls, id+":"+string(action))
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if r.result != nil {
		return r.result, nil
	}
	return &models.StatusChangeResult{JobID: models.FlexibleID(id)}, nil
}

func (r *jobRepoStub) updates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.updateCalls...)
}

type clientRepoStub struct {
	clients []models.Client
	err     error
	calls   int
}

func (r *clientRepoStub) ListApproved(context.Context) ([]models.Client, error) {
	r.calls++
	return r.clients, r.err
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type publisherStub struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *publisherStub) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
}

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *auditRecorderStub) Record(entry models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func strPtr(s string) *string { return &s }

func pricePtr(v float64) *models.Price {
	return models.NewPrice(v)
}

func ts(raw string) models.Timestamp {
	t, err := models.ParseTimestamp(raw)
	if err != nil {
		panic(err)
	}
	return models.Timestamp{Time: t}
}

func sampleJob(id, status string) models.AnalysisJob {
	return models.AnalysisJob{
		JobID:          models.FlexibleID(id),
		ClientID:       "7",
		Client:         "Acme Supply",
		ContractNumber: "GS-07F-0001",
		User:           "reviewer@acme.test",
		Status:         status,
		CreatedTime:    ts("2024-03-01T10:00:00Z"),
		Modifications: []models.ModificationAction{
			{ActionID: "1", ActionType: models.ActionNewProduct, ProductName: strPtr("Widget"), ManufacturerPartNumber: strPtr("W-1"), NewPrice: pricePtr(12.5), NewDescription: strPtr("Blue widget")},
			{ActionID: "2", ActionType: models.ActionPriceIncrease, ManufacturerPartNumber: strPtr("G-2"), OldPrice: pricePtr(10), NewPrice: pricePtr(11)},
			{ActionID: "3", ActionType: models.ActionPriceIncrease, ManufacturerPartNumber: strPtr("G-3"), OldPrice: pricePtr(20), NewPrice: pricePtr(25)},
			{ActionID: "4", ActionType: "BOGUS"},
		},
	}
}
