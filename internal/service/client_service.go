package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

type approvedClientLister interface {
	ListApproved(ctx context.Context) ([]models.Client, error)
}

// ClientService serves the approved client list used by the client filter.
type ClientService struct {
	repo   approvedClientLister
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(repo approvedClientLister, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// List returns approved clients and whether they came from cache.
func (s *ClientService) List(ctx context.Context) ([]models.Client, bool, error) {
	key, scoped := ScopedKey(ctx, "clients", "approved")
	var cached []models.Client
	if scoped && s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}
	clients, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, false, err
	}
	if scoped {
		s.cache.Set(ctx, key, clients, s.ttl)
	}
	return clients, false, nil
}
