package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/repository"
	"github.com/noah-isme/pricelist-review-api/internal/service"
	"github.com/noah-isme/pricelist-review-api/pkg/config"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
)

// services is the subset of the gateway's service graph the CLI drives.
type services struct {
	cfg     *config.Config
	jobs    *service.JobService
	status  *service.StatusService
	exports *service.ExportService
}

func loadServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if backendToken != "" {
		cfg.Backend.Token = backendToken
	}
	if cfg.Backend.Token == "" {
		return nil, fmt.Errorf("a bearer token is required (set BACKEND_TOKEN or use --token)")
	}

	remote := gateway.New(
		gateway.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout},
		gateway.StaticToken(cfg.Backend.Token),
	)
	jobRepo := repository.NewJobRepository(remote)
	cache := service.NewCacheService(nil, nil, 0, zap.NewNop(), false)
	inFlight := service.NewInFlight()

	jobs := service.NewJobService(service.JobServiceParams{
		Jobs:     jobRepo,
		Clients:  service.NewClientService(repository.NewClientRepository(remote), cache, 0, nil),
		Cache:    cache,
		InFlight: inFlight,
		Config: service.JobServiceConfig{
			PageSize:    cfg.Review.PageSize,
			MaxPageSize: cfg.Review.MaxPageSize,
		},
	})

	return &services{
		cfg:  cfg,
		jobs: jobs,
		status: service.NewStatusService(service.StatusServiceParams{
			Jobs:     jobRepo,
			Cache:    cache,
			InFlight: inFlight,
		}),
		exports: service.NewExportService(jobs, nil, nil, nil, nil),
	}, nil
}
