package provider

import (
	"context"
	"fmt"

	providerRepo "autocare/database/repository/provider"
	"autocare/models"
	"autocare/services/mock"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// Entity is the query-cache entity for provider views.
const Entity = "serviceProviders"

// Source tells where a lookup result came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceMock   Source = "mock"
)

// LookupResult is the outcome of LookupProviders.
type LookupResult struct {
	Providers []models.ServiceProvider `json:"providers"`
	Source    Source                   `json:"source"`
}

type ProviderService interface {
	// Lookup
	LookupProviders(ctx context.Context, location string) (*LookupResult, error)

	// Profile management
	Get(ctx context.Context, id string) (*models.ServiceProvider, error)
	GetByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error)
	Register(ctx context.Context, userID string, profile models.ProviderProfile) (*models.ServiceProvider, error)
	UpdateProfile(ctx context.Context, actor models.Actor, id string, patch models.ProviderPatch) (*models.ServiceProvider, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Repo     providerRepo.ProviderRepository
	Query    *query.Client
	Mock     mock.ProviderSource
	Notifier notification.Notifier
	Logger   *zap.Logger
}

func NewDefaultProviderService(
	repo providerRepo.ProviderRepository,
	queryClient *query.Client,
	source mock.ProviderSource,
	notifier notification.Notifier,
	logger *zap.Logger,
) (*DefaultProviderService, error) {
	if repo == nil || queryClient == nil || source == nil || notifier == nil {
		return nil, fmt.Errorf("provider service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultProviderService{
		Repo:     repo,
		Query:    queryClient,
		Mock:     source,
		Notifier: notifier,
		Logger:   logger,
	}, nil
}
