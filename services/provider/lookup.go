package provider

import (
	"context"
	"strings"

	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// LookupProviders resolves the provider list for location. Live rows always
// win, whatever location says. When the store is empty or failing the mock
// source fills in: scoped to location when one is given, unscoped otherwise.
// Store errors are swallowed; a mock failure is returned as
// FallbackExhaustedError.
func (s *DefaultProviderService) LookupProviders(ctx context.Context, location string) (*LookupResult, error) {
	location = strings.TrimSpace(location)
	logger := s.Logger.With(zap.String("location", location))

	providers, err := query.Fetch(ctx, s.Query, query.NewKey(Entity, location), s.Repo.ListProviders)
	switch {
	case err != nil:
		logger.Warn("provider store unavailable, falling back to mock providers", zap.Error(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	case len(providers) > 0:
		return &LookupResult{Providers: providers, Source: SourceRemote}, nil
	default:
		logger.Info("provider store is empty, falling back to mock providers")
	}

	fallback, err := s.Mock.GetServiceProviders(ctx, location)
	if err != nil {
		exhausted := &FallbackExhaustedError{Location: location, Err: err}
		logger.Error("mock provider fallback failed", zap.Error(err))
		s.Notifier.Notify(ctx, notification.FromError("load service providers", exhausted))
		return nil, exhausted
	}
	if fallback == nil {
		fallback = []models.ServiceProvider{}
	}
	return &LookupResult{Providers: fallback, Source: SourceMock}, nil
}
