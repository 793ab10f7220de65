package role

import (
	"context"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/internal/service/options"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const (
	Path         = "/api/roles"
	optionsLimit = 200
)

// Service manages roles. The roles backend has no lookup by id, so edit pages
// find roles through the list.
type Service struct {
	*resource.Store[model.Role]
	options *options.Cache
}

func NewService(client httpclient.Doer, log *logger.Logger, m *metrics.Metrics) *Service {
	s := &Service{
		Store: resource.NewStore[model.Role](client, resource.Config[model.Role]{
			Name:      "roles",
			Path:      Path,
			Normalize: resource.Defaulted(resource.NormalizeEnvelope[model.Role], model.Role.WithDefaults),
			Metrics:   m,
		}, log),
	}
	s.options = options.New(options.DefaultTTL, func(ctx context.Context) ([]model.Option, error) {
		page, err := s.Lookup(ctx, resource.Query{Page: 1, Limit: optionsLimit})
		if err != nil {
			return nil, err
		}
		out := make([]model.Option, 0, len(page.Items))
		for _, r := range page.Items {
			out = append(out, r.Option())
		}
		return out, nil
	})
	return s
}

func (s *Service) Options(ctx context.Context) ([]model.Option, error) {
	return s.options.Get(ctx)
}

func (s *Service) Create(ctx context.Context, payload interface{}) (model.Role, error) {
	r, err := s.Store.Create(ctx, payload)
	if err == nil {
		s.options.Invalidate()
	}
	return r, err
}

func (s *Service) Update(ctx context.Context, id string, patch interface{}) (model.Role, error) {
	r, err := s.Store.Update(ctx, id, patch)
	if err == nil {
		s.options.Invalidate()
	}
	return r, err
}

func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := s.Store.Delete(ctx, id)
	if err == nil {
		s.options.Invalidate()
	}
	return deleted, err
}
