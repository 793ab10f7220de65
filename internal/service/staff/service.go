package staff

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
	Path = "/api/staff"
	// optionsLimit is large enough to list every staff member of a tenant.
	optionsLimit = 500
)

var Filters = []resource.Filter{
	{Key: "status", Label: "Status", Options: []string{"active", "inactive"}},
	{Key: "roleId", Label: "Role"},
}

type Service struct {
	*resource.Store[model.Staff]
	options *options.Cache
}

func NewService(client httpclient.Doer, log *logger.Logger, m *metrics.Metrics) *Service {
	s := &Service{
		Store: resource.NewStore[model.Staff](client, resource.Config[model.Staff]{
			Name:            "staff",
			Path:            Path,
			Normalize:       resource.Defaulted(resource.NormalizeEnvelope[model.Staff], model.Staff.WithDefaults),
			SupportsGetByID: true,
			Metrics:         m,
		}, log),
	}
	s.options = options.New(options.DefaultTTL, s.loadOptions)
	return s
}

// Options lists every staff member as an assignment target.
func (s *Service) Options(ctx context.Context) ([]model.Option, error) {
	return s.options.Get(ctx)
}

func (s *Service) loadOptions(ctx context.Context) ([]model.Option, error) {
	page, err := s.Lookup(ctx, resource.Query{Page: 1, Limit: optionsLimit, SortBy: "name", SortOrder: resource.SortAsc})
	if err != nil {
		return nil, err
	}
	out := make([]model.Option, 0, len(page.Items))
	for _, st := range page.Items {
		out = append(out, st.Option())
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, payload interface{}) (model.Staff, error) {
	st, err := s.Store.Create(ctx, payload)
	if err == nil {
		s.options.Invalidate()
	}
	return st, err
}

func (s *Service) Update(ctx context.Context, id string, patch interface{}) (model.Staff, error) {
	st, err := s.Store.Update(ctx, id, patch)
	if err == nil {
		s.options.Invalidate()
	}
	return st, err
}

func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := s.Store.Delete(ctx, id)
	if err == nil {
		s.options.Invalidate()
	}
	return deleted, err
}
