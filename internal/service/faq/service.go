package faq

import (
	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const Path = "/api/faqs"

var Filters = []resource.Filter{
	{Key: "category", Label: "Category", Options: []string{"general", "orders", "shipping", "returns", "payments"}},
}

type Service struct {
	*resource.Store[model.FAQ]
}

func NewService(client httpclient.Doer, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		Store: resource.NewStore[model.FAQ](client, resource.Config[model.FAQ]{
			Name:            "faqs",
			Path:            Path,
			Normalize:       resource.Defaulted(resource.NormalizeEnvelope[model.FAQ], model.FAQ.WithDefaults),
			SupportsGetByID: true,
			Metrics:         m,
		}, log),
	}
}
