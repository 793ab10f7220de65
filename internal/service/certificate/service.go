package certificate

import (
	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const Path = "/api/certificates"

type Service struct {
	*resource.Store[model.Certificate]
}

func NewService(client httpclient.Doer, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		Store: resource.NewStore[model.Certificate](client, resource.Config[model.Certificate]{
			Name:            "certificates",
			Path:            Path,
			Normalize:       resource.Defaulted(resource.NormalizeEnvelope[model.Certificate], model.Certificate.WithDefaults),
			SupportsGetByID: true,
			Metrics:         m,
		}, log),
	}
}
