// Package calllog lists IVR calls. Calls are recorded by the telephony
// provider, so the console never creates, edits or deletes them.
package calllog

import (
	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const Path = "/api/ivr/call-logs"

var Filters = []resource.Filter{
	{Key: "direction", Label: "Direction", Options: []string{model.CallInbound, model.CallOutbound}},
	{Key: "status", Label: "Status", Options: []string{"completed", "missed", "voicemail"}},
}

type Service struct {
	*resource.Store[model.CallLog]
}

func NewService(client httpclient.Doer, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		Store: resource.NewStore[model.CallLog](client, resource.Config[model.CallLog]{
			Name:      "call-logs",
			Path:      Path,
			Normalize: resource.Defaulted(resource.NormalizeEnvelope[model.CallLog], model.CallLog.WithDefaults),
			ReadOnly:  true,
			Metrics:   m,
		}, log),
	}
}
