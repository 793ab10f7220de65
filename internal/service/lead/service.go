package lead

import (
	"context"
	"net/http"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const (
	Path       = "/api/leads"
	AssignPath = "/api/leads/assign"
)

// Filters offered on the lead list. assignedTo takes its values from the
// staff directory and is only shown to super admins.
var Filters = []resource.Filter{
	{Key: "status", Label: "Status", Options: model.LeadStatuses},
	{Key: "source", Label: "Source", Options: []string{"website", "referral", "ivr", "campaign"}},
	{Key: "assignedTo", Label: "Assigned to", SuperAdminOnly: true},
}

type AssignRequest struct {
	LeadIDs []string `json:"leadIds"`
	StaffID string   `json:"staffId"`
}

type Service struct {
	*resource.Store[model.Lead]
	logger *logger.Logger
}

func NewService(client httpclient.Doer, log *logger.Logger, m *metrics.Metrics) *Service {
	log = logger.OrNop(log)
	return &Service{
		Store: resource.NewStore[model.Lead](client, resource.Config[model.Lead]{
			Name:            "leads",
			Path:            Path,
			Normalize:       resource.Defaulted(resource.NormalizeEnvelope[model.Lead], model.Lead.WithDefaults),
			SupportsGetByID: true,
			Metrics:         m,
		}, log),
		logger: log,
	}
}

// Assign hands every lead in ids to staffID and mirrors the change in the
// cached list once the backend accepts it.
func (s *Service) Assign(ctx context.Context, ids []string, staffID string) error {
	if staffID == "" {
		return errors.NewValidation("staffId", "staffId is required")
	}
	if len(ids) == 0 {
		return errors.NewValidation("leadIds", "select at least one lead")
	}

	_, err := s.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   AssignPath,
		Body:   AssignRequest{LeadIDs: ids, StaffID: staffID},
	})
	if err != nil {
		return err
	}

	s.Apply(ids, func(l model.Lead) model.Lead {
		l.AssignedTo = staffID
		return l
	})
	s.logger.Info("leads assigned", "count", len(ids), "staff_id", staffID)
	return nil
}
