package lead

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/internal/middleware"
	"github.com/jwalitptl/admin-console/internal/repository"
	leadservice "github.com/jwalitptl/admin-console/internal/service/lead"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
)

// Handler serves bulk lead assignment.
type Handler struct {
	repo repository.RecordRepository
}

func NewHandler(repo repository.RecordRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST(leadservice.AssignPath, h.Assign)
}

// Assign sets assignedTo on every listed lead, all or nothing.
func (h *Handler) Assign(c *gin.Context) {
	var req leadservice.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewBadRequest("invalid assign request", err))
		return
	}
	if req.StaffID == "" {
		_ = c.Error(errors.NewBadRequest("staffId is required", nil))
		return
	}
	if len(req.LeadIDs) == 0 {
		_ = c.Error(errors.NewBadRequest("leadIds must not be empty", nil))
		return
	}

	ctx := c.Request.Context()
	tenant := middleware.GetTenant(c)

	if _, err := h.repo.Get(ctx, tenant, "staff", req.StaffID); err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.repo.UpdateMany(ctx, tenant, "leads", req.LeadIDs,
		func(doc repository.Document) (repository.Document, error) {
			doc["assignedTo"] = req.StaffID
			return doc, nil
		})
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondMessage(c, http.StatusOK, "Leads assigned successfully", gin.H{
		"assigned": len(updated),
		"staffId":  req.StaffID,
	})
}
