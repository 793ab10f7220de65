package customer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/internal/handler"
	"github.com/jwalitptl/admin-console/internal/middleware"
	"github.com/jwalitptl/admin-console/internal/repository"
	customerservice "github.com/jwalitptl/admin-console/internal/service/customer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the customer spreadsheet export.
type Handler struct {
	repo repository.RecordRepository
}

func NewHandler(repo repository.RecordRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(customerservice.ExportPath, h.Export)
}

// Export sends one customer when userId is given and every customer of the
// tenant otherwise.
func (h *Handler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	tenant := middleware.GetTenant(c)

	var (
		customers []repository.Document
		filename  string
	)
	if id := c.Query("userId"); id != "" {
		doc, err := h.repo.Get(ctx, tenant, "customers", id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		customers = []repository.Document{doc}
		filename = fmt.Sprintf("customer-%s.xlsx", id)
	} else {
		for page := 1; ; page++ {
			res, err := h.repo.List(ctx, repository.ListParams{
				Tenant: tenant, Resource: "customers", Page: page, Limit: handler.MaxLimit,
			})
			if err != nil {
				_ = c.Error(err)
				return
			}
			customers = append(customers, res.Items...)
			if len(res.Items) < handler.MaxLimit || len(customers) >= res.Total {
				break
			}
		}
		filename = fmt.Sprintf("customers-%s.xlsx", tenant)
	}

	data, err := GenerateExport(customers)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
