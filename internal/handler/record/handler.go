package record

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/internal/handler"
	"github.com/jwalitptl/admin-console/internal/middleware"
	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
)

// Handler serves one collection: list, get, create, merge-update and delete.
type Handler struct {
	repo      repository.RecordRepository
	res       Resource
	adminOnly gin.HandlerFunc
}

// NewHandler wires res to repo. adminOnly guards writes on AdminWrites
// collections; nil leaves them open.
func NewHandler(repo repository.RecordRepository, res Resource, adminOnly gin.HandlerFunc) *Handler {
	if adminOnly == nil || !res.AdminWrites {
		adminOnly = func(c *gin.Context) { c.Next() }
	}
	return &Handler{repo: repo, res: res, adminOnly: adminOnly}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group(h.res.Path)
	{
		g.GET("", h.List)
		if !h.res.NoGetByID {
			g.GET("/:id", h.Get)
		}
		if !h.res.ReadOnly {
			g.POST("", h.adminOnly, h.Create)
			g.PUT("/:id", h.adminOnly, h.Update)
			g.DELETE("/:id", h.adminOnly, h.Delete)
		}
	}
}

func (h *Handler) List(c *gin.Context) {
	q, err := handler.ParseListQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.res.allowsSort(q.SortBy) {
		_ = c.Error(errors.NewBadRequest("unsupported sortBy "+q.SortBy, nil))
		return
	}

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if h.res.allowsFilter(key) && len(values) > 0 && values[0] != "" {
			filters[key] = values[0]
		}
	}

	result, err := h.repo.List(c.Request.Context(), repository.ListParams{
		Tenant:       middleware.GetTenant(c),
		Resource:     h.res.Name,
		Page:         q.Page,
		Limit:        q.Limit,
		Search:       q.Search,
		SearchFields: h.res.SearchFields,
		Filters:      filters,
		SortBy:       q.SortBy,
		Desc:         q.Desc,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	items := make([]repository.Document, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, h.visible(doc))
	}
	httputil.RespondList(c, h.res.Envelope, items, q.Page, q.Limit, result.Total, !h.res.OmitTotalPages)
}

func (h *Handler) Get(c *gin.Context) {
	doc, err := h.repo.Get(c.Request.Context(), middleware.GetTenant(c), h.res.Name, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondRecord(c, http.StatusOK, h.visible(doc))
}

func (h *Handler) Create(c *gin.Context) {
	body, err := handler.BindDocument(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	delete(body, "id")
	h.strip(body)

	doc, err := h.res.Prepare(body, true)
	if err != nil {
		_ = c.Error(err)
		return
	}

	created, err := h.repo.Create(c.Request.Context(), middleware.GetTenant(c), h.res.Name, doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondRecord(c, http.StatusCreated, h.visible(created))
}

// Update merges the body into the stored record: present keys replace, null
// keys are removed, absent keys are kept.
func (h *Handler) Update(c *gin.Context) {
	patch, err := handler.BindDocument(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.strip(patch)

	updated, err := h.repo.Update(c.Request.Context(), middleware.GetTenant(c), h.res.Name, c.Param("id"),
		func(current repository.Document) (repository.Document, error) {
			return h.res.Prepare(Merge(current, patch), false)
		})
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondRecord(c, http.StatusOK, h.visible(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), middleware.GetTenant(c), h.res.Name, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondMessage(c, http.StatusOK, "Deleted successfully", nil)
}

// Merge applies a JSON merge patch one level deep.
func Merge(current, patch repository.Document) repository.Document {
	out := make(repository.Document, len(current)+len(patch))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func (h *Handler) visible(doc repository.Document) repository.Document {
	if len(h.res.Hidden) == 0 {
		return doc
	}
	out := make(repository.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, k := range h.res.Hidden {
		delete(out, k)
	}
	return out
}

func (h *Handler) strip(body repository.Document) {
	for _, k := range h.res.Protected {
		delete(body, k)
	}
}
