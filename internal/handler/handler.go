package handler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

// Handler registers a group of routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

const (
	DefaultLimit = 10
	MaxLimit     = 500
)

// ListQuery is the paging part of a list request.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	SortBy string
	Desc   bool
}

// ParseListQuery reads page, limit, search, sortBy and sortOrder. Missing
// values take defaults; malformed numbers are rejected.
func ParseListQuery(c *gin.Context) (ListQuery, error) {
	q := ListQuery{Page: 1, Limit: DefaultLimit}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, errors.NewBadRequest(fmt.Sprintf("invalid page %q", v), err)
		}
		q.Page = page
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return q, errors.NewBadRequest(fmt.Sprintf("invalid limit %q", v), err)
		}
		q.Limit = min(limit, MaxLimit)
	}

	q.Search = strings.TrimSpace(c.Query("search"))
	q.SortBy = c.Query("sortBy")
	q.Desc = strings.EqualFold(c.Query("sortOrder"), "desc")
	return q, nil
}

// BindDocument decodes a JSON object body.
func BindDocument(c *gin.Context) (repository.Document, error) {
	var doc repository.Document
	if err := json.NewDecoder(c.Request.Body).Decode(&doc); err != nil {
		return nil, errors.NewBadRequest("request body must be a JSON object", err)
	}
	if doc == nil {
		return nil, errors.NewBadRequest("request body must be a JSON object", nil)
	}
	return doc, nil
}

// Invalid turns a form validation failure into a 400 the client can show.
func Invalid(err error) error {
	if appErr, ok := errors.As(err); ok && appErr.Code == errors.ErrValidation {
		return errors.NewBadRequest(appErr.Message, appErr)
	}
	return err
}
