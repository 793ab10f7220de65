package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/errors"
)

// EnvelopeStyle selects how a list response is shaped. Older endpoints nest
// the page under data; newer ones answer with a flat object.
type EnvelopeStyle int

const (
	FlatEnvelope EnvelopeStyle = iota
	LegacyEnvelope
)

// Response wraps single-record and error responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// FlatPage is the {items, total, page, totalPages} list envelope.
type FlatPage struct {
	Items      interface{} `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages *int        `json:"totalPages,omitempty"`
}

// LegacyPage is the body of {data: {result, totalDocuments, currentPage, totalPages}}.
type LegacyPage struct {
	Result         interface{} `json:"result"`
	TotalDocuments int         `json:"totalDocuments"`
	CurrentPage    int         `json:"currentPage"`
	TotalPages     *int        `json:"totalPages,omitempty"`
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// RespondRecord sends a single record wrapped in {success, data}.
func RespondRecord(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondMessage sends a success response carrying only a message.
func RespondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError sends an error response
func RespondError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	if appErr, ok := errors.As(err); ok {
		if appErr.Status != 0 {
			statusCode = appErr.Status
		}
		message = appErr.Message
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Message: message,
	})
}

// RespondList sends one page of items in the requested envelope style.
// includeTotalPages=false omits totalPages so clients must derive it.
func RespondList(c *gin.Context, style EnvelopeStyle, items interface{}, page, limit, total int, includeTotalPages bool) {
	var totalPages *int
	if includeTotalPages {
		tp := TotalPages(total, limit)
		totalPages = &tp
	}

	if style == LegacyEnvelope {
		c.JSON(http.StatusOK, gin.H{
			"data": LegacyPage{
				Result:         items,
				TotalDocuments: total,
				CurrentPage:    page,
				TotalPages:     totalPages,
			},
		})
		return
	}

	c.JSON(http.StatusOK, FlatPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}
