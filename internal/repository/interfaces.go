package repository

import (
	"context"
)

// Document is one stored record as the backend sees it: the JSON object the
// console sends and receives, keyed by its "id" field.
type Document map[string]interface{}

// ID returns the document's id, or "" when it has none.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// ListParams selects one page of a resource within a tenant.
type ListParams struct {
	Tenant   string
	Resource string
	Page     int
	Limit    int
	// Search is matched case-insensitively against SearchFields.
	Search       string
	SearchFields []string
	// Filters are exact matches on top-level fields.
	Filters map[string]string
	SortBy  string
	Desc    bool
}

type ListResult struct {
	Items []Document
	Total int
}

// UpdateFunc receives the stored document and returns the one to store.
type UpdateFunc func(current Document) (Document, error)

// All repository interfaces in one file
type (
	// RecordRepository stores documents per tenant and resource.
	RecordRepository interface {
		List(ctx context.Context, p ListParams) (*ListResult, error)
		Get(ctx context.Context, tenant, resource, id string) (Document, error)
		// FindBy returns the first document whose field equals value.
		FindBy(ctx context.Context, tenant, resource, field, value string) (Document, error)
		Create(ctx context.Context, tenant, resource string, doc Document) (Document, error)
		// Update reads, transforms and writes a document in one transaction.
		Update(ctx context.Context, tenant, resource, id string, fn UpdateFunc) (Document, error)
		// UpdateMany applies fn to every listed id in one transaction. A missing
		// id aborts the whole batch.
		UpdateMany(ctx context.Context, tenant, resource string, ids []string, fn UpdateFunc) ([]Document, error)
		Delete(ctx context.Context, tenant, resource, id string) error
		Count(ctx context.Context, tenant, resource string) (int, error)
		Ping(ctx context.Context) error
	}
)
