package document

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/config"
	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

func newTestRepository(t *testing.T) repository.RecordRepository {
	t.Helper()
	db, err := NewDB(context.Background(), config.DatabaseConfig{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRecordRepository(db)
}

func seedCustomers(t *testing.T, repo repository.RecordRepository, tenant string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := repo.Create(context.Background(), tenant, "customers", repository.Document{
			"name":   fmt.Sprintf("Customer %02d", i),
			"email":  fmt.Sprintf("c%02d@example.com", i),
			"status": map[bool]string{true: "active", false: "inactive"}[i%2 == 0],
		})
		require.NoError(t, err)
	}
}

func TestListPagesNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	seedCustomers(t, repo, "acme", 23)

	res, err := repo.List(context.Background(), repository.ListParams{
		Tenant: "acme", Resource: "customers", Page: 3, Limit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 23, res.Total)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Customer 03", res.Items[0]["name"])
	assert.Equal(t, "Customer 01", res.Items[2]["name"])
}

func TestListIsTenantScoped(t *testing.T) {
	repo := newTestRepository(t)
	seedCustomers(t, repo, "acme", 3)
	seedCustomers(t, repo, "beta", 2)

	res, err := repo.List(context.Background(), repository.ListParams{Tenant: "beta", Resource: "customers", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	n, err := repo.Count(context.Background(), "acme", "customers")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListSearchFilterAndSort(t *testing.T) {
	repo := newTestRepository(t)
	seedCustomers(t, repo, "acme", 12)

	res, err := repo.List(context.Background(), repository.ListParams{
		Tenant:       "acme",
		Resource:     "customers",
		Limit:        10,
		Search:       "  CUSTOMER 1 ",
		SearchFields: []string{"name", "email"},
		Filters:      map[string]string{"status": "active"},
		SortBy:       "name",
	})
	require.NoError(t, err)

	// Customer 10 and 12 are the even ones matching "customer 1".
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Customer 10", res.Items[0]["name"])
	assert.Equal(t, "Customer 12", res.Items[1]["name"])
}

func TestListRejectsUnsafeFields(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.List(context.Background(), repository.ListParams{
		Tenant: "acme", Resource: "customers", SortBy: "name'); DROP TABLE records;--",
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = repo.List(context.Background(), repository.ListParams{
		Tenant: "acme", Resource: "customers", Filters: map[string]string{"a b": "x"},
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestCreateGetUpdateDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "acme", "leads", repository.Document{"name": "Ada"})
	require.NoError(t, err)
	id := created.ID()
	require.NotEmpty(t, id)
	assert.NotEmpty(t, created["createdAt"])

	updated, err := repo.Update(ctx, "acme", "leads", id, func(doc repository.Document) (repository.Document, error) {
		doc["status"] = "contacted"
		doc["id"] = "hijacked"
		return doc, nil
	})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID())
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	got, err := repo.Get(ctx, "acme", "leads", id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, "contacted", got["status"])

	require.NoError(t, repo.Delete(ctx, "acme", "leads", id))

	_, err = repo.Get(ctx, "acme", "leads", id)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, "acme", "leads", id), errors.ErrNotFound))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	doc, err := repo.Create(ctx, "acme", "leads", repository.Document{"name": "Ada", "status": "new"})
	require.NoError(t, err)

	_, err = repo.UpdateMany(ctx, "acme", "leads", []string{doc.ID(), "missing"},
		func(d repository.Document) (repository.Document, error) {
			d["assignedTo"] = "s1"
			return d, nil
		})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	got, err := repo.Get(ctx, "acme", "leads", doc.ID())
	require.NoError(t, err)
	assert.NotContains(t, got, "assignedTo")
}

func TestFindByIsCaseInsensitive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "acme", "staff", repository.Document{"name": "Grace", "email": "Grace@Example.com"})
	require.NoError(t, err)

	got, err := repo.FindBy(ctx, "acme", "staff", "email", "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Grace", got["name"])

	_, err = repo.FindBy(ctx, "beta", "staff", "email", "grace@example.com")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestValidField(t *testing.T) {
	assert.True(t, validField("assignedTo"))
	assert.True(t, validField("field_2"))
	assert.False(t, validField("2field"))
	assert.False(t, validField("a.b"))
	assert.False(t, validField(""))
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
