package document

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

type recordRepository struct {
	BaseRepository
	now func() time.Time
}

func NewRecordRepository(db *sqlx.DB) repository.RecordRepository {
	return &recordRepository{
		BaseRepository: NewBaseRepository(db),
		now:            time.Now,
	}
}

type row struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

func (r *recordRepository) List(ctx context.Context, p repository.ListParams) (*repository.ListResult, error) {
	where, args, err := r.where(p)
	if err != nil {
		return nil, err
	}

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM records WHERE " + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("count %s: %w", p.Resource, err)
	}

	order := "seq DESC"
	if p.SortBy != "" {
		if !validField(p.SortBy) {
			return nil, errors.NewBadRequest(fmt.Sprintf("cannot sort by %q", p.SortBy), nil)
		}
		dir := "ASC"
		if p.Desc {
			dir = "DESC"
		}
		order = fmt.Sprintf("%s %s, seq DESC", r.sortField(p.SortBy), dir)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}

	query := r.db.Rebind(fmt.Sprintf(
		"SELECT id, data FROM records WHERE %s ORDER BY %s LIMIT ? OFFSET ?", where, order))
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, append(args, limit, (page-1)*limit)...); err != nil {
		return nil, fmt.Errorf("list %s: %w", p.Resource, err)
	}

	items := make([]repository.Document, 0, len(rows))
	for _, rw := range rows {
		doc, err := decode(rw.Data)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	return &repository.ListResult{Items: items, Total: total}, nil
}

func (r *recordRepository) where(p repository.ListParams) (string, []interface{}, error) {
	clauses := []string{"tenant = ?", "resource = ?"}
	args := []interface{}{p.Tenant, p.Resource}

	if search := strings.TrimSpace(p.Search); search != "" && len(p.SearchFields) > 0 {
		var ors []string
		for _, f := range p.SearchFields {
			if !validField(f) {
				return "", nil, errors.NewBadRequest(fmt.Sprintf("cannot search %q", f), nil)
			}
			ors = append(ors, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE ?", r.jsonField(f)))
			args = append(args, "%"+strings.ToLower(search)+"%")
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	for _, key := range slices.Sorted(maps.Keys(p.Filters)) {
		if !validField(key) {
			return "", nil, errors.NewBadRequest(fmt.Sprintf("cannot filter by %q", key), nil)
		}
		clauses = append(clauses, r.jsonField(key)+" = ?")
		args = append(args, p.Filters[key])
	}

	return strings.Join(clauses, " AND "), args, nil
}

func (r *recordRepository) Get(ctx context.Context, tenant, resource, id string) (repository.Document, error) {
	return r.get(ctx, r.db, tenant, resource, id)
}

func (r *recordRepository) get(ctx context.Context, q sqlx.QueryerContext, tenant, resource, id string) (repository.Document, error) {
	var data string
	query := r.db.Rebind("SELECT data FROM records WHERE tenant = ? AND resource = ? AND id = ?")
	if err := sqlx.GetContext(ctx, q, &data, query, tenant, resource, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(singular(resource), err)
		}
		return nil, fmt.Errorf("get %s %s: %w", resource, id, err)
	}
	return decode(data)
}

func (r *recordRepository) FindBy(ctx context.Context, tenant, resource, field, value string) (repository.Document, error) {
	if !validField(field) {
		return nil, errors.NewBadRequest(fmt.Sprintf("cannot look up by %q", field), nil)
	}

	var data string
	query := r.db.Rebind(fmt.Sprintf(
		"SELECT data FROM records WHERE tenant = ? AND resource = ? AND LOWER(%s) = ? ORDER BY seq LIMIT 1",
		r.jsonField(field)))
	if err := r.db.GetContext(ctx, &data, query, tenant, resource, strings.ToLower(value)); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(singular(resource), err)
		}
		return nil, fmt.Errorf("find %s by %s: %w", resource, field, err)
	}
	return decode(data)
}

func (r *recordRepository) Create(ctx context.Context, tenant, resource string, doc repository.Document) (repository.Document, error) {
	out := clone(doc)
	if out.ID() == "" {
		out["id"] = uuid.NewString()
	}
	stamp := r.now().UTC().Format(time.RFC3339)
	out["createdAt"] = stamp
	out["updatedAt"] = stamp

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", resource, err)
	}

	query := r.db.Rebind("INSERT INTO records (tenant, resource, id, data) VALUES (?, ?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, tenant, resource, out.ID(), string(data)); err != nil {
		return nil, fmt.Errorf("create %s: %w", resource, err)
	}
	return out, nil
}

func (r *recordRepository) Update(ctx context.Context, tenant, resource, id string, fn repository.UpdateFunc) (repository.Document, error) {
	var updated repository.Document
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		doc, err := r.update(ctx, tx, tenant, resource, id, fn)
		updated = doc
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *recordRepository) UpdateMany(ctx context.Context, tenant, resource string, ids []string, fn repository.UpdateFunc) ([]repository.Document, error) {
	var updated []repository.Document
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range ids {
			doc, err := r.update(ctx, tx, tenant, resource, id, fn)
			if err != nil {
				return err
			}
			updated = append(updated, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *recordRepository) update(ctx context.Context, tx *sqlx.Tx, tenant, resource, id string, fn repository.UpdateFunc) (repository.Document, error) {
	current, err := r.get(ctx, tx, tenant, resource, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(clone(current))
	if err != nil {
		return nil, err
	}
	// id and createdAt belong to the store.
	next["id"] = id
	if created, ok := current["createdAt"]; ok {
		next["createdAt"] = created
	}
	next["updatedAt"] = r.now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", resource, err)
	}

	query := r.db.Rebind("UPDATE records SET data = ? WHERE tenant = ? AND resource = ? AND id = ?")
	if _, err := tx.ExecContext(ctx, query, string(data), tenant, resource, id); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", resource, id, err)
	}
	return next, nil
}

func (r *recordRepository) Delete(ctx context.Context, tenant, resource, id string) error {
	query := r.db.Rebind("DELETE FROM records WHERE tenant = ? AND resource = ? AND id = ?")
	res, err := r.db.ExecContext(ctx, query, tenant, resource, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", resource, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFound(singular(resource), nil)
	}
	return nil
}

func (r *recordRepository) Count(ctx context.Context, tenant, resource string) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM records WHERE tenant = ? AND resource = ?")
	if err := r.db.GetContext(ctx, &n, query, tenant, resource); err != nil {
		return 0, fmt.Errorf("count %s: %w", resource, err)
	}
	return n, nil
}

func (r *recordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// sortField keeps numbers numeric on SQLite so positions sort naturally.
func (r *recordRepository) sortField(field string) string {
	if r.db.DriverName() == DriverPostgres {
		return r.jsonField(field)
	}
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

func decode(data string) (repository.Document, error) {
	var doc repository.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return doc, nil
}

func clone(doc repository.Document) repository.Document {
	out := make(repository.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func singular(resource string) string {
	switch {
	case strings.HasSuffix(resource, "ies"):
		return strings.TrimSuffix(resource, "ies") + "y"
	case strings.HasSuffix(resource, "s"):
		return strings.TrimSuffix(resource, "s")
	}
	return resource
}
