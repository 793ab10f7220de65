package document

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BaseRepository provides the transaction plumbing shared by repositories.
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx runs fn inside a transaction, committing only when fn succeeds.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// jsonField returns the SQL expression that reads a top-level text field out
// of the data column. field must already be validated.
func (r *BaseRepository) jsonField(field string) string {
	if r.db.DriverName() == DriverPostgres {
		return fmt.Sprintf("(data::jsonb ->> '%s')", field)
	}
	return fmt.Sprintf("CAST(json_extract(data, '$.%s') AS TEXT)", field)
}

// validField accepts plain identifiers only; field names end up inside SQL.
func validField(field string) bool {
	if field == "" || len(field) > 64 {
		return false
	}
	for i, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
