package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedSQLite "github.com/davicafu/medialist/internal/shared/infra/db/sqlite"
)

// SavedFilterRepoSQLite implementa SavedFilterRepository sobre SQLite.
type SavedFilterRepoSQLite struct {
	db *sql.DB
}

func NewSavedFilterRepoSQLite(db *sql.DB) *SavedFilterRepoSQLite {
	return &SavedFilterRepoSQLite{db: db}
}

// Verificación estática
var _ sfDomain.SavedFilterRepository = (*SavedFilterRepoSQLite)(nil)

// ---------------- CRUD ----------------

// Save inserta o actualiza el filtro y guarda el evento en la misma transacción.
func (r *SavedFilterRepoSQLite) Save(ctx context.Context, f *sfDomain.SavedFilter, evt sharedDomain.OutboxEvent) error {
	params, err := json.Marshal(f.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal filter params: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO saved_filters (id, mode, name, params, query, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     params = excluded.params,
		     query = excluded.query,
		     updated_at = excluded.updated_at`,
		f.ID, string(f.Mode), f.Name, string(params), f.Query, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if sharedSQLite.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", sfDomain.ErrSavedFilterAlreadyExists, f.Mode, f.Name)
		}
		return err
	}

	if err := sharedSQLite.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SavedFilterRepoSQLite) GetByID(ctx context.Context, id string) (*sfDomain.SavedFilter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, mode, name, params, query, created_at, updated_at
		 FROM saved_filters WHERE id = ?`, id)

	f, err := scanSavedFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sfDomain.ErrSavedFilterNotFound
	}
	return f, err
}

func (r *SavedFilterRepoSQLite) ListByMode(ctx context.Context, mode sfDomain.FilterMode) ([]*sfDomain.SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, mode, name, params, query, created_at, updated_at
		 FROM saved_filters WHERE mode = ? ORDER BY name, id`, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	filters := []*sfDomain.SavedFilter{}
	for rows.Next() {
		f, err := scanSavedFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func (r *SavedFilterRepoSQLite) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM saved_filters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sfDomain.ErrSavedFilterNotFound
	}

	if err := sharedSQLite.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// ---------------- Helpers ----------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedFilter(row rowScanner) (*sfDomain.SavedFilter, error) {
	var (
		f      sfDomain.SavedFilter
		mode   string
		params string
	)
	if err := row.Scan(&f.ID, &mode, &f.Name, &params, &f.Query, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Mode = sfDomain.FilterMode(mode)

	f.Params = url.Values{}
	if err := json.Unmarshal([]byte(params), &f.Params); err != nil {
		return nil, fmt.Errorf("invalid params for saved filter %s: %w", f.ID, err)
	}
	return &f, nil
}
