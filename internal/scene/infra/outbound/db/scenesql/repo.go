// Package scenesql contiene las consultas de escenas comunes a SQLite y
// Postgres; cada adaptador aporta su dialecto y su inserción en outbox.
package scenesql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	"github.com/davicafu/medialist/internal/shared/infra/db/sqlbuilder"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
)

const selectColumns = `id, title, path, details, width, height, rating, o_counter, duration, organized, interactive, created_at`

// Columns son las columnas que los criterios y el orden pueden referenciar.
var Columns = []string{
	"id", "title", "path", "details", "width", "height", "rating",
	"o_counter", "duration", "organized", "interactive", "created_at",
}

// OutboxInserter guarda un evento dentro de la transacción del agregado.
type OutboxInserter func(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error

// Repo implementa sceneDomain.SceneRepository sobre database/sql.
type Repo struct {
	db                *sql.DB
	dialect           sqlbuilder.Dialect
	insertOutbox      OutboxInserter
	isUniqueViolation func(error) bool
}

func NewRepo(db *sql.DB, dialect sqlbuilder.Dialect, insertOutbox OutboxInserter, isUniqueViolation func(error) bool) *Repo {
	return &Repo{db: db, dialect: dialect, insertOutbox: insertOutbox, isUniqueViolation: isUniqueViolation}
}

// ------------------ Escritura + Outbox ------------------

// Create inserta la escena y su evento en una transacción.
func (r *Repo) Create(ctx context.Context, s *sceneDomain.Scene, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	b := sqlbuilder.New(r.dialect)
	query := fmt.Sprintf(
		`INSERT INTO scenes (%s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		selectColumns,
		b.Arg(s.ID), b.Arg(s.Title), b.Arg(s.Path), b.Arg(nullString(s.Details)), b.Arg(s.Width), b.Arg(s.Height),
		b.Arg(nullInt(s.Rating)), b.Arg(s.OCounter), b.Arg(s.Duration), b.Arg(s.Organized), b.Arg(s.Interactive), b.Arg(s.CreatedAt),
	)
	if _, err := tx.ExecContext(ctx, query, b.Args()...); err != nil {
		if r.isUniqueViolation != nil && r.isUniqueViolation(err) {
			return sceneDomain.ErrSceneAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	if err := r.insertOutbox(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// ------------------ Lectura ------------------

// GetByID recupera una escena por su ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*sceneDomain.Scene, error) {
	b := sqlbuilder.New(r.dialect)
	query := fmt.Sprintf(`SELECT %s FROM scenes WHERE id = %s`, selectColumns, b.Arg(id))

	s, err := scanScene(r.db.QueryRowContext(ctx, query, b.Args()...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sceneDomain.ErrSceneNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return s, nil
}

// GetByIDs devuelve las escenas en el orden de ids.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*sceneDomain.Scene, error) {
	if len(ids) == 0 {
		return []*sceneDomain.Scene{}, nil
	}

	b := sqlbuilder.New(r.dialect, Columns...)
	where, err := b.Where(sharedDomain.Criterion{Field: "id", Op: sharedDomain.OpIn, Value: ids})
	if err != nil {
		return nil, err
	}

	found, err := r.query(ctx, fmt.Sprintf(`SELECT %s FROM scenes WHERE %s`, selectColumns, where), b.Args())
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*sceneDomain.Scene, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	ordered := make([]*sceneDomain.Scene, 0, len(found))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// ListByCriteria aplica filtros, orden y paginación.
func (r *Repo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*sceneDomain.Scene, error) {
	b := sqlbuilder.New(r.dialect, Columns...)
	where, err := b.Where(criteria)
	if err != nil {
		return nil, err
	}
	order, err := b.OrderBy(sort, "id")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM scenes%s %s %s`, selectColumns, whereClause(where), order, b.LimitOffset(pagination))
	return r.query(ctx, query, b.Args())
}

// ListIDs devuelve los ids que cumplen criteria ordenados por id.
func (r *Repo) ListIDs(ctx context.Context, criteria sharedDomain.Criteria) ([]uuid.UUID, error) {
	b := sqlbuilder.New(r.dialect, Columns...)
	where, err := b.Where(criteria)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM scenes`+whereClause(where)+` ORDER BY id`, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count cuenta las escenas que cumplen criteria.
func (r *Repo) Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	b := sqlbuilder.New(r.dialect, Columns...)
	where, err := b.Where(criteria)
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenes`+whereClause(where), b.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ------------------ Helpers ------------------

func (r *Repo) query(ctx context.Context, query string, args []interface{}) ([]*sceneDomain.Scene, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	scenes := []*sceneDomain.Scene{}
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanScene(row scanner) (*sceneDomain.Scene, error) {
	var s sceneDomain.Scene
	var details sql.NullString
	var rating sql.NullInt64

	if err := row.Scan(
		&s.ID, &s.Title, &s.Path, &details, &s.Width, &s.Height, &rating,
		&s.OCounter, &s.Duration, &s.Organized, &s.Interactive, &s.CreatedAt,
	); err != nil {
		return nil, err
	}

	s.Details = details.String
	if rating.Valid {
		v := int(rating.Int64)
		s.Rating = &v
	}
	return &s, nil
}

func whereClause(where string) string {
	if where == "" {
		return ""
	}
	return " WHERE " + where
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// Verificación estática
var _ sceneDomain.SceneRepository = (*Repo)(nil)
