package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
)

// FilterUsageRepo implementa FilterUsageRepository para ClickHouse.
type FilterUsageRepo struct {
	db *sql.DB
}

// NewFilterUsageRepo abre la conexión y comprueba que responde.
func NewFilterUsageRepo(addr string, dbName string) (*FilterUsageRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &FilterUsageRepo{db: conn}, nil
}

// LogBatch inserta un lote de consultas. ClickHouse funciona mejor con lotes.
func (r *FilterUsageRepo) LogBatch(ctx context.Context, usages []sceneDomain.FilterUsage) error {
	if len(usages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO filter_usage (query, criteria, sort, result_count, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, u := range usages {
		criteria := u.Criteria
		if criteria == nil {
			criteria = []string{}
		}
		if _, err := stmt.ExecContext(ctx, u.Query, criteria, u.Sort, uint32(u.ResultCount), u.At); err != nil {
			// Si un registro falla, se descarta el lote entero.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for query %q: %w", u.Query, err)
		}
	}

	return tx.Commit()
}

// TopCriteria devuelve los tipos de criterio más usados desde since.
func (r *FilterUsageRepo) TopCriteria(ctx context.Context, since time.Time, limit int) ([]sceneDomain.CriterionUsage, error) {
	query := `
		SELECT criterion, count() AS uses
		FROM filter_usage
		ARRAY JOIN criteria AS criterion
		WHERE event_time >= ?
		GROUP BY criterion
		ORDER BY uses DESC, criterion
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []sceneDomain.CriterionUsage{}
	for rows.Next() {
		var cu sceneDomain.CriterionUsage
		if err := rows.Scan(&cu.Criterion, &cu.Uses); err != nil {
			return nil, err
		}
		top = append(top, cu)
	}
	return top, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *FilterUsageRepo) InitSchema(ctx context.Context) error {
	// Particionada por mes y ordenada por instante de la consulta.
	query := `
		CREATE TABLE IF NOT EXISTS filter_usage (
			query        String,
			criteria     Array(String),
			sort         String,
			result_count UInt32,
			event_time   DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Verificación estática de la interfaz.
var _ sceneDomain.FilterUsageRepository = (*FilterUsageRepo)(nil)

// Close cierra la conexión con ClickHouse.
func (r *FilterUsageRepo) Close() error {
	return r.db.Close()
}
