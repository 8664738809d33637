package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/davicafu/medialist/internal/scene/infra/outbound/db/scenesql"
	sharedPostgres "github.com/davicafu/medialist/internal/shared/infra/db/postgres"
	"github.com/davicafu/medialist/internal/shared/infra/db/sqlbuilder"
)

// uniqueViolation es el SQLSTATE de Postgres para claves duplicadas.
const uniqueViolation = "23505"

// SceneRepoPostgres implementa SceneRepository para PostgreSQL.
type SceneRepoPostgres struct {
	*scenesql.Repo
}

func NewSceneRepoPostgres(db *sql.DB) *SceneRepoPostgres {
	return &SceneRepoPostgres{
		Repo: scenesql.NewRepo(db, sqlbuilder.Postgres, sharedPostgres.InsertOutboxTx, isUniqueViolation),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
