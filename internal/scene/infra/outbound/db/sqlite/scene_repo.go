package sqlite

import (
	"database/sql"

	"github.com/davicafu/medialist/internal/scene/infra/outbound/db/scenesql"
	"github.com/davicafu/medialist/internal/shared/infra/db/sqlbuilder"
	sharedSQLite "github.com/davicafu/medialist/internal/shared/infra/db/sqlite"
)

// SceneRepoSQLite implementa SceneRepository sobre SQLite (modernc, sin cgo).
type SceneRepoSQLite struct {
	*scenesql.Repo
}

func NewSceneRepoSQLite(db *sql.DB) *SceneRepoSQLite {
	return &SceneRepoSQLite{
		Repo: scenesql.NewRepo(db, sqlbuilder.SQLite, sharedSQLite.InsertOutboxTx, sharedSQLite.IsUniqueViolation),
	}
}
