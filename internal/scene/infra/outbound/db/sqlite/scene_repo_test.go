package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedSQLite "github.com/davicafu/medialist/internal/shared/infra/db/sqlite"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sharedSQLite.Open(context.Background(), filepath.Join(t.TempDir(), "scenes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRepo(t *testing.T) *SceneRepoSQLite {
	t.Helper()
	return NewSceneRepoSQLite(newTestDB(t))
}

func seedScene(t *testing.T, repo *SceneRepoSQLite, title, path string, height int, rating *int, organized bool) *sceneDomain.Scene {
	t.Helper()
	s, err := sceneDomain.NewScene(title, path, height*16/9, height)
	require.NoError(t, err)
	s.Rating = rating
	s.Organized = organized
	evt := sharedDomain.NewOutboxEvent("scene", s.ID.String(), "scene.created", s)
	require.NoError(t, repo.Create(context.Background(), s, evt))
	return s
}

func intPtr(v int) *int { return &v }

func TestSceneRepoSQLite_CreateAndGet(t *testing.T) {
	// Arrange
	repo := newTestRepo(t)
	created := seedScene(t, repo, "Playa", "/media/playa.mp4", 1080, intPtr(80), true)

	// Act
	got, err := repo.GetByID(context.Background(), created.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Playa", got.Title)
	assert.Equal(t, 1080, got.Height)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 80, *got.Rating)
	assert.True(t, got.Organized)
	assert.Empty(t, got.Details)
}

func TestSceneRepoSQLite_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, sceneDomain.ErrSceneNotFound)
}

func TestSceneRepoSQLite_Create_DuplicatePath(t *testing.T) {
	repo := newTestRepo(t)
	seedScene(t, repo, "A", "/media/a.mp4", 720, nil, false)

	dup, err := sceneDomain.NewScene("B", "/media/a.mp4", 0, 0)
	require.NoError(t, err)
	err = repo.Create(context.Background(), dup, sharedDomain.NewOutboxEvent("scene", dup.ID.String(), "scene.created", dup))

	assert.ErrorIs(t, err, sceneDomain.ErrSceneAlreadyExists)
}

func TestSceneRepoSQLite_ListByCriteria(t *testing.T) {
	// Arrange
	repo := newTestRepo(t)
	ctx := context.Background()
	seedScene(t, repo, "Beach day", "/media/1.mp4", 1080, intPtr(90), true)
	seedScene(t, repo, "City night", "/media/beach/2.mp4", 1080, intPtr(40), false)
	seedScene(t, repo, "Forest", "/media/3.mp4", 2160, nil, true)
	seedScene(t, repo, "Old beach", "/media/4.mp4", 480, intPtr(70), true)

	tests := []struct {
		name   string
		find   lf.FindFilter
		attrs  lf.AttributeFilter
		sort   sharedQuery.Sort
		titles []string
	}{
		{
			name:   "búsqueda en título o ruta sin distinguir mayúsculas",
			find:   lf.FindFilter{Q: "BEACH"},
			sort:   sharedQuery.Sort{Field: "title"},
			titles: []string{"Beach day", "City night", "Old beach"},
		},
		{
			name:   "resolución",
			attrs:  lf.AttributeFilter{"resolution": lf.ResolutionFullHD},
			sort:   sharedQuery.Sort{Field: "rating", Desc: true},
			titles: []string{"Beach day", "City night"},
		},
		{
			name:   "rating sin puntuar",
			attrs:  lf.AttributeFilter{"rating": lf.IntCriterionInput{Modifier: lf.ModifierIsNull}},
			sort:   sharedQuery.Sort{Field: "title"},
			titles: []string{"Forest"},
		},
		{
			name: "combinado con booleano",
			find: lf.FindFilter{Q: "beach"},
			attrs: lf.AttributeFilter{
				"organized": true,
				"rating":    lf.IntCriterionInput{Value: 60, Modifier: lf.ModifierGreaterThan},
			},
			sort:   sharedQuery.Sort{Field: "title"},
			titles: []string{"Beach day", "Old beach"},
		},
		{
			name:   "detalles vacíos cuentan como nulos",
			attrs:  lf.AttributeFilter{"details": lf.StringCriterionInput{Modifier: lf.ModifierIsNull}},
			sort:   sharedQuery.Sort{Field: "title"},
			titles: []string{"Beach day", "City night", "Forest", "Old beach"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria, skipped := sceneDomain.CriteriaFromFilter(tt.find, tt.attrs)
			require.Empty(t, skipped)

			// Act
			scenes, err := repo.ListByCriteria(ctx, criteria, sharedQuery.NewPagePagination(1, 40), tt.sort)
			count, countErr := repo.Count(ctx, criteria)

			// Assert
			require.NoError(t, err)
			require.NoError(t, countErr)
			titles := make([]string, len(scenes))
			for i, s := range scenes {
				titles[i] = s.Title
			}
			assert.Equal(t, tt.titles, titles)
			assert.Equal(t, len(tt.titles), count)
		})
	}
}

func TestSceneRepoSQLite_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		seedScene(t, repo, title, "/media/"+title, 720, nil, false)
	}

	page, err := repo.ListByCriteria(ctx, sharedDomain.And(), sharedQuery.NewPagePagination(2, 2), sharedQuery.Sort{Field: "title"})

	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Title)
	assert.Equal(t, "d", page[1].Title)
}

func TestSceneRepoSQLite_ListIDsAndGetByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedScene(t, repo, "a", "/a", 720, nil, false)
	b := seedScene(t, repo, "b", "/b", 720, nil, false)
	seedScene(t, repo, "c", "/c", 2160, nil, false)

	criteria, _ := sceneDomain.CriteriaFromFilter(lf.FindFilter{}, lf.AttributeFilter{"resolution": lf.ResolutionStandardHD})
	ids, err := repo.ListIDs(ctx, criteria)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)
	assert.True(t, ids[0].String() < ids[1].String(), "los ids deberían venir ordenados")

	scenes, err := repo.GetByIDs(ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, b.ID, scenes[0].ID)
	assert.Equal(t, a.ID, scenes[1].ID)
}

func TestSceneRepoSQLite_CreateWritesOutbox(t *testing.T) {
	db := newTestDB(t)
	repo := NewSceneRepoSQLite(db)
	s := seedScene(t, repo, "a", "/a", 720, nil, false)

	pending, err := sharedSQLite.NewOutboxRepoSQLite(db).FetchPendingOutbox(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, s.ID.String(), pending[0].AggregateID)
	assert.Equal(t, "scene.created", pending[0].EventType)
}

func TestSceneRepoSQLite_SearchMatchesWildcardsLiterally(t *testing.T) {
	// Arrange
	repo := newTestRepo(t)
	seedScene(t, repo, "50% off", "/media/rebajas.mp4", 720, nil, false)
	seedScene(t, repo, "500 days", "/media/dias.mp4", 720, nil, false)
	seedScene(t, repo, "a_b", "/media/ab.mp4", 720, nil, false)
	seedScene(t, repo, "axb", "/media/axb.mp4", 720, nil, false)
	seedScene(t, repo, `c:\videos`, "/media/win.mp4", 720, nil, false)

	cases := map[string][]string{
		"50%":  {"50% off"},
		"a_b":  {"a_b"},
		`c:\v`: {`c:\videos`},
	}
	for q, want := range cases {
		t.Run(q, func(t *testing.T) {
			// Act
			scenes, err := repo.ListByCriteria(context.Background(), sceneDomain.SearchCriteria(q),
				sharedQuery.NewPagePagination(1, 10), sharedQuery.Sort{Field: "title"})

			// Assert
			require.NoError(t, err)
			var titles []string
			for _, s := range scenes {
				titles = append(titles, s.Title)
			}
			assert.Equal(t, want, titles)
		})
	}
}
