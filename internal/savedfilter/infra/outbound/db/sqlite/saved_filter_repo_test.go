package sqlite

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedSQLite "github.com/davicafu/medialist/internal/shared/infra/db/sqlite"
)

func newTestRepo(t *testing.T) (*SavedFilterRepoSQLite, *sharedSQLite.OutboxRepoSQLite) {
	t.Helper()
	db, err := sharedSQLite.Open(context.Background(), filepath.Join(t.TempDir(), "filters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSavedFilterRepoSQLite(db), sharedSQLite.NewOutboxRepoSQLite(db)
}

func savedEvent(f *sfDomain.SavedFilter) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(sfDomain.SavedFilterAggregateType, f.ID, sfDomain.SavedFilterSaved,
		sfDomain.SavedFilterSavedEvent{ID: f.ID, Mode: f.Mode, Name: f.Name, Query: f.Query})
}

func newFilter(t *testing.T, mode sfDomain.FilterMode, name string, params url.Values) *sfDomain.SavedFilter {
	t.Helper()
	f, err := sfDomain.NewSavedFilter(mode, name, params, params.Encode())
	require.NoError(t, err)
	return f
}

func TestSavedFilterRepoSQLite_SaveAndGet(t *testing.T) {
	// Arrange
	repo, outbox := newTestRepo(t)
	params := url.Values{"c": {`{"type":"resolution","value":"4k"}`}, "q": {"playa"}}
	f := newFilter(t, sfDomain.ModeScenes, "playas", params)

	// Act
	require.NoError(t, repo.Save(context.Background(), f, savedEvent(f)))
	got, err := repo.GetByID(context.Background(), f.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, sfDomain.ModeScenes, got.Mode)
	assert.Equal(t, params, got.Params)
	assert.Equal(t, f.Query, got.Query)

	pending, err := outbox.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, sfDomain.SavedFilterSaved, pending[0].EventType)
	assert.Equal(t, f.ID, pending[0].AggregateID)
}

func TestSavedFilterRepoSQLite_SaveUpdatesExisting(t *testing.T) {
	repo, _ := newTestRepo(t)
	f := newFilter(t, sfDomain.ModeScenes, "playas", url.Values{"q": {"uno"}})
	require.NoError(t, repo.Save(context.Background(), f, savedEvent(f)))

	f.Replace(url.Values{"q": {"dos"}}, "q=dos")
	require.NoError(t, repo.Save(context.Background(), f, savedEvent(f)))

	got, err := repo.GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "q=dos", got.Query)
	assert.Equal(t, []string{"dos"}, got.Params["q"])
}

func TestSavedFilterRepoSQLite_DuplicatedName(t *testing.T) {
	repo, outbox := newTestRepo(t)
	a := newFilter(t, sfDomain.ModeScenes, "playas", url.Values{})
	b := newFilter(t, sfDomain.ModeScenes, "playas", url.Values{})
	require.NoError(t, repo.Save(context.Background(), a, savedEvent(a)))

	err := repo.Save(context.Background(), b, savedEvent(b))

	assert.ErrorIs(t, err, sfDomain.ErrSavedFilterAlreadyExists)
	pending, err := outbox.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "la transacción fallida no deja evento")
}

func TestSavedFilterRepoSQLite_ListByMode(t *testing.T) {
	repo, _ := newTestRepo(t)
	for _, f := range []*sfDomain.SavedFilter{
		newFilter(t, sfDomain.ModeScenes, "zeta", url.Values{}),
		newFilter(t, sfDomain.ModeScenes, "alfa", url.Values{}),
		newFilter(t, sfDomain.ModeTags, "beta", url.Values{}),
	} {
		require.NoError(t, repo.Save(context.Background(), f, savedEvent(f)))
	}

	scenes, err := repo.ListByMode(context.Background(), sfDomain.ModeScenes)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "alfa", scenes[0].Name)
	assert.Equal(t, "zeta", scenes[1].Name)

	movies, err := repo.ListByMode(context.Background(), sfDomain.ModeMovies)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestSavedFilterRepoSQLite_Delete(t *testing.T) {
	repo, outbox := newTestRepo(t)
	f := newFilter(t, sfDomain.ModeScenes, "playas", url.Values{})
	require.NoError(t, repo.Save(context.Background(), f, savedEvent(f)))
	deleted := sharedDomain.NewOutboxEvent(sfDomain.SavedFilterAggregateType, f.ID, sfDomain.SavedFilterDeleted,
		sfDomain.SavedFilterDeletedEvent{ID: f.ID, Mode: f.Mode})

	require.NoError(t, repo.DeleteByID(context.Background(), f.ID, deleted))

	_, err := repo.GetByID(context.Background(), f.ID)
	assert.ErrorIs(t, err, sfDomain.ErrSavedFilterNotFound)
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), f.ID, deleted), sfDomain.ErrSavedFilterNotFound)

	pending, err := outbox.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
