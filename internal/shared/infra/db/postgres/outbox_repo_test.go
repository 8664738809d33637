package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestOutboxRepoPostgres_FetchPendingOutbox(t *testing.T) {
	// Arrange
	db, mock := newMockDB(t)
	repo := NewOutboxRepoPostgres(db)

	id := uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "aggregate_type", "aggregate_id", "event_type", "payload", "created_at"}).
		AddRow(id.String(), "scene", "abc", "scene.created", []byte(`{"title":"x"}`), now)
	mock.ExpectQuery(`SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at\s+FROM outbox WHERE processed=false`).
		WithArgs(5).
		WillReturnRows(rows)

	// Act
	events, err := repo.FetchPendingOutbox(context.Background(), 5)

	// Assert
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, "scene.created", events[0].EventType)
	assert.Equal(t, map[string]interface{}{"title": "x"}, events[0].Payload)
}

func TestOutboxRepoPostgres_FetchPendingOutbox_BadPayload(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepoPostgres(db)

	rows := sqlmock.NewRows([]string{"id", "aggregate_type", "aggregate_id", "event_type", "payload", "created_at"}).
		AddRow(uuid.NewString(), "scene", "abc", "scene.created", []byte(`{`), time.Now())
	mock.ExpectQuery(`SELECT id`).WithArgs(5).WillReturnRows(rows)

	_, err := repo.FetchPendingOutbox(context.Background(), 5)

	assert.ErrorContains(t, err, "invalid JSON payload")
}

func TestOutboxRepoPostgres_MarkOutboxProcessed(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		execErr error
		wantErr string
	}{
		{name: "marcado", result: sqlmock.NewResult(0, 1)},
		{name: "no existe", result: sqlmock.NewResult(0, 0), wantErr: "outbox event not found"},
		{name: "error de db", execErr: errors.New("conn reset"), wantErr: "db error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewOutboxRepoPostgres(db)
			id := uuid.New()

			exp := mock.ExpectExec(`UPDATE outbox SET processed=true WHERE id=\$1`).WithArgs(id)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.MarkOutboxProcessed(context.Background(), id)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestInsertOutboxTx(t *testing.T) {
	db, mock := newMockDB(t)
	evt := sharedDomain.NewOutboxEvent("scene", "abc", "scene.created", map[string]string{"title": "x"})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO outbox`).
		WithArgs(evt.ID, "scene", "abc", "scene.created", []byte(`{"title":"x"}`), evt.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, InsertOutboxTx(context.Background(), tx, evt))
	require.NoError(t, tx.Commit())
}
