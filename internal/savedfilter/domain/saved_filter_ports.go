package domain

import (
	"context"
	"errors"

	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
)

var (
	ErrSavedFilterNotFound      = errors.New("saved filter not found")
	ErrSavedFilterAlreadyExists = errors.New("saved filter already exists")
	ErrInvalidSavedFilter       = errors.New("invalid saved filter")
)

// SavedFilterRepository define la persistencia de filtros guardados. Cada
// escritura guarda su evento de outbox en la misma transacción.
type SavedFilterRepository interface {
	Save(ctx context.Context, f *SavedFilter, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id string) (*SavedFilter, error)
	ListByMode(ctx context.Context, mode FilterMode) ([]*SavedFilter, error)
	DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error
}

func SavedFilterCacheKeyByID(id string) string {
	return "saved_filter:id:" + id
}
