package mocks

import (
	"context"
	"sort"
	"sync"

	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
)

// InMemorySavedFilterRepo simula SavedFilterRepository con outbox incluido.
// Si Err no es nil, todas las operaciones lo devuelven.
type InMemorySavedFilterRepo struct {
	Filters map[string]*sfDomain.SavedFilter
	Outbox  []sharedDomain.OutboxEvent
	Calls   map[string]int
	Err     error
	mu      sync.Mutex
}

func NewInMemorySavedFilterRepo() *InMemorySavedFilterRepo {
	return &InMemorySavedFilterRepo{
		Filters: make(map[string]*sfDomain.SavedFilter),
		Calls:   make(map[string]int),
	}
}

// CallCount devuelve cuántas veces se llamó a method.
func (r *InMemorySavedFilterRepo) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Calls[method]
}

func (r *InMemorySavedFilterRepo) Save(ctx context.Context, f *sfDomain.SavedFilter, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Save"]++
	if r.Err != nil {
		return r.Err
	}
	for _, other := range r.Filters {
		if other.ID != f.ID && other.Mode == f.Mode && other.Name == f.Name {
			return sfDomain.ErrSavedFilterAlreadyExists
		}
	}
	cp := *f
	r.Filters[f.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemorySavedFilterRepo) GetByID(ctx context.Context, id string) (*sfDomain.SavedFilter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["GetByID"]++
	if r.Err != nil {
		return nil, r.Err
	}
	f, ok := r.Filters[id]
	if !ok {
		return nil, sfDomain.ErrSavedFilterNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *InMemorySavedFilterRepo) ListByMode(ctx context.Context, mode sfDomain.FilterMode) ([]*sfDomain.SavedFilter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["ListByMode"]++
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*sfDomain.SavedFilter{}
	for _, f := range r.Filters {
		if f.Mode == mode {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemorySavedFilterRepo) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["DeleteByID"]++
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.Filters[id]; !ok {
		return sfDomain.ErrSavedFilterNotFound
	}
	delete(r.Filters, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

var _ sfDomain.SavedFilterRepository = (*InMemorySavedFilterRepo)(nil)
