package mocks

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
)

// InMemorySceneRepo simula SceneRepository con outbox incluido. Evalúa los
// criterios en memoria, incluidos los AND/OR anidados.
type InMemorySceneRepo struct {
	Scenes map[uuid.UUID]*sceneDomain.Scene
	Outbox []sharedDomain.OutboxEvent
	Calls  map[string]int
	mu     sync.Mutex
}

func NewInMemorySceneRepo(scenes ...*sceneDomain.Scene) *InMemorySceneRepo {
	r := &InMemorySceneRepo{
		Scenes: make(map[uuid.UUID]*sceneDomain.Scene),
		Outbox: []sharedDomain.OutboxEvent{},
		Calls:  make(map[string]int),
	}
	for _, s := range scenes {
		r.Scenes[s.ID] = s
	}
	return r
}

// CallCount devuelve cuántas veces se llamó a method.
func (r *InMemorySceneRepo) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Calls[method]
}

// --- Implementación de la interfaz SceneRepository ---

func (r *InMemorySceneRepo) Create(ctx context.Context, s *sceneDomain.Scene, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Create"]++
	for _, existing := range r.Scenes {
		if existing.Path == s.Path {
			return sceneDomain.ErrSceneAlreadyExists
		}
	}
	r.Scenes[s.ID] = s
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemorySceneRepo) GetByID(ctx context.Context, id uuid.UUID) (*sceneDomain.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["GetByID"]++
	s, ok := r.Scenes[id]
	if !ok {
		return nil, sceneDomain.ErrSceneNotFound
	}
	return s, nil
}

func (r *InMemorySceneRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*sceneDomain.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["GetByIDs"]++
	out := make([]*sceneDomain.Scene, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.Scenes[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *InMemorySceneRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.OffsetPagination, sortBy sharedQuery.Sort) ([]*sceneDomain.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["ListByCriteria"]++

	matched, err := r.filter(criteria)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		less := compare(sceneField(matched[i], sortBy.Field), sceneField(matched[j], sortBy.Field))
		if less == 0 {
			less = strings.Compare(matched[i].ID.String(), matched[j].ID.String())
		}
		if sortBy.Desc {
			return less > 0
		}
		return less < 0
	})

	if p.Offset < 0 || p.Offset >= len(matched) {
		return []*sceneDomain.Scene{}, nil
	}
	end := len(matched)
	if p.Limit < end-p.Offset {
		end = p.Offset + p.Limit
	}
	return matched[p.Offset:end], nil
}

func (r *InMemorySceneRepo) ListIDs(ctx context.Context, criteria sharedDomain.Criteria) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["ListIDs"]++

	matched, err := r.filter(criteria)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(matched))
	for i, s := range matched {
		ids[i] = s.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *InMemorySceneRepo) Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Count"]++

	matched, err := r.filter(criteria)
	return len(matched), err
}

// ---------------- Evaluación de criterios ----------------

func (r *InMemorySceneRepo) filter(criteria sharedDomain.Criteria) ([]*sceneDomain.Scene, error) {
	var out []*sceneDomain.Scene
	for _, s := range r.Scenes {
		ok, err := matches(s, criteria)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func matches(s *sceneDomain.Scene, criteria sharedDomain.Criteria) (bool, error) {
	if criteria == nil {
		return true, nil
	}
	if composite, ok := criteria.(sharedDomain.CompositeCriteria); ok {
		if len(composite.Criterias) == 0 {
			return true, nil
		}
		isOr := composite.Operator == sharedDomain.OpOr
		for _, child := range composite.Criterias {
			ok, err := matches(s, child)
			if err != nil {
				return false, err
			}
			if ok && isOr {
				return true, nil
			}
			if !ok && !isOr {
				return false, nil
			}
		}
		return !isOr, nil
	}
	for _, c := range criteria.ToConditions() {
		ok, err := matchCondition(s, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchCondition(s *sceneDomain.Scene, c sharedDomain.Criterion) (bool, error) {
	v := sceneField(s, c.Field)
	switch c.Op {
	case sharedDomain.OpIsNull:
		return v == nil, nil
	case sharedDomain.OpNotNull:
		return v != nil, nil
	}
	if v == nil {
		return false, nil // NULL no cumple ninguna comparación
	}

	switch c.Op {
	case sharedDomain.OpEq:
		return compare(v, c.Value) == 0, nil
	case sharedDomain.OpNeq:
		return compare(v, c.Value) != 0, nil
	case sharedDomain.OpGt:
		return compare(v, c.Value) > 0, nil
	case sharedDomain.OpGte:
		return compare(v, c.Value) >= 0, nil
	case sharedDomain.OpLt:
		return compare(v, c.Value) < 0, nil
	case sharedDomain.OpLte:
		return compare(v, c.Value) <= 0, nil
	case sharedDomain.OpILike, sharedDomain.OpLike:
		return like(fmt.Sprint(v), fmt.Sprint(c.Value)), nil
	case sharedDomain.OpNotILike:
		return !like(fmt.Sprint(v), fmt.Sprint(c.Value)), nil
	}
	return false, fmt.Errorf("operator %q not supported in memory", c.Op)
}

// like evalúa un patrón LIKE sin distinguir mayúsculas, con la barra invertida como escape.
func like(value, pattern string) bool {
	var re strings.Builder
	re.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			re.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case string(r) == sharedDomain.LikeEscape:
			escaped = true
		case r == '%':
			re.WriteString(".*")
		case r == '_':
			re.WriteString(".")
		default:
			re.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re.WriteString("$")
	return regexp.MustCompile(re.String()).MatchString(value)
}

func sceneField(s *sceneDomain.Scene, field string) interface{} {
	switch field {
	case "id":
		return s.ID.String()
	case "title":
		return s.Title
	case "path":
		return s.Path
	case "details":
		if s.Details == "" {
			return nil
		}
		return s.Details
	case "width":
		return float64(s.Width)
	case "height":
		return float64(s.Height)
	case "rating":
		if s.Rating == nil {
			return nil
		}
		return float64(*s.Rating)
	case "o_counter":
		return float64(s.OCounter)
	case "duration":
		return s.Duration
	case "organized":
		return s.Organized
	case "interactive":
		return s.Interactive
	case "created_at":
		return s.CreatedAt
	}
	return nil
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case float64:
		bv := toFloat(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, _ := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// Verificación estática
var _ sceneDomain.SceneRepository = (*InMemorySceneRepo)(nil)

// ---------------- Analítica ----------------

// MockFilterUsageRepository simula el repositorio de analítica.
type MockFilterUsageRepository struct {
	mock.Mock
}

func (m *MockFilterUsageRepository) LogBatch(ctx context.Context, usages []sceneDomain.FilterUsage) error {
	args := m.Called(ctx, usages)
	return args.Error(0)
}

func (m *MockFilterUsageRepository) TopCriteria(ctx context.Context, since time.Time, limit int) ([]sceneDomain.CriterionUsage, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]sceneDomain.CriterionUsage), args.Error(1)
}

var _ sceneDomain.FilterUsageRepository = (*MockFilterUsageRepository)(nil)
