package domain

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// FindFilter es la forma que recibe la llamada "find" del backend: búsqueda,
// paginación y orden. Los criterios viajan aparte, en el AttributeFilter.
type FindFilter struct {
	Q         string        `json:"q,omitempty"`
	Page      int           `json:"page"`
	PerPage   int           `json:"per_page"`
	Sort      string        `json:"sort,omitempty"`
	Direction SortDirection `json:"direction"`
}

// Codec agrupa las dependencias compartidas por todos los ListFilterModel:
// el registro de criterios, la fuente de semillas y el logger.
type Codec struct {
	registry *Registry
	seeds    SeedSource
	log      *zap.Logger
}

// NewCodec crea un Codec. Los argumentos nil se sustituyen por el registro
// por defecto, RandomSeedSource y un logger nop.
func NewCodec(registry *Registry, seeds SeedSource, log *zap.Logger) *Codec {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	if seeds == nil {
		seeds = RandomSeedSource{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{registry: registry, seeds: seeds, log: log}
}

func (c *Codec) Registry() *Registry { return c.registry }

// New construye un modelo con los valores por defecto y, si params no es nil,
// lo configura a partir de ellos. defaultDisplayMode es opcional.
func (c *Codec) New(params url.Values, defaultSort string, defaultDisplayMode *DisplayMode) *ListFilterModel {
	m := &ListFilterModel{
		CurrentPage:   DefaultCurrentPage,
		ItemsPerPage:  DefaultItemsPerPage,
		SortDirection: DefaultSortDirection,
		SortBy:        defaultSort,
		DisplayMode:   DefaultDisplayMode,
		Criteria:      []Criterion{},
		RandomSeed:    UnsetSeed,
		codec:         c,
	}
	if defaultDisplayMode != nil {
		m.DisplayMode = *defaultDisplayMode
	}
	if params != nil {
		m.Configure(params)
	}
	return m
}

// ListFilterModel es el estado de filtrado de una vista de lista. Vive lo que
// dura una navegación: se construye desde la URL, la UI lo muta y se descarta.
// No es seguro para uso concurrente.
type ListFilterModel struct {
	SearchTerm    string
	CurrentPage   int
	ItemsPerPage  int
	SortDirection SortDirection
	SortBy        string
	DisplayMode   DisplayMode
	Criteria      []Criterion
	RandomSeed    int

	codec *Codec
}

// Configure aplica los parámetros reconocidos sobre el estado actual. Nunca
// falla: los valores inválidos se ignoran y los criterios malformados se
// descartan uno a uno, dejando constancia en el log.
func (m *ListFilterModel) Configure(params url.Values) {
	log := m.deps().log

	if values, ok := params[ParamSortBy]; ok && len(values) > 0 {
		m.SortBy = values[0]

		if seed, isRandom, seedOK := ParseRandomSort(m.SortBy); isRandom {
			m.SortBy = RandomSort
			if seedOK {
				m.RandomSeed = seed
			} else {
				log.Debug("Ignoring invalid random seed", zap.String("sortby", values[0]))
			}
		}
	}

	m.SortDirection = SortAsc
	if params.Get(ParamSortDir) == "desc" {
		m.SortDirection = SortDesc
	}

	if disp := params.Get(ParamDisplay); disp != "" {
		if n, ok := ParseInt(disp); ok {
			m.DisplayMode = DisplayMode(n)
		} else {
			log.Warn("Ignoring invalid display mode", zap.String("disp", disp))
		}
	}

	if q := params.Get(ParamSearch); q != "" {
		m.SearchTerm = strings.TrimSpace(q)
	}

	if p := params.Get(ParamPage); p != "" {
		if n, ok := parsePositive(p); ok {
			m.CurrentPage = n
		} else {
			log.Warn("Ignoring invalid page", zap.String("p", p))
		}
	}

	if perPage := params.Get(ParamPerPage); perPage != "" {
		if n, ok := parsePositive(perPage); ok {
			m.ItemsPerPage = n
		} else {
			log.Warn("Ignoring invalid page size", zap.String("perPage", perPage))
		}
	}

	if encoded, ok := params[ParamCriteria]; ok {
		m.Criteria = make([]Criterion, 0, len(encoded))
		for _, jsonString := range encoded {
			criterion, err := m.deps().registry.Decode([]byte(jsonString))
			if err != nil {
				log.Error("Failed to parse encoded criterion",
					zap.String("criterion", jsonString),
					zap.Error(err))
				continue
			}
			m.Criteria = append(m.Criteria, criterion)
		}
	}
}

// deps permite usar un ListFilterModel{} declarado a mano.
func (m *ListFilterModel) deps() *Codec {
	if m.codec == nil {
		m.codec = NewCodec(nil, nil, nil)
	}
	return m.codec
}

func parsePositive(s string) (int, bool) {
	n, ok := ParseInt(s)
	if !ok || n < 1 {
		return 0, false
	}
	return n, true
}

// EnsureRandomSeed genera la semilla si el orden es aleatorio y aún no hay
// una; con cualquier otro orden la resetea. Es idempotente.
func (m *ListFilterModel) EnsureRandomSeed() {
	if m.SortBy != RandomSort {
		m.RandomSeed = UnsetSeed
		return
	}
	if m.RandomSeed == UnsetSeed {
		m.RandomSeed = m.deps().seeds.NewSeed()
	}
}

// SortValue devuelve el campo de orden tal como viaja al backend y a la URL:
// "random_<seed>" para el orden aleatorio, el campo sin tocar en otro caso.
func (m *ListFilterModel) SortValue() string {
	m.EnsureRandomSeed()

	if m.SortBy == RandomSort {
		return randomSortPrefix + strconv.Itoa(m.RandomSeed)
	}
	return m.SortBy
}

// ToQueryParameters devuelve los parámetros de URL omitiendo los valores por
// defecto para que las URLs queden cortas.
func (m *ListFilterModel) ToQueryParameters() url.Values {
	params := url.Values{}

	if m.ItemsPerPage != DefaultItemsPerPage {
		params.Set(ParamPerPage, strconv.Itoa(m.ItemsPerPage))
	}
	if sortBy := m.SortValue(); sortBy != "" {
		params.Set(ParamSortBy, sortBy)
	}
	if m.SortDirection == SortDesc {
		params.Set(ParamSortDir, "desc")
	}
	if m.DisplayMode != DefaultDisplayMode {
		params.Set(ParamDisplay, strconv.Itoa(int(m.DisplayMode)))
	}
	if m.SearchTerm != "" {
		params.Set(ParamSearch, m.SearchTerm)
	}
	if m.CurrentPage != DefaultCurrentPage {
		params.Set(ParamPage, strconv.Itoa(m.CurrentPage))
	}

	for _, criterion := range m.Criteria {
		encoded, err := EncodeCriterion(criterion)
		if err != nil {
			m.deps().log.Error("Failed to encode criterion", zap.Error(err))
			continue
		}
		params.Add(ParamCriteria, encoded)
	}

	return params
}

// ToQueryString serializa ToQueryParameters sin percent-encoding; el JSON de
// los criterios queda a cargo del router que consuma la cadena.
func (m *ListFilterModel) ToQueryString() string {
	return StringifyParams(m.ToQueryParameters())
}

// TODO: ToFindFilter y ToAttributeFilter no soportan varios criterios del
// mismo tipo: solo sobrevive el último.

// ToFindFilter construye el filtro de la llamada "find".
func (m *ListFilterModel) ToFindFilter() FindFilter {
	return FindFilter{
		Q:         m.SearchTerm,
		Page:      m.CurrentPage,
		PerPage:   m.ItemsPerPage,
		Sort:      m.SortValue(),
		Direction: m.SortDirection,
	}
}

// ToAttributeFilter aplica cada criterio, en orden, sobre un mapa vacío.
func (m *ListFilterModel) ToAttributeFilter() AttributeFilter {
	out := AttributeFilter{}
	for _, criterion := range m.Criteria {
		criterion.Apply(out)
	}
	return out
}
