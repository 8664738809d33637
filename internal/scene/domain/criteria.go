package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	shared "github.com/davicafu/medialist/internal/shared/domain"
)

// --- Criterios Específicos para el Dominio Scene ---

// HeightRange es el intervalo cerrado de alturas de un cubo de resolución.
type HeightRange struct {
	Min int
	Max int
}

var resolutionHeights = map[lf.ResolutionEnum]HeightRange{
	lf.ResolutionVeryLow:    {Min: 144, Max: 239},
	lf.ResolutionLow:        {Min: 240, Max: 359},
	lf.ResolutionR360P:      {Min: 360, Max: 479},
	lf.ResolutionStandard:   {Min: 480, Max: 539},
	lf.ResolutionWebHD:      {Min: 540, Max: 719},
	lf.ResolutionStandardHD: {Min: 720, Max: 1079},
	lf.ResolutionFullHD:     {Min: 1080, Max: 1439},
	lf.ResolutionQuadHD:     {Min: 1440, Max: 1919},
	lf.ResolutionVRHD:       {Min: 1920, Max: 2159},
	lf.ResolutionFourK:      {Min: 2160, Max: 2879},
	lf.ResolutionFiveK:      {Min: 2880, Max: 3383},
	lf.ResolutionSixK:       {Min: 3384, Max: 4319},
	lf.ResolutionEightK:     {Min: 4320, Max: 8639},
}

// ResolutionHeightRange devuelve el intervalo de alturas de code.
func ResolutionHeightRange(code lf.ResolutionEnum) (HeightRange, bool) {
	r, ok := resolutionHeights[code]
	return r, ok
}

// ResolutionCriteria busca escenas cuya altura cae en el cubo Code.
type ResolutionCriteria struct {
	Code lf.ResolutionEnum
}

// ToConditions implementa la interfaz shared.Criteria.
func (c ResolutionCriteria) ToConditions() []shared.Criterion {
	r, ok := ResolutionHeightRange(c.Code)
	if !ok {
		return nil
	}
	return []shared.Criterion{
		{Field: "height", Op: shared.OpGte, Value: r.Min},
		{Field: "height", Op: shared.OpLte, Value: r.Max},
	}
}

// -----------------------------------------------------------

// SearchCriteria busca el texto libre en título y ruta.
func SearchCriteria(q string) shared.Criteria {
	pattern := shared.ContainsPattern(q)
	return shared.Or(
		shared.Criterion{Field: "title", Op: shared.OpILike, Value: pattern},
		shared.Criterion{Field: "path", Op: shared.OpILike, Value: pattern},
	)
}

// TextCriteria traduce un input de texto a condiciones sobre field.
func TextCriteria(field string, in lf.StringCriterionInput) (shared.Criteria, error) {
	switch in.Modifier {
	case lf.ModifierEquals, "":
		return shared.Criterion{Field: field, Op: shared.OpEq, Value: in.Value}, nil
	case lf.ModifierNotEquals:
		return shared.Criterion{Field: field, Op: shared.OpNeq, Value: in.Value}, nil
	case lf.ModifierIncludes:
		return shared.Criterion{Field: field, Op: shared.OpILike, Value: shared.ContainsPattern(in.Value)}, nil
	case lf.ModifierExcludes:
		return shared.Criterion{Field: field, Op: shared.OpNotILike, Value: shared.ContainsPattern(in.Value)}, nil
	case lf.ModifierIsNull:
		// Vacío cuenta como nulo.
		return shared.Or(
			shared.Criterion{Field: field, Op: shared.OpIsNull},
			shared.Criterion{Field: field, Op: shared.OpEq, Value: ""},
		), nil
	case lf.ModifierNotNull:
		return shared.And(
			shared.Criterion{Field: field, Op: shared.OpNotNull},
			shared.Criterion{Field: field, Op: shared.OpNeq, Value: ""},
		), nil
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedModifier, in.Modifier, field)
}

// NumberCriteria traduce un input numérico a condiciones sobre field.
func NumberCriteria(field string, in lf.IntCriterionInput) (shared.Criteria, error) {
	switch in.Modifier {
	case lf.ModifierEquals, "":
		return shared.Criterion{Field: field, Op: shared.OpEq, Value: in.Value}, nil
	case lf.ModifierNotEquals:
		return shared.Criterion{Field: field, Op: shared.OpNeq, Value: in.Value}, nil
	case lf.ModifierGreaterThan:
		return shared.Criterion{Field: field, Op: shared.OpGt, Value: in.Value}, nil
	case lf.ModifierLessThan:
		return shared.Criterion{Field: field, Op: shared.OpLt, Value: in.Value}, nil
	case lf.ModifierIsNull:
		return shared.Criterion{Field: field, Op: shared.OpIsNull}, nil
	case lf.ModifierNotNull:
		return shared.Criterion{Field: field, Op: shared.OpNotNull}, nil
	case lf.ModifierBetween, lf.ModifierNotBetween:
		if in.Value2 == nil {
			return nil, fmt.Errorf("%w: %s on %s needs value2", ErrUnsupportedModifier, in.Modifier, field)
		}
		if in.Modifier == lf.ModifierBetween {
			return shared.And(
				shared.Criterion{Field: field, Op: shared.OpGte, Value: in.Value},
				shared.Criterion{Field: field, Op: shared.OpLte, Value: *in.Value2},
			), nil
		}
		return shared.Or(
			shared.Criterion{Field: field, Op: shared.OpLt, Value: in.Value},
			shared.Criterion{Field: field, Op: shared.OpGt, Value: *in.Value2},
		), nil
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedModifier, in.Modifier, field)
}

// -----------------------------------------------------------

type attributeKind int

const (
	kindResolution attributeKind = iota
	kindText
	kindNumber
	kindBool
)

// sceneAttributes relaciona cada clave del filtro de atributos con su columna.
var sceneAttributes = map[string]struct {
	column string
	kind   attributeKind
}{
	"resolution":         {"height", kindResolution},
	"average_resolution": {"height", kindResolution},
	"title":              {"title", kindText},
	"path":               {"path", kindText},
	"details":            {"details", kindText},
	"rating":             {"rating", kindNumber},
	"o_counter":          {"o_counter", kindNumber},
	"duration":           {"duration", kindNumber},
	"organized":          {"organized", kindBool},
	"interactive":        {"interactive", kindBool},
}

// CriteriaFromFilter traduce el find filter y el filtro de atributos a
// criterios neutrales. Devuelve también las claves que no se pudieron aplicar,
// ya sea por desconocidas o por llevar un modificador no soportado.
func CriteriaFromFilter(find lf.FindFilter, attrs lf.AttributeFilter) (shared.CompositeCriteria, []string) {
	var criterias []shared.Criteria
	var skipped []string

	if find.Q != "" {
		criterias = append(criterias, SearchCriteria(find.Q))
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		crit, err := attributeCriteria(key, attrs[key])
		if err != nil {
			skipped = append(skipped, key)
			continue
		}
		criterias = append(criterias, crit)
	}

	return shared.And(criterias...), skipped
}

func attributeCriteria(key string, value any) (shared.Criteria, error) {
	attr, ok := sceneAttributes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, key)
	}

	switch attr.kind {
	case kindResolution:
		code, err := coerce[lf.ResolutionEnum](value)
		if err != nil {
			return nil, err
		}
		if _, ok := ResolutionHeightRange(code); !ok {
			return nil, fmt.Errorf("%w: resolution %q", ErrUnknownAttribute, code)
		}
		return ResolutionCriteria{Code: code}, nil
	case kindText:
		in, err := coerce[lf.StringCriterionInput](value)
		if err != nil {
			return nil, err
		}
		return TextCriteria(attr.column, in)
	case kindNumber:
		in, err := coerce[lf.IntCriterionInput](value)
		if err != nil {
			return nil, err
		}
		return NumberCriteria(attr.column, in)
	default:
		b, err := coerce[bool](value)
		if err != nil {
			return nil, err
		}
		return shared.Criterion{Field: attr.column, Op: shared.OpEq, Value: b}, nil
	}
}

// coerce acepta el valor tipado o cualquier forma equivalente en JSON (por
// ejemplo un map tras deserializar el filtro).
func coerce[T any](value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	var out T
	data, err := json.Marshal(value)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("attribute value %s: %w", data, err)
	}
	return out, nil
}
