package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ---------------- Modificadores ----------------

// CriterionModifier es el operador de comparación asociado a un criterio.
type CriterionModifier string

const (
	ModifierEquals          CriterionModifier = "EQUALS"
	ModifierNotEquals       CriterionModifier = "NOT_EQUALS"
	ModifierGreaterThan     CriterionModifier = "GREATER_THAN"
	ModifierLessThan        CriterionModifier = "LESS_THAN"
	ModifierIsNull          CriterionModifier = "IS_NULL"
	ModifierNotNull         CriterionModifier = "NOT_NULL"
	ModifierIncludes        CriterionModifier = "INCLUDES"
	ModifierExcludes        CriterionModifier = "EXCLUDES"
	ModifierMatchesRegex    CriterionModifier = "MATCHES_REGEX"
	ModifierNotMatchesRegex CriterionModifier = "NOT_MATCHES_REGEX"
	ModifierBetween         CriterionModifier = "BETWEEN"
	ModifierNotBetween      CriterionModifier = "NOT_BETWEEN"
)

var (
	ErrUnknownCriterionType = errors.New("unknown criterion type")
	ErrInvalidCriterion     = errors.New("invalid criterion")
)

// ---------------- Criterion ----------------

// CriterionOption identifica un tipo de criterio. Type es la etiqueta que viaja
// en la URL y ParameterName la clave que escribe en el filtro de atributos.
type CriterionOption struct {
	Type          string
	ParameterName string
}

// NewCriterionOption crea una opción; si no se indica, ParameterName = Type.
func NewCriterionOption(typ string, parameterName ...string) CriterionOption {
	opt := CriterionOption{Type: typ, ParameterName: typ}
	if len(parameterName) > 0 && parameterName[0] != "" {
		opt.ParameterName = parameterName[0]
	}
	return opt
}

// Criterion describe una condición de filtrado tipada. Las implementaciones se
// resuelven por su tipo a través de un Registry.
type Criterion interface {
	Option() CriterionOption
	Modifier() CriterionModifier
	SetModifier(m CriterionModifier)
	ModifierOptions() []CriterionModifier

	// Value devuelve el valor en su forma codificada (la de la URL).
	Value() any
	// SetValue decodifica el valor JSON propio del criterio.
	SetValue(raw json.RawMessage) error

	// Apply escribe el input de backend en out bajo su ParameterName.
	// Dos criterios del mismo tipo se pisan: gana el último.
	Apply(out AttributeFilter)
}

// AttributeFilter es el mapa clave-valor genérico que se envía al backend.
type AttributeFilter map[string]any

// EncodedCriterion es la forma JSON de un criterio dentro del parámetro `c`.
type EncodedCriterion struct {
	Type     string            `json:"type"`
	Value    json.RawMessage   `json:"value,omitempty"`
	Modifier CriterionModifier `json:"modifier,omitempty"`
}

// EncodeCriterion devuelve el JSON compacto de c.
func EncodeCriterion(c Criterion) (string, error) {
	value, err := json.Marshal(c.Value())
	if err != nil {
		return "", fmt.Errorf("encode criterion %s: %w", c.Option().Type, err)
	}
	data, err := json.Marshal(EncodedCriterion{
		Type:     c.Option().Type,
		Value:    value,
		Modifier: c.Modifier(),
	})
	if err != nil {
		return "", fmt.Errorf("encode criterion %s: %w", c.Option().Type, err)
	}
	return string(data), nil
}

// ---------------- Base ----------------

type baseCriterion struct {
	option          CriterionOption
	modifier        CriterionModifier
	modifierOptions []CriterionModifier
}

func (b *baseCriterion) Option() CriterionOption              { return b.option }
func (b *baseCriterion) Modifier() CriterionModifier          { return b.modifier }
func (b *baseCriterion) ModifierOptions() []CriterionModifier { return b.modifierOptions }

func (b *baseCriterion) SetModifier(m CriterionModifier) {
	b.modifier = m
}

// StringCriterionInput es el input de backend de los criterios de texto.
type StringCriterionInput struct {
	Value    string            `json:"value"`
	Modifier CriterionModifier `json:"modifier"`
}

// IntCriterionInput es el input de backend de los criterios numéricos.
// Value2 solo se usa con BETWEEN / NOT_BETWEEN.
type IntCriterionInput struct {
	Value    int               `json:"value"`
	Value2   *int              `json:"value2,omitempty"`
	Modifier CriterionModifier `json:"modifier"`
}
