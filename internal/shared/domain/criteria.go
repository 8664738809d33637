package domain

import "strings"

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq       Operator = "="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpLike     Operator = "LIKE"
	OpILike    Operator = "ILIKE"
	OpNotILike Operator = "NOT ILIKE"
	OpIsNull   Operator = "IS NULL"
	OpNotNull  Operator = "IS NOT NULL"
	OpIn       Operator = "IN"
)

// Unary indica si el operador no lleva valor (IS NULL / IS NOT NULL).
func (o Operator) Unary() bool {
	return o == OpIsNull || o == OpNotNull
}

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

func (c Criterion) ToConditions() []Criterion {
	return []Criterion{c}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

// CompositeCriteria agrupa criterios con AND u OR. ToConditions aplana el
// árbol; los adaptadores que soportan OR recorren Criterias directamente.
type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// Empty es true si el árbol no contiene ninguna condición.
func (c CompositeCriteria) Empty() bool {
	return len(c.ToConditions()) == 0
}

// ---------------- Helpers ----------------

// LikeEscape es el carácter de escape de los patrones LIKE.
const LikeEscape = `\`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern devuelve un patrón LIKE que busca s literalmente en
// cualquier posición.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}
