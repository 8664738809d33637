package sqlbuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
	sharedUtils "github.com/davicafu/medialist/internal/shared/utils"
)

var (
	ErrUnknownColumn      = errors.New("unknown column")
	ErrUnsupportedOperand = errors.New("unsupported operand")
)

// Dialect recoge lo que cambia entre motores: placeholders y ILIKE.
type Dialect struct {
	Name string
	// Placeholder devuelve el marcador del argumento n (desde 1).
	Placeholder func(n int) string
	// ILike es el operador de LIKE sin distinguir mayúsculas.
	ILike string
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		ILike:       "ILIKE",
	}
	// En SQLite LIKE ya ignora mayúsculas para ASCII.
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		ILike:       "LIKE",
	}
)

// likeEscape declara el escape de sharedDomain.ContainsPattern en ambos motores.
const likeEscape = " ESCAPE '" + sharedDomain.LikeEscape + "'"

// Builder acumula argumentos mientras traduce criterios a SQL.
type Builder struct {
	dialect Dialect
	columns map[string]bool
	args    []interface{}
}

// New crea un Builder que solo acepta las columnas indicadas.
func New(dialect Dialect, columns ...string) *Builder {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	return &Builder{dialect: dialect, columns: allowed}
}

// Args devuelve los argumentos en el orden de sus placeholders.
func (b *Builder) Args() []interface{} { return b.args }

// Arg registra un argumento y devuelve su placeholder.
func (b *Builder) Arg(v interface{}) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

// Where traduce criteria a una expresión booleana. Devuelve "" si no hay
// condiciones. Los CompositeCriteria se respetan como AND/OR anidados.
func (b *Builder) Where(criteria sharedDomain.Criteria) (string, error) {
	if criteria == nil {
		return "", nil
	}
	return b.expr(criteria)
}

func (b *Builder) expr(criteria sharedDomain.Criteria) (string, error) {
	if composite, ok := criteria.(sharedDomain.CompositeCriteria); ok {
		return b.composite(composite.Operator, composite.Criterias)
	}

	conds := criteria.ToConditions()
	parts := make([]sharedDomain.Criteria, len(conds))
	for i, c := range conds {
		parts[i] = c
	}
	if len(parts) == 1 {
		return b.condition(conds[0])
	}
	return b.composite(sharedDomain.OpAnd, parts)
}

func (b *Builder) composite(op sharedDomain.LogicalOperator, children []sharedDomain.Criteria) (string, error) {
	var clauses []string
	for _, child := range children {
		if cc, ok := child.(sharedDomain.Criterion); ok {
			clause, err := b.condition(cc)
			if err != nil {
				return "", err
			}
			clauses = append(clauses, clause)
			continue
		}
		clause, err := b.expr(child)
		if err != nil {
			return "", err
		}
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}

	switch len(clauses) {
	case 0:
		return "", nil
	case 1:
		return clauses[0], nil
	}
	joiner := sharedUtils.Ternary(op == sharedDomain.OpOr, " OR ", " AND ")
	return "(" + strings.Join(clauses, joiner) + ")", nil
}

func (b *Builder) condition(c sharedDomain.Criterion) (string, error) {
	if !b.columns[c.Field] {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, c.Field)
	}

	switch c.Op {
	case sharedDomain.OpIsNull, sharedDomain.OpNotNull:
		return fmt.Sprintf("%s %s", c.Field, c.Op), nil
	case sharedDomain.OpILike:
		return fmt.Sprintf("%s %s %s%s", c.Field, b.dialect.ILike, b.Arg(c.Value), likeEscape), nil
	case sharedDomain.OpNotILike:
		return fmt.Sprintf("%s NOT %s %s%s", c.Field, b.dialect.ILike, b.Arg(c.Value), likeEscape), nil
	case sharedDomain.OpLike:
		return fmt.Sprintf("%s LIKE %s%s", c.Field, b.Arg(c.Value), likeEscape), nil
	case sharedDomain.OpIn:
		return b.in(c)
	case sharedDomain.OpEq, sharedDomain.OpNeq, sharedDomain.OpGt, sharedDomain.OpGte,
		sharedDomain.OpLt, sharedDomain.OpLte:
		return fmt.Sprintf("%s %s %s", c.Field, c.Op, b.Arg(c.Value)), nil
	}
	return "", fmt.Errorf("%w: operator %q", ErrUnsupportedOperand, c.Op)
}

func (b *Builder) in(c sharedDomain.Criterion) (string, error) {
	v := reflect.ValueOf(c.Value)
	if v.Kind() != reflect.Slice {
		return "", fmt.Errorf("%w: IN needs a slice, got %T", ErrUnsupportedOperand, c.Value)
	}
	if v.Len() == 0 {
		// IN () no es SQL válido y nunca coincide.
		return "1 = 0", nil
	}
	placeholders := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		placeholders[i] = b.Arg(v.Index(i).Interface())
	}
	return fmt.Sprintf("%s IN (%s)", c.Field, strings.Join(placeholders, ", ")), nil
}

// OrderBy valida la columna y devuelve "ORDER BY ...". tiebreak se añade
// siempre para que la paginación sea estable.
func (b *Builder) OrderBy(sort sharedQuery.Sort, tiebreak string) (string, error) {
	if !b.columns[sort.Field] {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, sort.Field)
	}
	dir := sharedUtils.Ternary(sort.Desc, "DESC", "ASC")
	clause := fmt.Sprintf("ORDER BY %s %s", sort.Field, dir)
	if tiebreak != "" && tiebreak != sort.Field {
		clause += ", " + tiebreak + " " + dir
	}
	return clause, nil
}

// LimitOffset añade la paginación como argumentos.
func (b *Builder) LimitOffset(p sharedQuery.OffsetPagination) string {
	return fmt.Sprintf("LIMIT %s OFFSET %s", b.Arg(p.Limit), b.Arg(p.Offset))
}
