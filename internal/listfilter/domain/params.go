package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Claves reconocidas en la query string.
const (
	ParamPerPage  = "perPage"
	ParamSortBy   = "sortby"
	ParamSortDir  = "sortdir"
	ParamDisplay  = "disp"
	ParamSearch   = "q"
	ParamPage     = "p"
	ParamCriteria = "c"
)

// ---------------- Enums ----------------

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// DisplayMode es el código opaco del layout de la lista.
type DisplayMode int

const (
	DisplayGrid DisplayMode = iota
	DisplayList
	DisplayWall
	DisplayTagger
)

func (d DisplayMode) String() string {
	switch d {
	case DisplayGrid:
		return "grid"
	case DisplayList:
		return "list"
	case DisplayWall:
		return "wall"
	case DisplayTagger:
		return "tagger"
	}
	return "display(" + strconv.Itoa(int(d)) + ")"
}

// ---------------- Defaults ----------------

const (
	DefaultSortDirection = SortAsc
	DefaultDisplayMode   = DisplayGrid
	DefaultCurrentPage   = 1
	DefaultItemsPerPage  = 40

	// RandomSort es el campo de orden que exige semilla.
	RandomSort = "random"
	// UnsetSeed marca que todavía no hay semilla.
	UnsetSeed = -1

	randomSortPrefix = RandomSort + "_"
)

// ---------------- Parsing ----------------

// ParseInt interpreta s como entero en base 10. ok es false si s no es un
// número válido; el llamador decide qué valor usar en ese caso.
func ParseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseRandomSort separa "random_<seed>". isRandom indica si value lleva el
// prefijo; seedOK si además el sufijo es un entero no negativo.
func ParseRandomSort(value string) (seed int, isRandom, seedOK bool) {
	suffix, found := strings.CutPrefix(value, randomSortPrefix)
	if !found {
		return 0, false, false
	}
	n, ok := ParseInt(suffix)
	if !ok || n < 0 {
		return 0, true, false
	}
	return n, true, true
}

// ---------------- Stringify ----------------

// StringifyParams serializa params con las claves ordenadas, repitiendo las
// claves multivalor y sin percent-encoding.
func StringifyParams(params map[string][]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range params[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}
