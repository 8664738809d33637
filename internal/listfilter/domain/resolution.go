package domain

// ResolutionEnum es el código de resolución que entiende el backend.
type ResolutionEnum string

const (
	ResolutionVeryLow    ResolutionEnum = "VERY_LOW"
	ResolutionLow        ResolutionEnum = "LOW"
	ResolutionR360P      ResolutionEnum = "R360P"
	ResolutionStandard   ResolutionEnum = "STANDARD"
	ResolutionWebHD      ResolutionEnum = "WEB_HD"
	ResolutionStandardHD ResolutionEnum = "STANDARD_HD"
	ResolutionFullHD     ResolutionEnum = "FULL_HD"
	ResolutionQuadHD     ResolutionEnum = "QUAD_HD"
	ResolutionVRHD       ResolutionEnum = "VR_HD"
	ResolutionFourK      ResolutionEnum = "FOUR_K"
	ResolutionFiveK      ResolutionEnum = "FIVE_K"
	ResolutionSixK       ResolutionEnum = "SIX_K"
	ResolutionEightK     ResolutionEnum = "EIGHT_K"
)

// ResolutionLabels son las etiquetas que se ofrecen al usuario, en orden.
var ResolutionLabels = []string{
	"144p", "240p", "360p", "480p", "540p", "720p",
	"1080p", "1440p", "4k", "5k", "6k", "8k",
}

// "1920p" no está en ResolutionLabels: solo existe al decodificar y ninguna
// etiqueta de la UI lo produce. Se conserva tal cual.
var resolutionCodes = map[string]ResolutionEnum{
	"144p":  ResolutionVeryLow,
	"240p":  ResolutionLow,
	"360p":  ResolutionR360P,
	"480p":  ResolutionStandard,
	"540p":  ResolutionWebHD,
	"720p":  ResolutionStandardHD,
	"1080p": ResolutionFullHD,
	"1440p": ResolutionQuadHD,
	"1920p": ResolutionVRHD,
	"4k":    ResolutionFourK,
	"5k":    ResolutionFiveK,
	"6k":    ResolutionSixK,
	"8k":    ResolutionEightK,
}

// ResolutionCode traduce una etiqueta a su código. ok es false para etiquetas
// desconocidas.
func ResolutionCode(label string) (ResolutionEnum, bool) {
	code, ok := resolutionCodes[label]
	return code, ok
}

var (
	ResolutionCriterionOption        = NewCriterionOption("resolution")
	AverageResolutionCriterionOption = NewCriterionOption("average_resolution")
)

// ResolutionCriterion filtra por cubo de resolución. El modificador es siempre
// EQUALS y no ofrece alternativas.
type ResolutionCriterion struct {
	*StringCriterion
}

func newResolutionCriterion(option CriterionOption) *ResolutionCriterion {
	c := &ResolutionCriterion{StringCriterion: NewStringCriterion(option, ResolutionLabels...)}
	c.modifier = ModifierEquals
	c.modifierOptions = nil
	return c
}

func NewResolutionCriterion() *ResolutionCriterion {
	return newResolutionCriterion(ResolutionCriterionOption)
}

func NewAverageResolutionCriterion() *ResolutionCriterion {
	return newResolutionCriterion(AverageResolutionCriterionOption)
}

// CriterionInput devuelve el código del valor actual, o false si no hay.
func (c *ResolutionCriterion) CriterionInput() (ResolutionEnum, bool) {
	return ResolutionCode(c.value)
}

// Apply escribe el código de resolución. Un valor desconocido equivale a
// asignar "undefined": la clave desaparece del filtro.
func (c *ResolutionCriterion) Apply(out AttributeFilter) {
	code, ok := c.CriterionInput()
	if !ok {
		delete(out, c.option.ParameterName)
		return
	}
	out[c.option.ParameterName] = code
}

var _ Criterion = (*ResolutionCriterion)(nil)
