package moderator

// conductivity maps the IHeatEntity constants used in the data files to
// their numeric values. It is never written after init.
var conductivity = map[string]float64{
	"IHeatEntity.CONDUCTIVITY_AIR":      0.05,
	"IHeatEntity.CONDUCTIVITY_RUBBER":   0.01,
	"IHeatEntity.CONDUCTIVITY_WATER":    0.1,
	"IHeatEntity.CONDUCTIVITY_STONE":    0.15,
	"IHeatEntity.CONDUCTIVITY_GLASS":    0.3,
	"IHeatEntity.CONDUCTIVITY_IRON":     0.6,
	"IHeatEntity.CONDUCTIVITY_COPPER":   1.0,
	"IHeatEntity.CONDUCTIVITY_SILVER":   1.5,
	"IHeatEntity.CONDUCTIVITY_GOLD":     2.0,
	"IHeatEntity.CONDUCTIVITY_EMERALD":  2.5,
	"IHeatEntity.CONDUCTIVITY_DIAMOND":  3.0,
	"IHeatEntity.CONDUCTIVITY_GRAPHENE": 5.0,
}

// Conductivity looks up a conductivity symbol.
func Conductivity(symbol string) (float64, bool) {
	v, ok := conductivity[symbol]
	return v, ok
}

// ConductivitySymbols returns the number of known symbols.
func ConductivitySymbols() int { return len(conductivity) }

// resolveConductivity swaps a known symbol for its value and passes
// anything else through unchanged.
func resolveConductivity(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	if v, ok := conductivity[s]; ok {
		return v
	}
	return raw
}
