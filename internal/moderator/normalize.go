package moderator

import (
	"strconv"
	"strings"

	"github.com/nconklindev/er2view/internal/types"
)

// Normalize flattens src into one Moderator per source record, Solid
// before Fluid, categories and records in file order.
func Normalize(src *types.Source) []Moderator {
	out := make([]Moderator, 0, src.Count())
	for _, kind := range types.Kinds {
		for _, cat := range src.Section(kind) {
			for _, rec := range cat.Records {
				out = append(out, normalizeRecord(kind, cat.Name, rec))
			}
		}
	}
	return out
}

func normalizeRecord(kind types.Kind, mod string, rec types.RawRecord) Moderator {
	m := Moderator{
		Type:             kind,
		Mod:              mod,
		ID:               idText(rec[FieldID]),
		Absorption:       ParseNumber(rec[FieldAbsorption]),
		HeatEfficiency:   ParseNumber(rec[FieldHeatEfficiency]),
		Moderation:       ParseNumber(rec[FieldModeration]),
		HeatConductivity: ParseNumber(resolveConductivity(rec[FieldHeatConductivity])),
	}

	for k, v := range rec {
		if IsField(k) {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = v
	}
	return m
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
