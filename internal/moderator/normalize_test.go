package moderator

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/nconklindev/er2view/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SingleRecord(t *testing.T) {
	src := &types.Source{
		Solid: []types.Category{{
			Name: "Basic",
			Records: []types.RawRecord{{
				"id":               "lead",
				"absorption":       json.Number("0.2"),
				"heatEfficiency":   json.Number("0.3"),
				"moderation":       json.Number("1.0"),
				"heatConductivity": "IHeatEntity.CONDUCTIVITY_IRON",
			}},
		}},
	}

	got := Normalize(src)
	require.Len(t, got, 1)
	assert.Equal(t, Moderator{
		Type:             types.KindSolid,
		Mod:              "Basic",
		ID:               "lead",
		Absorption:       Num(0.2),
		HeatEfficiency:   Num(0.3),
		Moderation:       Num(1.0),
		HeatConductivity: Num(0.6),
	}, got[0])
}

func TestNormalize_CountsAndOrder(t *testing.T) {
	src := &types.Source{
		Solid: []types.Category{
			{Name: "Thermal", Records: []types.RawRecord{{"id": "s1"}, {"id": "s2"}}},
			{Name: "Basic", Records: []types.RawRecord{{"id": "s3"}}},
		},
		Fluid: []types.Category{
			{Name: "Basic", Records: []types.RawRecord{{"id": "f1"}}},
			{Name: "Empty"},
		},
	}

	got := Normalize(src)
	require.Len(t, got, src.Count())

	var ids []string
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "s3", "f1"}, ids)

	assert.Equal(t, types.KindSolid, got[0].Type)
	assert.Equal(t, "Thermal", got[0].Mod)
	assert.Equal(t, types.KindSolid, got[2].Type)
	assert.Equal(t, "Basic", got[2].Mod)
	assert.Equal(t, types.KindFluid, got[3].Type)
	assert.Equal(t, "Basic", got[3].Mod)
}

func TestNormalize_DoesNotModifySource(t *testing.T) {
	rec := types.RawRecord{"id": "lead", "heatConductivity": "IHeatEntity.CONDUCTIVITY_GOLD"}
	src := &types.Source{Solid: []types.Category{{Name: "Basic", Records: []types.RawRecord{rec}}}}

	got := Normalize(src)
	assert.Equal(t, Num(2.0), got[0].HeatConductivity)
	assert.Equal(t, "IHeatEntity.CONDUCTIVITY_GOLD", rec["heatConductivity"])
	assert.NotContains(t, rec, "Type")
}

func TestNormalize_Conductivity(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Number
	}{
		{"Gold", "IHeatEntity.CONDUCTIVITY_GOLD", Num(2.0)},
		{"Graphene", "IHeatEntity.CONDUCTIVITY_GRAPHENE", Num(5.0)},
		{"Numeric string", "0.75", Num(0.75)},
		{"Number", json.Number("4"), Num(4)},
		{"Unknown symbol", "IHeatEntity.CONDUCTIVITY_UNOBTAINIUM", Missing()},
		{"Absent", nil, Missing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &types.Source{Fluid: []types.Category{{
				Name:    "Basic",
				Records: []types.RawRecord{{"id": "x", "heatConductivity": tt.raw}},
			}}}
			got := Normalize(src)
			assert.Equal(t, tt.want, got[0].HeatConductivity)
		})
	}
}

func TestResolveConductivity_PassThrough(t *testing.T) {
	assert.Equal(t, 0.6, resolveConductivity("IHeatEntity.CONDUCTIVITY_IRON"))
	assert.Equal(t, "mystery", resolveConductivity("mystery"))
	assert.Equal(t, json.Number("1.5"), resolveConductivity(json.Number("1.5")))
	assert.Nil(t, resolveConductivity(nil))
}

func TestConductivityTable(t *testing.T) {
	assert.Equal(t, 12, ConductivitySymbols())

	v, ok := Conductivity("IHeatEntity.CONDUCTIVITY_AIR")
	assert.True(t, ok)
	assert.Equal(t, 0.05, v)

	_, ok = Conductivity("CONDUCTIVITY_AIR")
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Number
	}{
		{"Float", 0.2, Num(0.2)},
		{"Int", 3, Num(3)},
		{"JSON number", json.Number("1e2"), Num(100)},
		{"Numeric string", "0.75", Num(0.75)},
		{"Padded string", " 2.5 ", Num(2.5)},
		{"Negative", "-1", Num(-1)},
		{"True", true, Num(1)},
		{"False", false, Num(0)},
		{"N/A", "N/A", Missing()},
		{"Empty", "", Missing()},
		{"NaN string", "NaN", Missing()},
		{"NaN float", math.NaN(), Missing()},
		{"Nil", nil, Missing()},
		{"List", []any{1.0}, Missing()},
		{"Object", map[string]any{"v": 1.0}, Missing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.raw))
		})
	}
}

func TestNormalize_NumericCoercionPerField(t *testing.T) {
	src := &types.Source{Solid: []types.Category{{
		Name: "Basic",
		Records: []types.RawRecord{{
			"id":               "odd",
			"absorption":       "N/A",
			"heatEfficiency":   "0.75",
			"moderation":       "unknown",
			"heatConductivity": json.Number("1.25"),
		}},
	}}}

	m := Normalize(src)[0]
	assert.Equal(t, Missing(), m.Absorption)
	assert.Equal(t, Num(0.75), m.HeatEfficiency)
	assert.Equal(t, Missing(), m.Moderation)
	assert.Equal(t, Num(1.25), m.HeatConductivity)
}

func TestNormalize_ExtraFieldsPreserved(t *testing.T) {
	src := &types.Source{Solid: []types.Category{{
		Name: "Basic",
		Records: []types.RawRecord{{
			"id":         json.Number("42"),
			"name":       "Block of Lead",
			"tags":       []any{"ore", "heavy"},
			"Type":       "Bogus",
			"Mod":        "Bogus",
			"moderation": "1.5",
		}},
	}}}

	m := Normalize(src)[0]
	assert.Equal(t, "42", m.ID)
	assert.Equal(t, types.KindSolid, m.Type)
	assert.Equal(t, "Basic", m.Mod)
	assert.Equal(t, map[string]any{
		"name": "Block of Lead",
		"tags": []any{"ore", "heavy"},
	}, m.Extra)
}

func TestModerator_Cells(t *testing.T) {
	m := Moderator{
		Type:             types.KindFluid,
		Mod:              "Basic",
		ID:               "water",
		Absorption:       Num(0.1),
		HeatEfficiency:   Missing(),
		Moderation:       Num(1),
		HeatConductivity: Num(0.6),
	}

	assert.Equal(t, []string{"Fluid", "Basic", "water", "0.1", "NaN", "1", "0.6"}, m.Cells())
	assert.Equal(t, "", m.Text("density"))
}
