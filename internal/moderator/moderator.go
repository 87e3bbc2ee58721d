// Package moderator turns the raw data file into a flat table of reactor
// moderators and answers filter/sort queries over it.
package moderator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/nconklindev/er2view/internal/types"
)

// Field names as they appear in the source records.
const (
	FieldType             = "Type"
	FieldMod              = "Mod"
	FieldID               = "id"
	FieldAbsorption       = "absorption"
	FieldHeatEfficiency   = "heatEfficiency"
	FieldModeration       = "moderation"
	FieldHeatConductivity = "heatConductivity"
)

// MissingText is how a missing number is displayed.
const MissingText = "NaN"

// Number is a numeric field that may be missing because its raw value
// could not be read as a number.
type Number struct {
	Value float64
	Valid bool
}

func Missing() Number { return Number{} }

func Num(v float64) Number { return Number{Value: v, Valid: true} }

func (n Number) String() string {
	if !n.Valid {
		return MissingText
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Moderator is one normalized row of the table.
type Moderator struct {
	Type             types.Kind
	Mod              string
	ID               string
	Absorption       Number
	HeatEfficiency   Number
	Moderation       Number
	HeatConductivity Number

	// Extra holds every other source field, untouched.
	Extra map[string]any
}

// Column describes one displayed column.
type Column struct {
	Field  string
	Header string
	Width  int
}

// Columns is the fixed display order.
var Columns = []Column{
	{Field: FieldType, Header: "Type", Width: 10},
	{Field: FieldMod, Header: "Mod", Width: 15},
	{Field: FieldID, Header: "ID", Width: 30},
	{Field: FieldAbsorption, Header: "Absorption", Width: 15},
	{Field: FieldHeatEfficiency, Header: "Heat Efficiency", Width: 15},
	{Field: FieldModeration, Header: "Moderation", Width: 15},
	{Field: FieldHeatConductivity, Header: "Heat Conductivity", Width: 15},
}

// Fields returns the sortable field names in display order.
func Fields() []string {
	fields := make([]string, len(Columns))
	for i, c := range Columns {
		fields[i] = c.Field
	}
	return fields
}

// Headers returns the human-readable column headers.
func Headers() []string {
	headers := make([]string, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Header
	}
	return headers
}

// IsField reports whether name is one of the displayed fields.
func IsField(name string) bool {
	for _, c := range Columns {
		if c.Field == name {
			return true
		}
	}
	return false
}

// Text returns the display text of a field, or "" for an unknown field.
func (m Moderator) Text(field string) string {
	switch field {
	case FieldType:
		return string(m.Type)
	case FieldMod:
		return m.Mod
	case FieldID:
		return m.ID
	}
	if n, ok := m.Number(field); ok {
		return n.String()
	}
	return ""
}

// Number returns the numeric field with the given name. ok is false when
// field is not numeric.
func (m Moderator) Number(field string) (n Number, ok bool) {
	switch field {
	case FieldAbsorption:
		return m.Absorption, true
	case FieldHeatEfficiency:
		return m.HeatEfficiency, true
	case FieldModeration:
		return m.Moderation, true
	case FieldHeatConductivity:
		return m.HeatConductivity, true
	}
	return Number{}, false
}

// Cells renders the row in column order.
func (m Moderator) Cells() []string {
	cells := make([]string, len(Columns))
	for i, c := range Columns {
		cells[i] = m.Text(c.Field)
	}
	return cells
}

// ParseNumber coerces a raw value to a number. Anything that is not a
// number or a numeric string comes back missing.
func ParseNumber(raw any) Number {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint64:
		v = float64(x)
	case bool:
		if x {
			v = 1
		}
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return Missing()
		}
		v = f
	case string:
		f, ok := parseNumericString(x)
		if !ok {
			return Missing()
		}
		v = f
	default:
		return Missing()
	}
	if math.IsNaN(v) {
		return Missing()
	}
	return Num(v)
}

// idText renders an id of any JSON type as text.
func idText(raw any) string {
	switch x := raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
