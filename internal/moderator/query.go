package moderator

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownField is returned when a query sorts by a field that is not a
// table column.
var ErrUnknownField = errors.New("unknown sort field")

// Query selects and orders rows. An empty Mods keeps every row; an empty
// SortBy keeps the input order.
type Query struct {
	Mods   []string
	SortBy string
}

func (q Query) Validate() error {
	if q.SortBy != "" && !IsField(q.SortBy) {
		return fmt.Errorf("%w: %q", ErrUnknownField, q.SortBy)
	}
	return nil
}

// Apply filters and sorts records into a new slice. Sorting is always
// descending, and missing numbers go last. records is not modified.
func Apply(records []Moderator, q Query) ([]Moderator, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	out := Filter(records, q.Mods)
	if q.SortBy != "" {
		SortDescending(out, q.SortBy)
	}
	return out, nil
}

// Filter returns a copy of records limited to the given mods.
func Filter(records []Moderator, mods []string) []Moderator {
	if len(mods) == 0 {
		return slices.Clone(records)
	}

	allowed := make(map[string]struct{}, len(mods))
	for _, m := range mods {
		allowed[m] = struct{}{}
	}

	out := make([]Moderator, 0, len(records))
	for _, r := range records {
		if _, ok := allowed[r.Mod]; ok {
			out = append(out, r)
		}
	}
	return out
}

// SortDescending sorts rows in place by field, keeping equal rows in their
// current order. Unknown fields leave rows unchanged.
func SortDescending(rows []Moderator, field string) {
	if !IsField(field) {
		return
	}
	slices.SortStableFunc(rows, func(a, b Moderator) int {
		return compareDescending(a, b, field)
	})
}

func compareDescending(a, b Moderator, field string) int {
	if na, ok := a.Number(field); ok {
		nb, _ := b.Number(field)
		switch {
		case !na.Valid && !nb.Valid:
			return 0
		case !na.Valid:
			return 1
		case !nb.Valid:
			return -1
		}
		return cmp.Compare(nb.Value, na.Value)
	}
	return cmp.Compare(b.Text(field), a.Text(field))
}

// ModNames returns the distinct mod names in ascending order.
func ModNames(records []Moderator) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		if _, ok := seen[r.Mod]; ok {
			continue
		}
		seen[r.Mod] = struct{}{}
		names = append(names, r.Mod)
	}
	slices.Sort(names)
	return names
}
