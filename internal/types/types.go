package types

// Kind is the top-level section a moderator is listed under.
type Kind string

const (
	KindSolid Kind = "Solid"
	KindFluid Kind = "Fluid"
)

// Kinds lists the sections in the order they are read.
var Kinds = []Kind{KindSolid, KindFluid}

// RawRecord is one moderator entry exactly as it appears in the source file.
type RawRecord map[string]any

type Category struct {
	Name    string
	Records []RawRecord
}

// Source is the parsed data file. Categories keep their file order.
type Source struct {
	Solid []Category
	Fluid []Category
}

func (s *Source) Section(kind Kind) []Category {
	switch kind {
	case KindSolid:
		return s.Solid
	case KindFluid:
		return s.Fluid
	}
	return nil
}

// Count returns the total number of records across both sections.
func (s *Source) Count() int {
	n := 0
	for _, kind := range Kinds {
		for _, cat := range s.Section(kind) {
			n += len(cat.Records)
		}
	}
	return n
}

type ExportResult struct {
	OutputFile   string
	Columns      []string
	RowsExported int
}
