// Package export writes the current table view to CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nconklindev/er2view/internal/moderator"
	"github.com/nconklindev/er2view/internal/types"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written to XLSX exports.
const SheetName = "Moderators"

// Write exports rows to path, picking the format from its extension.
// Progress in [0,1] is sent on progress without blocking; it may be nil.
func Write(path string, rows []moderator.Moderator, progress chan<- float64) (*types.ExportResult, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return WriteCSV(path, rows, progress)
	case ".xlsx":
		return WriteXLSX(path, rows, progress)
	default:
		return nil, fmt.Errorf("unsupported export type: %s", ext)
	}
}

// ExtraColumns returns the union of extra field names in rows, sorted.
func ExtraColumns(rows []moderator.Moderator) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range rows {
		for k := range r.Extra {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	slices.Sort(cols)
	return cols
}

func header(extra []string) []string {
	return append(moderator.Headers(), extra...)
}

func extraText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func reportProgress(progress chan<- float64, current, total int) {
	if progress == nil || total == 0 {
		return
	}
	select {
	case progress <- float64(current) / float64(total):
	default:
	}
}

// WriteCSV writes rows as CSV. Missing numbers become empty cells.
func WriteCSV(path string, rows []moderator.Moderator, progress chan<- float64) (*types.ExportResult, error) {
	extra := ExtraColumns(rows)
	cols := header(extra)

	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(cols); err != nil {
		return nil, err
	}

	for i, r := range rows {
		reportProgress(progress, i+1, len(rows))

		record := make([]string, 0, len(cols))
		for _, c := range moderator.Columns {
			if n, ok := r.Number(c.Field); ok && !n.Valid {
				record = append(record, "")
				continue
			}
			record = append(record, r.Text(c.Field))
		}
		for _, k := range extra {
			record = append(record, extraText(r.Extra[k]))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &types.ExportResult{
		OutputFile:   path,
		Columns:      cols,
		RowsExported: len(rows),
	}, nil
}

// WriteXLSX writes rows to a single worksheet with a bold header row.
// Numbers are stored as numeric cells.
func WriteXLSX(path string, rows []moderator.Moderator, progress chan<- float64) (*types.ExportResult, error) {
	extra := ExtraColumns(rows)
	cols := header(extra)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	headerRow := make([]any, len(cols))
	for i, c := range cols {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		reportProgress(progress, i+1, len(rows))

		values := make([]any, 0, len(cols))
		for _, c := range moderator.Columns {
			if n, ok := r.Number(c.Field); ok {
				if n.Valid {
					values = append(values, n.Value)
				} else {
					values = append(values, nil)
				}
				continue
			}
			values = append(values, r.Text(c.Field))
		}
		for _, k := range extra {
			values = append(values, extraText(r.Extra[k]))
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	for i, c := range moderator.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, float64(c.Width)); err != nil {
			return nil, err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return nil, err
	}

	return &types.ExportResult{
		OutputFile:   path,
		Columns:      cols,
		RowsExported: len(rows),
	}, nil
}
