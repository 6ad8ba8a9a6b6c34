package stats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// RenderText writes a plain-text dump of a named DB's counters,
// distributions and formulas to w, the baseline dump-to-file/stderr
// rendering for the stats DB.
func RenderText(w io.Writer, label string, d *DB) error {
	fmt.Fprintf(w, "=== %s ===\n", label)
	for _, name := range d.CounterNames() {
		fmt.Fprintf(w, "%-32s %d\n", name, d.Get(name))
	}
	for _, name := range d.DistNames() {
		fmt.Fprintf(w, "%-32s\n", name+":")
		buckets := d.DistBuckets(name)
		for bucket, count := range buckets {
			fmt.Fprintf(w, "  %-28s %d\n", bucket, count)
		}
	}
	for _, name := range d.FormulaNames() {
		v, err := d.Evaluate(name)
		if err != nil {
			fmt.Fprintf(w, "%-32s <error: %v>\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%-32s %.4f\n", name, v)
	}
	return nil
}

// jsonReport is the shape RenderJSON serializes.
type jsonReport struct {
	Label        string             `json:"label"`
	Counters     map[string]uint64  `json:"counters"`
	Distributions map[string]map[string]uint64 `json:"distributions"`
	Formulas     map[string]float64 `json:"formulas"`
}

// RenderJSON writes a JSON dump of a named DB to w.
func RenderJSON(w io.Writer, label string, d *DB) error {
	report := jsonReport{
		Label:        label,
		Counters:     make(map[string]uint64),
		Distributions: make(map[string]map[string]uint64),
		Formulas:     make(map[string]float64),
	}
	for _, name := range d.CounterNames() {
		report.Counters[name] = d.Get(name)
	}
	for _, name := range d.DistNames() {
		report.Distributions[name] = d.DistBuckets(name)
	}
	for _, name := range d.FormulaNames() {
		if v, err := d.Evaluate(name); err == nil {
			report.Formulas[name] = v
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderXLSX writes one sheet per labeled DB into an excelize workbook and
// saves it to path, for a multi-core run's counters to be compared
// side by side in a spreadsheet.
func RenderXLSX(path string, dbs map[string]*DB) error {
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for label, d := range dbs {
		sheet := label
		if first {
			f.SetSheetName("Sheet1", sheet)
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}
		row := 1
		for _, name := range d.CounterNames() {
			_ = f.SetCellValue(sheet, cellRef(1, row), name)
			_ = f.SetCellValue(sheet, cellRef(2, row), d.Get(name))
			row++
		}
		for _, name := range d.FormulaNames() {
			v, err := d.Evaluate(name)
			if err != nil {
				continue
			}
			_ = f.SetCellValue(sheet, cellRef(1, row), name)
			_ = f.SetCellValue(sheet, cellRef(2, row), v)
			row++
		}
	}
	return f.SaveAs(path)
}

func cellRef(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
