// Package proteomics reshapes per-strain proteomics workbooks into one tidy,
// tab-separated table.
package proteomics

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// Suffix marks workbooks to convert; the strain is the name before it.
	Suffix = ".xlsx"

	// UnitSuffix is stripped from molecular weights as plain text.
	UnitSuffix = "kDa"

	// The first row is a report banner and the second the vendor's header.
	preambleRows = 1
	headerRows   = 1

	// Zero-based columns holding protein, accession, weight and count.
	firstColumn = 1
	lastColumn  = 4
)

// Columns is the output header, in order.
var Columns = []string{"strain", "accession", "protein", "molecular_weight", "spectrum_count"}

var ErrEmptyInput = errors.New("no proteomics tables to combine")

// StructuralReadError is a workbook whose layout does not match the
// expected preamble, header and column positions.
type StructuralReadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *StructuralReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("read %s: %s", e.Path, e.Reason)
}

func (e *StructuralReadError) Unwrap() error {
	return e.Err
}

type Record struct {
	Strain          string
	Accession       string
	Protein         string
	MolecularWeight string
	SpectrumCount   string
}

// Fields returns the record in Columns order.
func (r Record) Fields() []string {
	return []string{r.Strain, r.Accession, r.Protein, r.MolecularWeight, r.SpectrumCount}
}

type Table struct {
	Records []Record
}

func (t *Table) Len() int {
	return len(t.Records)
}

// StrainFromFile derives the strain tag from a workbook file name.
func StrainFromFile(name string) string {
	strain, _, _ := strings.Cut(filepath.Base(name), Suffix)
	return strain
}

// ReadSheet loads the first sheet of a workbook and tags every row with
// strain.
func ReadSheet(path, strain string) (*Table, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &StructuralReadError{Path: path, Reason: "not a readable workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &StructuralReadError{Path: path, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &StructuralReadError{Path: path, Reason: "cannot read sheet " + sheets[0], Err: err}
	}
	return fromRows(path, strain, rows)
}

func fromRows(path, strain string, rows [][]string) (*Table, error) {
	skip := preambleRows + headerRows
	if len(rows) < skip {
		return nil, &StructuralReadError{Path: path, Reason: "missing header row"}
	}

	// only the header row sets the layout
	if header := rows[preambleRows]; len(header) <= lastColumn {
		return nil, &StructuralReadError{
			Path:   path,
			Reason: fmt.Sprintf("header has %d columns, expected at least %d", len(header), lastColumn+1),
		}
	}

	t := &Table{}
	for _, row := range rows[skip:] {
		cells := selected(row)
		if blank(cells) {
			continue
		}
		t.Records = append(t.Records, Record{
			Strain:          strain,
			Protein:         cells[0],
			Accession:       cells[1],
			MolecularWeight: strings.ReplaceAll(cells[2], UnitSuffix, ""),
			SpectrumCount:   cells[3],
		})
	}
	return t, nil
}

// selected returns columns firstColumn..lastColumn of row, padding short rows.
func selected(row []string) []string {
	cells := make([]string, lastColumn-firstColumn+1)
	for i := range cells {
		if j := firstColumn + i; j < len(row) {
			cells[i] = row[j]
		}
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
