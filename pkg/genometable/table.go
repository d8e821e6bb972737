// Package genometable reads the strain -> genus/species CSV used to label
// genome annotations.
package genometable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrMissingColumn = errors.New("genome table is missing a required column")

// KeyLookupError is a strain that has no row in the genome table.
type KeyLookupError struct {
	Strain string
	Table  string
}

func (e *KeyLookupError) Error() string {
	return fmt.Sprintf("strain %q not found in genome table %s", e.Strain, e.Table)
}

type Taxon struct {
	Genus   string
	Species string
}

type Table struct {
	Path   string
	byName map[string]Taxon
}

// Load reads a genome table from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genome table: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Read parses a genome table. Lines starting with '#' are comments and the
// first remaining row is the header. strain, genus and species must be
// present; other columns are ignored. A repeated strain keeps its last row.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}

	col := map[string]int{}
	for i, name := range header {
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}
	need := []string{"strain", "genus", "species"}
	for _, name := range need {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	t := &Table{byName: map[string]Taxon{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.byName[rec[col["strain"]]] = Taxon{
			Genus:   rec[col["genus"]],
			Species: rec[col["species"]],
		}
	}
	return t, nil
}

// Lookup returns the taxon for a strain or a *KeyLookupError.
func (t *Table) Lookup(strain string) (Taxon, error) {
	taxon, ok := t.byName[strain]
	if !ok {
		return Taxon{}, &KeyLookupError{Strain: strain, Table: t.Path}
	}
	return taxon, nil
}

func (t *Table) Len() int {
	return len(t.byName)
}
