package proteomics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/logger"
	"github.com/yumyai/strainpipe/pkg/batch"
)

// Concat joins tables in the given order, keeping each table's row order.
// Zero tables is an error rather than an empty result.
func Concat(tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, ErrEmptyInput
	}

	n := 0
	for _, t := range tables {
		n += t.Len()
	}

	out := &Table{Records: make([]Record, 0, n)}
	for _, t := range tables {
		out.Records = append(out.Records, t.Records...)
	}
	return out, nil
}

// WriteTSV writes the header and every record, tab separated.
func WriteTSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range t.Records {
		if err := cw.Write(r.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Convert reads every workbook in inputDir (sorted by name), combines them
// and writes the result to output. Nothing is written unless every
// workbook was read.
func Convert(inputDir, output string) (*Table, error) {
	matches, err := batch.MatchSuffix(inputDir, Suffix)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(matches))
	for _, m := range matches {
		t, err := ReadSheet(filepath.Join(inputDir, m.Name), StrainFromFile(m.Name))
		if err != nil {
			return nil, err
		}
		logger.Debug("Read workbook", zap.String("strain", m.ID), zap.Int("rows", t.Len()))
		tables = append(tables, t)
	}

	combined, err := Concat(tables)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputDir, err)
	}

	if err := writeFile(output, combined); err != nil {
		return nil, err
	}
	logger.Info("Wrote proteomics table",
		zap.String("path", output),
		zap.Int("files", len(tables)),
		zap.Int("rows", combined.Len()),
	)
	return combined, nil
}

func writeFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteTSV(f, t); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
