package proteomics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var vendorHeader = []interface{}{"#", "Identified Proteins", "Accession Number", "Molecular Weight", "Spectrum Count"}

// writeWorkbook saves a workbook with a banner row, the vendor header and
// the given data rows.
func writeWorkbook(t *testing.T, path string, header []interface{}, rows ...[]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	all := append([][]interface{}{{"Scaffold report, exported 2021-03-02"}, header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func protein(i int, name, acc, mw string, count int) []interface{} {
	return []interface{}{i, name, acc, mw, count}
}

func TestReadSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "KCB09.xlsx")
	writeWorkbook(t, path, vendorHeader,
		protein(1, "Elongation factor 1-alpha", "P0CY35", "49 kDa", 12),
		protein(2, "Heat shock protein 70", "Q9XYZ1", "71kDa", 7),
	)

	table, err := ReadSheet(path, "KCB09")
	require.NoError(t, err)

	assert.Equal(t, []Record{
		{Strain: "KCB09", Accession: "P0CY35", Protein: "Elongation factor 1-alpha", MolecularWeight: "49 ", SpectrumCount: "12"},
		{Strain: "KCB09", Accession: "Q9XYZ1", Protein: "Heat shock protein 70", MolecularWeight: "71", SpectrumCount: "7"},
	}, table.Records)
}

func TestReadSheetStripsEveryUnitOccurrence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.xlsx")
	writeWorkbook(t, path, vendorHeader,
		protein(1, "p", "a1", "12 kDa", 1),
		protein(2, "q", "a2", "kDa 3 kDa", 2),
		protein(3, "r", "a3", "8", 3),
	)

	table, err := ReadSheet(path, "A")
	require.NoError(t, err)
	for _, r := range table.Records {
		assert.NotContains(t, r.MolecularWeight, UnitSuffix)
	}
}

func TestReadSheetTooFewColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrow.xlsx")
	writeWorkbook(t, path,
		[]interface{}{"#", "Identified Proteins", "Accession Number"},
		[]interface{}{1, "p", "a1"},
	)

	_, err := ReadSheet(path, "narrow")
	var structErr *StructuralReadError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, path, structErr.Path)
}

func TestReadSheetNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := ReadSheet(path, "broken")
	var structErr *StructuralReadError
	require.ErrorAs(t, err, &structErr)
}

func TestFromRowsMissingHeader(t *testing.T) {
	_, err := fromRows("x.xlsx", "x", [][]string{{"banner"}})
	var structErr *StructuralReadError
	require.ErrorAs(t, err, &structErr)
}

func TestFromRowsPadsShortRowsAndDropsBlankOnes(t *testing.T) {
	rows := [][]string{
		{"banner"},
		{"#", "Identified Proteins", "Accession Number", "Molecular Weight", "Spectrum Count"},
		{"1", "p", "a1", "5 kDa"},
		{},
		{"2", "q", "a2", "6 kDa", "4"},
	}
	table, err := fromRows("x.xlsx", "x", rows)
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, "", table.Records[0].SpectrumCount)
	assert.Equal(t, "4", table.Records[1].SpectrumCount)
}

func TestFromRowsDropsRowsWithOnlyTheIndex(t *testing.T) {
	rows := [][]string{
		{"banner"},
		{"#", "Identified Proteins", "Accession Number", "Molecular Weight", "Spectrum Count"},
		{"1", "p", "a1", "5 kDa", "3"},
		{"2"},
		{"3", "", "", "", ""},
	}
	table, err := fromRows("x.xlsx", "x", rows)
	require.NoError(t, err)

	require.Len(t, table.Records, 1)
	assert.Equal(t, "a1", table.Records[0].Accession)
}

func TestFromRowsNarrowHeaderWithWideData(t *testing.T) {
	rows := [][]string{
		{"banner"},
		{"#", "Identified Proteins", "Accession Number"},
		{"1", "p", "a1", "5 kDa", "3"},
	}
	_, err := fromRows("x.xlsx", "x", rows)

	var structErr *StructuralReadError
	require.ErrorAs(t, err, &structErr)
	assert.Contains(t, structErr.Reason, "header has 3 columns")
}

func TestConcatEmpty(t *testing.T) {
	_, err := Concat(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestConcatRowCount(t *testing.T) {
	a := &Table{Records: make([]Record, 3)}
	b := &Table{Records: make([]Record, 0)}
	c := &Table{Records: make([]Record, 4)}

	got, err := Concat([]*Table{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, a.Len()+b.Len()+c.Len(), got.Len())
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTSV(&buf, &Table{Records: []Record{
		{Strain: "A", Accession: "P1", Protein: "kinase", MolecularWeight: "30 ", SpectrumCount: "2"},
	}})
	require.NoError(t, err)

	assert.Equal(t,
		"strain\taccession\tprotein\tmolecular_weight\tspectrum_count\n"+
			"A\tP1\tkinase\t30 \t2\n",
		buf.String())
}

func TestConvertEndToEnd(t *testing.T) {
	in := t.TempDir()
	writeWorkbook(t, filepath.Join(in, "B.xlsx"), vendorHeader,
		protein(1, "b1", "B001", "10 kDa", 1),
		protein(2, "b2", "B002", "20 kDa", 2),
	)
	writeWorkbook(t, filepath.Join(in, "A.xlsx"), vendorHeader,
		protein(1, "a1", "A001", "11 kDa", 3),
		protein(2, "a2", "A002", "12 kDa", 4),
		protein(3, "a3", "A003", "13 kDa", 5),
	)
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.csv"), []byte("x"), 0o644))

	out := filepath.Join(t.TempDir(), "combined.tsv")
	table, err := Convert(in, out)
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 6)

	assert.Equal(t, strings.Join(Columns, "\t"), lines[0])
	for i, line := range lines[1:] {
		strain := strings.SplitN(line, "\t", 2)[0]
		if i < 3 {
			assert.Equal(t, "A", strain, "row %d", i)
		} else {
			assert.Equal(t, "B", strain, "row %d", i)
		}
	}
	assert.Equal(t, "A\tA001\ta1\t11 \t3", lines[1])
}

func TestConvertNoWorkbooks(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "readme.txt"), []byte("x"), 0o644))
	out := filepath.Join(t.TempDir(), "combined.tsv")

	_, err := Convert(in, out)
	require.ErrorIs(t, err, ErrEmptyInput)
	assert.NoFileExists(t, out)
}

func TestConvertMalformedWorkbookWritesNothing(t *testing.T) {
	in := t.TempDir()
	writeWorkbook(t, filepath.Join(in, "A.xlsx"), vendorHeader, protein(1, "a1", "A001", "11 kDa", 3))
	writeWorkbook(t, filepath.Join(in, "B.xlsx"), []interface{}{"#", "Identified Proteins"}, []interface{}{1, "b"})
	out := filepath.Join(t.TempDir(), "combined.tsv")

	_, err := Convert(in, out)
	var structErr *StructuralReadError
	require.ErrorAs(t, err, &structErr)
	assert.NoFileExists(t, out)
}

func TestStrainFromFile(t *testing.T) {
	assert.Equal(t, "KCB09", StrainFromFile("/data/KCB09.xlsx"))
	assert.Equal(t, "run1", StrainFromFile("run1.xlsx.xlsx"))
}
