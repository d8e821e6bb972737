package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/strainpipe/pkg/batch"
	"github.com/yumyai/strainpipe/pkg/genometable"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func loadTable(t *testing.T, body string) *genometable.Table {
	t.Helper()
	table, err := genometable.Read(strings.NewReader(body))
	require.NoError(t, err)
	return table
}

func TestPlanAnnotate(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "KCB09.fna"), ">c1\nACGT\n")
	writeFile(t, filepath.Join(in, "KCB09.gbk"), "")

	table := loadTable(t, "strain,genus,species\nKCB09,Pythium,insidiosum\n")
	plan, err := PlanAnnotate(AnnotateRequest{InputDir: in, OutputDir: out, Threads: "8"}, table)
	require.NoError(t, err)

	assert.Equal(t, []string{out}, plan.Dirs)
	require.Len(t, plan.Invocations, 1)
	inv := plan.Invocations[0]
	assert.Equal(t, "prokka", inv.Program)
	assert.Equal(t, []string{
		"--outdir", filepath.Join(out, "KCB09"),
		"--prefix", "KCB09",
		"--genus", "Pythium",
		"--species", "insidiosum",
		"--strain", "KCB09",
		"--cpus", "8",
		filepath.Join(in, "KCB09.fna"),
	}, inv.Args)
	assert.Empty(t, inv.Dirs, "prokka creates its own outdir")
}

func TestPlanAnnotateMissingStrainFailsBeforeAnyRun(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "A.fna"), "")
	writeFile(t, filepath.Join(in, "X.fna"), "")

	table := loadTable(t, "strain,genus,species\nA,Pythium,insidiosum\n")
	plan, err := PlanAnnotate(AnnotateRequest{InputDir: in, OutputDir: t.TempDir(), Threads: "1"}, table)

	var keyErr *genometable.KeyLookupError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "X", keyErr.Strain)
	assert.Nil(t, plan)
}

func TestPlanAntismash(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "B.fna"), "")
	writeFile(t, filepath.Join(in, "A.fna"), "")

	plan, err := PlanAntismash(AntismashRequest{InputDir: in, OutputDir: out, Threads: "4", Program: "/opt/as/antismash"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, itemIDs(plan))
	inv := plan.Invocations[0]
	assert.Equal(t, "/opt/as/antismash", inv.Program)
	assert.Equal(t, []string{
		"-c", "4",
		"--taxon", "bacteria",
		"--clusterblast", "--knownclusterblast", "--smcogs",
		"--outputfolder", filepath.Join(out, "A"),
		filepath.Join(in, "A.fna"),
	}, inv.Args)
	assert.Equal(t, []string{filepath.Join(out, "A")}, inv.Dirs)
}

func TestPlanFastp(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "S1_R1.fastq.gz"), "")
	writeFile(t, filepath.Join(in, "S1_R2.fastq.gz"), "")
	writeFile(t, filepath.Join(in, "S2_R1.fastq.gz"), "") // mate missing, still planned

	plan, err := PlanFastp(FastpRequest{InputDir: in, OutputDir: out, Threads: "2"})
	require.NoError(t, err)

	reads := filepath.Join(out, ReadsDir)
	reports := filepath.Join(out, ReportsDir)
	assert.Equal(t, []string{reads, reports}, plan.Dirs)
	assert.Equal(t, []string{"S1", "S2"}, itemIDs(plan))

	assert.Equal(t, []string{
		"-i", filepath.Join(in, "S1_R1.fastq.gz"),
		"-I", filepath.Join(in, "S1_R2.fastq.gz"),
		"-o", filepath.Join(reads, "S1_out_R1.fastq.gz"),
		"-O", filepath.Join(reads, "S1_out_R2.fastq.gz"),
		"-h", filepath.Join(reports, "S1.html"),
		"-j", filepath.Join(reports, "S1.json"),
		"-w", "2",
	}, plan.Invocations[0].Args)
}

func TestPlanPangenome(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "KCB09", "KCB09.faa"), ">p1\nMKVL\n>p2\nMAAG\n")
	writeFile(t, filepath.Join(in, "EQ04", "EQ04.faa"), ">p1\nMSTT\n")
	writeFile(t, filepath.Join(in, "summary.txt"), "")
	strains := filepath.Join(t.TempDir(), "strainlist.txt")
	writeFile(t, strains, "KCB09\nEQ04\n")

	plan, err := PlanPangenome(PangenomeRequest{
		InputDir: in, OutputDir: out, StrainList: strains, DBName: "pythiumDB", Threads: "16",
	})
	require.NoError(t, err)

	pep := filepath.Join(out, PepDir)
	assert.Equal(t, []string{out, pep}, plan.Dirs)
	assert.Equal(t, []batch.Copy{
		{ItemID: "EQ04", Src: filepath.Join(in, "EQ04", "EQ04.faa"), Dst: filepath.Join(pep, "EQ04.pep.fa")},
		{ItemID: "KCB09", Src: filepath.Join(in, "KCB09", "KCB09.faa"), Dst: filepath.Join(pep, "KCB09.pep.fa")},
	}, plan.Copies)

	require.Len(t, plan.Invocations, 1)
	inv := plan.Invocations[0]
	assert.Equal(t, "PropagateGroups.py", inv.Program)
	assert.Equal(t, []string{"--cpus", "16", out, strains, filepath.Join(out, "pythiumDB")}, inv.Args)
}

func TestPlanPangenomeMissingProteome(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(in, "KCB09"), 0o755))
	strains := filepath.Join(t.TempDir(), "strainlist.txt")
	writeFile(t, strains, "KCB09\n")

	_, err := PlanPangenome(PangenomeRequest{InputDir: in, OutputDir: t.TempDir(), StrainList: strains, DBName: "db", Threads: "1"})

	var stagingErr *batch.StagingError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, "KCB09", stagingErr.ItemID)
}

func TestCountProteins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.faa")
	writeFile(t, path, ">p1 hypothetical protein\nMKVL\nAAG\n>p2\nMSTT\n>p3\nM\n")

	n, err := CountProteins(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestReadStrainList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strains.txt")
	writeFile(t, path, "# strains\nKCB09\n\n  EQ04  \n")

	got, err := ReadStrainList(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"KCB09": true, "EQ04": true}, got)
}

func itemIDs(plan *batch.Plan) []string {
	ids := make([]string, 0, len(plan.Invocations))
	for _, inv := range plan.Invocations {
		ids = append(ids, inv.ItemID)
	}
	return ids
}
