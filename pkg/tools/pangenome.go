package tools

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/internal/util"
	"github.com/yumyai/strainpipe/logger"
	"github.com/yumyai/strainpipe/pkg/batch"
)

// PepDir is where PyParanoid expects one <strain>.pep.fa per genome.
const PepDir = "pep"

type PangenomeRequest struct {
	InputDir   string // one prokka output directory per strain
	OutputDir  string
	StrainList string
	DBName     string
	Threads    string
	Program    string // defaults to "PropagateGroups.py"
}

// PlanPangenome stages every strain's prokka proteins into OutputDir/pep and
// plans a single PropagateGroups run over the staged set. Each <stem>.faa is
// checked up front so a missing or unreadable proteome fails before
// anything is copied.
func PlanPangenome(req PangenomeRequest) (*batch.Plan, error) {
	dirs, err := batch.SubDirs(req.InputDir)
	if err != nil {
		return nil, err
	}

	listed, err := ReadStrainList(req.StrainList)
	if err != nil {
		return nil, err
	}

	pep := filepath.Join(req.OutputDir, PepDir)
	plan := &batch.Plan{Name: "pangenome", Dirs: []string{req.OutputDir, pep}}

	for _, dir := range dirs {
		stem := util.Stem(dir)
		src := filepath.Join(req.InputDir, dir, stem+".faa")

		n, err := CountProteins(src)
		if err != nil {
			return nil, &batch.StagingError{ItemID: stem, Path: src, Err: err}
		}
		logger.Debug("Proteome found", zap.String("strain", stem), zap.String("path", src), zap.Int("proteins", n))

		if !listed[stem] {
			logger.Warn("Strain not in strain list", zap.String("strain", stem), zap.String("path", req.StrainList))
		}

		plan.Copies = append(plan.Copies, batch.Copy{
			ItemID: stem,
			Src:    src,
			Dst:    filepath.Join(pep, stem+".pep.fa"),
		})
	}

	plan.Invocations = []batch.Invocation{{
		ItemID:  req.DBName,
		Program: programOr(req.Program, "PropagateGroups.py"),
		Args: []string{
			"--cpus", req.Threads,
			req.OutputDir,
			req.StrainList,
			filepath.Join(req.OutputDir, req.DBName),
		},
	}}
	return plan, nil
}

// CountProteins scans a protein FASTA file and returns its record count.
func CountProteins(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := fasta.NewReader(f, linear.NewSeq("", nil, alphabet.Protein))
	sc := seqio.NewScanner(r)

	n := 0
	for sc.Next() {
		n++
	}
	if err := sc.Error(); err != nil {
		return n, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}

// ReadStrainList returns the strain names of a PyParanoid strain list, one
// per line. Blank lines and '#' comments are ignored.
func ReadStrainList(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open strain list: %w", err)
	}
	defer f.Close()

	strains := map[string]bool{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		strains[line] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read strain list: %w", err)
	}
	return strains, nil
}
