// Package tools turns an input directory into a batch.Plan for each of the
// wrapped bioinformatics programs. Planning only reads the file system.
package tools

import (
	"fmt"
	"path/filepath"

	"github.com/yumyai/strainpipe/pkg/batch"
	"github.com/yumyai/strainpipe/pkg/genometable"
)

// GenomeSuffix marks assembled genomes for prokka and antiSMASH.
const GenomeSuffix = ".fna"

type AnnotateRequest struct {
	InputDir  string
	OutputDir string
	Threads   string
	Program   string // defaults to "prokka"
}

// PlanAnnotate plans one prokka run per genome. Every strain must be in the
// genome table; the first one missing fails the whole plan. prokka refuses
// an existing --outdir, so only OutputDir itself is created.
func PlanAnnotate(req AnnotateRequest, table *genometable.Table) (*batch.Plan, error) {
	matches, err := batch.MatchSuffix(req.InputDir, GenomeSuffix)
	if err != nil {
		return nil, err
	}

	plan := &batch.Plan{Name: "annotate", Dirs: []string{req.OutputDir}}
	for _, m := range matches {
		taxon, err := table.Lookup(m.ID)
		if err != nil {
			return nil, fmt.Errorf("annotate %s: %w", m.Name, err)
		}

		plan.Invocations = append(plan.Invocations, batch.Invocation{
			ItemID:  m.ID,
			Program: programOr(req.Program, "prokka"),
			Args: []string{
				"--outdir", filepath.Join(req.OutputDir, m.ID),
				"--prefix", m.ID,
				"--genus", taxon.Genus,
				"--species", taxon.Species,
				"--strain", m.ID,
				"--cpus", req.Threads,
				filepath.Join(req.InputDir, m.Name),
			},
		})
	}
	return plan, nil
}

func programOr(program, fallback string) string {
	if program == "" {
		return fallback
	}
	return program
}
