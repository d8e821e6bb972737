package tools

import (
	"path/filepath"

	"github.com/yumyai/strainpipe/pkg/batch"
)

type AntismashRequest struct {
	InputDir  string
	OutputDir string
	Threads   string
	Program   string // defaults to "antismash"
}

// PlanAntismash plans one bacterial antiSMASH run per genome, each writing
// into its own OutputDir/<strain> folder.
func PlanAntismash(req AntismashRequest) (*batch.Plan, error) {
	matches, err := batch.MatchSuffix(req.InputDir, GenomeSuffix)
	if err != nil {
		return nil, err
	}

	plan := &batch.Plan{Name: "antismash", Dirs: []string{req.OutputDir}}
	for _, m := range matches {
		out := filepath.Join(req.OutputDir, m.ID)
		plan.Invocations = append(plan.Invocations, batch.Invocation{
			ItemID:  m.ID,
			Program: programOr(req.Program, "antismash"),
			Args: []string{
				"-c", req.Threads,
				"--taxon", "bacteria",
				"--clusterblast",
				"--knownclusterblast",
				"--smcogs",
				"--outputfolder", out,
				filepath.Join(req.InputDir, m.Name),
			},
			Dirs: []string{out},
		})
	}
	return plan, nil
}
