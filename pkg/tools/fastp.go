package tools

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/internal/util"
	"github.com/yumyai/strainpipe/logger"
	"github.com/yumyai/strainpipe/pkg/batch"
)

const (
	ForwardSuffix = "_R1.fastq.gz"
	ReverseSuffix = "_R2.fastq.gz"

	ReadsDir   = "processed_reads"
	ReportsDir = "processed_reads_reports"
)

type FastpRequest struct {
	InputDir  string
	OutputDir string
	Threads   string
	Program   string // defaults to "fastp"
}

// PlanFastp plans one paired-end fastp run per forward read file. The
// reverse mate is derived from the sample name; when it is missing the run
// is still planned and fastp's own failure is recorded.
func PlanFastp(req FastpRequest) (*batch.Plan, error) {
	matches, err := batch.MatchSuffix(req.InputDir, ForwardSuffix)
	if err != nil {
		return nil, err
	}

	reads := filepath.Join(req.OutputDir, ReadsDir)
	reports := filepath.Join(req.OutputDir, ReportsDir)
	plan := &batch.Plan{Name: "fastp", Dirs: []string{reads, reports}}

	for _, m := range matches {
		r1 := filepath.Join(req.InputDir, m.ID+ForwardSuffix)
		r2 := filepath.Join(req.InputDir, m.ID+ReverseSuffix)
		if !util.FileExists(r2) {
			logger.Warn("Reverse reads not found", zap.String("strain", m.ID), zap.String("path", r2))
		}

		plan.Invocations = append(plan.Invocations, batch.Invocation{
			ItemID:  m.ID,
			Program: programOr(req.Program, "fastp"),
			Args: []string{
				"-i", r1,
				"-I", r2,
				"-o", filepath.Join(reads, m.ID+"_out_R1.fastq.gz"),
				"-O", filepath.Join(reads, m.ID+"_out_R2.fastq.gz"),
				"-h", filepath.Join(reports, m.ID+".html"),
				"-j", filepath.Join(reports, m.ID+".json"),
				"-w", req.Threads,
			},
		})
	}
	return plan, nil
}
