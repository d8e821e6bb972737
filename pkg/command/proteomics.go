package command

import (
	"github.com/spf13/cobra"

	"github.com/yumyai/strainpipe/pkg/proteomics"
)

func newProteomicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "proteomics INPUT_DIR OUTPUT_TSV",
		Short: "Combine proteomics .xlsx reports into one tidy TSV",
		Long: `Reads every <strain>.xlsx in INPUT_DIR, keeps protein, accession, molecular
weight (without "kDa") and spectrum count, tags rows with the strain and
writes them all to OUTPUT_TSV.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := proteomics.Convert(args[0], args[1])
			return err
		},
	}
}
