package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/justsurfingit/rfp-manager/internal/extraction"
	"github.com/justsurfingit/rfp-manager/internal/services"
	"github.com/spf13/cobra"
)

type scanOptions struct {
	taxonomy  string
	hints     string
	threshold float64
	timeout   time.Duration
}

func newScanCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Extract skills and languages from a file or stdin",
		Long:  "Runs the extraction pipeline on a job description (plain text or HTML) and prints the JSON result.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.taxonomy, "taxonomy", "t", envOr("TAXONOMY_PATH", "skill_db_relax_20.json"), "Path to the skill taxonomy (JSON or YAML)")
	cmd.Flags().StringVar(&opts.hints, "hints", os.Getenv("FREQUENCY_HINTS_PATH"), "Path to token frequency hints (optional)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", extraction.DefaultThreshold, "Minimum n-gram score")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", services.DefaultExtractionTimeout, "Extraction time limit")
	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts *scanOptions) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	m, err := services.LoadMatcher(opts.taxonomy, opts.hints)
	if err != nil {
		return err
	}
	svc := services.NewSkillService(m, services.SkillSettings{Threshold: opts.threshold, Timeout: opts.timeout})

	res, err := svc.Extract(cmd.Context(), string(text))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
