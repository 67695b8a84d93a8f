package cmd

import (
	"fmt"
	"io"

	"github.com/cottand/assay/assay"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check ./folder|module.yaml...",
	Short:        "Check every assertion of the given modules",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var checkFlags *proverFlags

func init() {
	checkFlags = addProverFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := checkFlags.proverConfig(cmd)
	if err != nil {
		return err
	}

	var modules []*assay.Module
	for _, target := range args {
		loaded, err := loadTarget(target)
		if err != nil {
			return err
		}
		modules = append(modules, loaded...)
	}

	out := cmd.OutOrStdout()
	var total assay.Summary
	malformed := 0
	for _, m := range modules {
		_, _ = fmt.Fprintln(out, m.Path())
		for _, e := range m.FormatErrors() {
			_, _ = fmt.Fprintf(out, "  %s\n", e)
			malformed++
		}
		reports, err := assay.Check(cmd.Context(), m, cfg)
		if err != nil {
			return fmt.Errorf("could not check module %s: %w", m.Name(), err)
		}
		for _, r := range reports {
			writeReport(out, r)
		}
		s := assay.Summarize(reports)
		total.Valid += s.Valid
		total.Exhausted += s.Exhausted
		total.Errors += s.Errors
	}

	_, _ = fmt.Fprintln(out, total)
	if !total.OK() || malformed > 0 {
		return fmt.Errorf("%d assertions not shown valid, %d malformed declarations", total.Exhausted+total.Errors, malformed)
	}
	return nil
}

func writeReport(w io.Writer, r assay.Report) {
	_, _ = fmt.Fprintf(w, "  %s\n", r)
}
