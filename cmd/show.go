package cmd

import (
	"fmt"

	"github.com/cottand/assay/assay"
	"github.com/spf13/cobra"
)

var ShowCmd = &cobra.Command{
	Use:          "show module.yaml --assertion name",
	Short:        "Print the proof tree of a single assertion",
	RunE:         runShow,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	showFlags     *proverFlags
	showAssertion *string
)

func init() {
	showFlags = addProverFlags(ShowCmd)
	showAssertion = ShowCmd.Flags().StringP("assertion", "a", "", "name of the assertion to prove")
	_ = ShowCmd.MarkFlagRequired("assertion")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := showFlags.proverConfig(cmd)
	if err != nil {
		return err
	}
	modules, err := loadTarget(args[0])
	if err != nil {
		return err
	}
	if len(modules) != 1 {
		return fmt.Errorf("expected a single module, found %d", len(modules))
	}

	r, err := assay.Prove(cmd.Context(), modules[0], cfg, *showAssertion)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	writeReport(out, r)
	if r.Proof == nil {
		return fmt.Errorf("assertion %s could not be translated", r.Assertion.Name)
	}
	if err := r.Proof.Format(out, r.Proof.Root()); err != nil {
		return fmt.Errorf("could not print proof: %w", err)
	}
	return nil
}
