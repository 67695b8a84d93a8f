//go:build !(js || wasm)

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cottand/assay/cmd"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "assay [subcommand]",
	Short:        "assay checks first-order assertions over integers, arrays and records",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.ShowCmd)
}
