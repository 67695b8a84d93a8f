package cmd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cottand/assay/assay"
	"github.com/cottand/assay/internal/log"
	"github.com/cottand/assay/prover"
	"github.com/spf13/cobra"
)

// proverFlags are the flags shared by every command that runs the prover
type proverFlags struct {
	config   *string
	maxSteps *int
	parallel *int
	logLevel *int
	sections *[]string
}

func addProverFlags(cmd *cobra.Command) *proverFlags {
	return &proverFlags{
		config:   cmd.Flags().StringP("config", "c", "", "YAML file with prover limits"),
		maxSteps: cmd.Flags().Int("max-steps", 0, "maximum proof states per assertion, 0 for unbounded"),
		parallel: cmd.Flags().IntP("parallel", "p", 0, "assertions checked at once"),
		logLevel: cmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level"),
		sections: cmd.Flags().StringSlice("log-sections", []string{"prover"}, "sections whose debug and info logs are shown"),
	}
}

// proverConfig applies the flags to the config file, or to the default config when there is none.
// Flags left unset keep the configured value.
func (f *proverFlags) proverConfig(cmd *cobra.Command) (prover.Config, error) {
	log.SetLevel(slog.Level(*f.logLevel))
	log.EnableSections(*f.sections...)

	cfg := prover.DefaultConfig()
	if *f.config != "" {
		var err error
		if cfg, err = prover.LoadConfig(*f.config); err != nil {
			return prover.Config{}, err
		}
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = *f.maxSteps
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallelism = *f.parallel
	}
	if err := cfg.Validate(); err != nil {
		return prover.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// loadTarget loads the module at target, or every *.yaml module when target is a folder
func loadTarget(target string) ([]*assay.Module, error) {
	target, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of target: %w", err)
	}
	stat, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("could not stat target: %w", err)
	}

	var folderFS fs.FS
	var paths []string
	if stat.IsDir() {
		folderFS = os.DirFS(target)
		if paths, err = fs.Glob(folderFS, "*.yaml"); err != nil {
			return nil, fmt.Errorf("could not list modules: %w", err)
		}
	} else {
		folderFS = os.DirFS(filepath.Dir(target))
		paths = []string{filepath.Base(target)}
	}

	modules := make([]*assay.Module, 0, len(paths))
	for _, p := range paths {
		m, err := assay.LoadModule(folderFS, p)
		if err != nil {
			return nil, fmt.Errorf("could not load module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, nil
}
