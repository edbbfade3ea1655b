package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mwconv/internal/errors"
	"mwconv/internal/prof"
)

// setupProfiling starts the profilers requested on the command line. The
// cleanup is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, errors.Wrap(err, "failed to get cpu-profile flag")
	}
	if cfg.Heap, err = flags.GetString("mem-profile"); err != nil {
		return nil, errors.Wrap(err, "failed to get mem-profile flag")
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, errors.Wrap(err, "failed to get runtime-trace flag")
	}
	if !cfg.Enabled() {
		return func() {}, nil
	}
	p, err := prof.Start(cfg)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := p.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
		}
	}, nil
}
