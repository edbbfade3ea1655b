package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mwconv/internal/errors"
	"mwconv/internal/trace"
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace flag")
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace-level flag")
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace-mode flag")
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace-ring-size flag")
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trace level")
	}
	// an output without a level traces passes
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trace mode")
	}
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	}
	if traceOutput == "" {
		cfg.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tracer")
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// dumpRing writes the in-memory trace after a failure, when one is kept.
func dumpRing(t trace.Tracer, w io.Writer) {
	var ring *trace.RingTracer
	switch rt := t.(type) {
	case *trace.RingTracer:
		ring = rt
	case *trace.MultiTracer:
		ring = rt.Ring()
	}
	if ring == nil {
		return
	}
	fmt.Fprintln(w, "trace (most recent events):")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
