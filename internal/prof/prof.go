// Package prof wraps the runtime profilers behind a single start/stop pair.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"mwconv/internal/errors"
)

// Config names the output file of each profiler. Empty paths are skipped.
type Config struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profiler is requested.
func (c Config) Enabled() bool {
	return c.CPU != "" || c.Heap != "" || c.Trace != ""
}

// Profiler owns the files of a running profile. Stop may be called more than once.
type Profiler struct {
	cfg       Config
	cpuFile   *os.File
	traceFile *os.File
	stopped   bool
}

// Start enables the profilers named in cfg. On error nothing is left running.
func Start(cfg Config) (*Profiler, error) {
	p := &Profiler{cfg: cfg}
	if cfg.CPU != "" {
		f, err := os.Create(cfg.CPU)
		if err != nil {
			return nil, errors.Wrap(err, "creating cpu profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "starting cpu profile")
		}
		p.cpuFile = f
	}
	if cfg.Trace != "" {
		f, err := os.Create(cfg.Trace)
		if err != nil {
			_ = p.Stop()
			return nil, errors.Wrap(err, "creating runtime trace")
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = p.Stop()
			return nil, errors.Wrap(err, "starting runtime trace")
		}
		p.traceFile = f
	}
	return p, nil
}

// Stop ends the CPU profile and runtime trace, then writes the heap profile.
func (p *Profiler) Stop() error {
	if p == nil || p.stopped {
		return nil
	}
	p.stopped = true

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.traceFile != nil {
		trace.Stop()
		keep(p.traceFile.Close())
	}
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		keep(p.cpuFile.Close())
	}
	if p.cfg.Heap != "" {
		keep(writeHeap(p.cfg.Heap))
	}
	return firstErr
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating heap profile")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
