package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mwconv/internal/diag"
	"mwconv/internal/errors"
	"mwconv/internal/observ"
	"mwconv/internal/source"
	"mwconv/internal/trace"
)

// DocumentExts are the extensions ConvertDir picks up.
var DocumentExts = []string{".wiki", ".mw"}

// Batch is the outcome of ConvertDir.
type Batch struct {
	Files   *source.FileSet
	Results []Result
	// Library holds warnings about the template bodies.
	Library *diag.Bag
	Timing  observ.Report
}

// Failed counts documents whose expansion failed or that could not be read.
func (b *Batch) Failed() int {
	n := 0
	for i := range b.Results {
		if b.Results[i].Err != nil {
			n++
		}
	}
	return n
}

// ListDocuments returns the sorted document paths under dir.
func ListDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range DocumentExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ConvertDir converts every document under dir in parallel. Results follow
// ListDocuments order. A document that fails to load or expand gets an error
// diagnostic and Err; the others still complete. Only cancellation aborts.
func ConvertDir(ctx context.Context, dir string, opts Options) (*Batch, error) {
	files, err := ListDocuments(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	fileSet := source.NewFileSet()
	c := newConverter(fileSet, opts)
	batch := &Batch{Files: fileSet, Library: c.libBag, Results: make([]Result, len(files))}
	if len(files) == 0 {
		return batch, nil
	}

	span := trace.Begin(c.tracer, trace.ScopeDriver, "convert-dir", trace.CurrentSpan(ctx)).
		WithExtra("dir", dir)
	ctx = trace.WithSpan(ctx, span)
	defer span.End("")

	timer := observ.NewTimer()
	loadIdx := timer.Begin("load")

	// FileSet is not safe for concurrent writes: load everything first
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make([]error, len(files))
	for i, path := range files {
		c.emit(Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileIDs[i], loadErrors[i] = fileSet.Load(path)
	}
	timer.End(loadIdx, "")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	convIdx := timer.Begin("convert")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr := loadErrors[i]; loadErr != nil {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, "failed to load file: "+loadErr.Error()))
				// index i is owned by this goroutine
				batch.Results[i] = Result{Path: path, Files: fileSet, Bag: bag, Err: errors.Wrapf(loadErr, "loading %s", path)}
				c.emit(Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}

			started := time.Now()
			batch.Results[i] = c.convert(gctx, fileIDs[i])
			c.log.Debugw("document converted", "path", path, "ms", time.Since(started).Milliseconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batch, err
	}
	timer.End(convIdx, "")
	batch.Timing = timer.Report()
	c.emit(Event{Stage: StageExpand, Status: StatusDone})
	return batch, nil
}
