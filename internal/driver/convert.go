// Package driver runs the conversion pipeline: load, lex, then template and
// attribute expansion through the dispatch manager.
package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mwconv/internal/attrexp"
	"mwconv/internal/cache"
	"mwconv/internal/diag"
	"mwconv/internal/dispatch"
	"mwconv/internal/errors"
	"mwconv/internal/expand"
	"mwconv/internal/lexer"
	"mwconv/internal/logger"
	"mwconv/internal/observ"
	"mwconv/internal/session"
	"mwconv/internal/source"
	"mwconv/internal/token"
	"mwconv/internal/trace"
)

// Result is one converted document.
type Result struct {
	Path   string
	FileID source.FileID
	Files  *source.FileSet
	Tokens []token.Token
	Bag    *diag.Bag
	Timing observ.Report
	// RunID identifies the session that produced Tokens; empty on a cache hit.
	RunID  string
	Cached bool
	// Err is the expansion failure, if any. Tokens is nil when it is set.
	Err error
}

// Convert converts the document at path.
func Convert(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	c := newConverter(fs, opts)
	id, err := fs.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return c.single(ctx, id)
}

// ConvertSource converts an in-memory document named name.
func ConvertSource(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	c := newConverter(fs, opts)
	return c.single(ctx, fs.AddVirtual(name, src))
}

// converter holds what is shared by every document of one run. The FileSet
// is fully loaded before any document is converted and only read afterwards.
type converter struct {
	opts   Options
	files  *source.FileSet
	lib    *expand.Library
	libBag *diag.Bag
	fprint []string
	log    *zap.SugaredLogger
	tracer trace.Tracer
}

func newConverter(fs *source.FileSet, opts Options) *converter {
	c := &converter{
		opts:   opts,
		files:  fs,
		libBag: diag.NewBag(opts.MaxDiagnostics),
		fprint: opts.fingerprint(),
		log:    opts.Logger,
		tracer: opts.Tracer,
	}
	if c.log == nil {
		c.log = logger.Named("driver")
	}
	if c.tracer == nil {
		c.tracer = trace.Nop
	}
	c.lib = expand.NewLibraryIn(fs, opts.Templates, &diag.BagReporter{Bag: c.libBag})
	c.log.Debugw("template library ready", "templates", c.lib.Len(), "warnings", c.libBag.Len())
	return c
}

func (c *converter) single(ctx context.Context, id source.FileID) (*Result, error) {
	res := c.convert(ctx, id)
	res.Bag.Merge(c.libBag)
	if res.Err != nil {
		return &res, res.Err
	}
	return &res, nil
}

func (c *converter) emit(ev Event) {
	if c.opts.Progress != nil {
		c.opts.Progress.OnEvent(ev)
	}
}

// convert never returns early without a Bag; failures are recorded in Err.
func (c *converter) convert(ctx context.Context, id source.FileID) (res Result) {
	file := c.files.Get(id)
	res = Result{
		Path:   file.Path,
		FileID: id,
		Files:  c.files,
		Bag:    diag.NewBag(c.opts.MaxDiagnostics),
	}
	started := time.Now()
	timer := observ.NewTimer()
	span := trace.Begin(c.tracer, trace.ScopeDocument, "convert", trace.CurrentSpan(ctx)).
		WithExtra("path", file.Path)
	ctx = trace.WithSpan(ctx, span)

	defer func() {
		res.Timing = timer.Report()
		if c.opts.Timings {
			appendTimingDiagnostic(res.Bag, timingPayload{Kind: "convert", Path: file.Path, TotalMS: res.Timing.TotalMS, Phases: res.Timing.Phases})
		}
		status := StatusDone
		switch {
		case res.Err != nil:
			status = StatusError
		case res.Cached:
			status = StatusCached
		}
		span.End(string(status))
		c.emit(Event{File: file.Path, Stage: StageExpand, Status: status, Err: res.Err, Elapsed: time.Since(started)})
	}()

	key := cache.Key(file.Hash, c.fprint...)
	if c.fromCache(key, &res, span.ID()) {
		return res
	}

	c.emit(Event{File: file.Path, Stage: StageLex, Status: StatusWorking})
	idx := timer.Begin("lex")
	toks := lexer.Tokenize(file, lexer.Options{Reporter: &diag.BagReporter{Bag: res.Bag}})
	timer.End(idx, fmt.Sprintf("%d tokens", len(toks)))

	c.emit(Event{File: file.Path, Stage: StageExpand, Status: StatusWorking})
	idx = timer.Begin("expand")
	sess := session.New(session.WithLogger(c.log.With("path", file.Path)), session.WithTracer(c.tracer))
	rep := diag.NewDedupReporter(&diag.BagReporter{Bag: res.Bag})
	out, err := c.pipeline(sess, rep).Process(ctx, toks, expand.NewFrame(c.opts.MaxDepth, c.opts.WrapTemplates))
	timer.End(idx, fmt.Sprintf("%d ids", sess.NextUID()-1))
	res.RunID = sess.RunID
	if err != nil {
		res.Err = errors.Wrapf(err, "converting %s", file.Path)
		res.Bag.Add(expansionDiagnostic(err, id))
		sess.Log.Warnw("conversion failed", "error", err)
		return res
	}
	res.Tokens = out

	if c.opts.Cache != nil {
		payload := &cache.Payload{Path: file.Path, Tokens: out, Diagnostics: res.Bag.Items()}
		if err := c.opts.Cache.Put(key, payload); err != nil {
			res.Bag.Add(diag.NewWarning(diag.IOCacheError, source.Span{File: id}, "cache write failed: "+err.Error()))
		}
	}
	return res
}

// pipeline builds the transforms for one session. r receives expansion warnings.
func (c *converter) pipeline(sess *session.Session, r diag.Reporter) *dispatch.Manager {
	exp := expand.NewTemplateExpander(c.lib, sess.Log, r)
	m := dispatch.NewManager()
	NewTemplateHandler(exp).Register(m)
	attrexp.New(sess, exp, attrexp.Options{WrapTemplates: c.opts.WrapTemplates}).Register(m)
	return m
}

// fromCache fills res from the disk cache and marks the hit under the
// document's trace span.
func (c *converter) fromCache(key cache.Digest, res *Result, parent uint64) bool {
	if c.opts.Cache == nil {
		return false
	}
	var p cache.Payload
	ok, err := c.opts.Cache.Get(key, &p)
	if err != nil {
		res.Bag.Add(diag.NewWarning(diag.IOCacheError, source.Span{File: res.FileID}, "cache read failed: "+err.Error()))
		return false
	}
	if !ok {
		return false
	}
	res.Tokens = rebindTokens(p.Tokens, res.FileID)
	for _, d := range p.Diagnostics {
		res.Bag.Add(rebindDiagnostic(d, res.FileID))
	}
	res.Cached = true
	trace.Point(c.tracer, trace.ScopeDocument, "cache-hit", key.String(), parent)
	c.log.Debugw("cache hit", "path", res.Path, "key", key.String())
	return true
}

func expansionDiagnostic(err error, id source.FileID) diag.Diagnostic {
	code := diag.XfmHandlerFailed
	if errors.IsRecursionDepth(err) {
		code = diag.XfmRecursionDepth
	}
	d := diag.New(diag.SevError, code, source.Span{File: id}, err.Error())
	for _, hint := range errors.GetAllHints(err) {
		d = d.WithNote(source.Span{File: id}, hint)
	}
	return d
}
