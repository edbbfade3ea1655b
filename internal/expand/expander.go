package expand

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mwconv/internal/async"
	"mwconv/internal/diag"
	"mwconv/internal/errors"
	"mwconv/internal/logger"
	"mwconv/internal/provenance"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// AttrExpander resolves every sub-token field of an attribute list.
// The result has the same length and order as attrs; attrs is not modified.
type AttrExpander interface {
	ExpandAttrs(ctx context.Context, attrs []token.Attr, frame *Frame) *async.Future[[]token.Attr]
}

// TemplateExpander expands templates from a Library.
type TemplateExpander struct {
	lib *Library
	log *zap.SugaredLogger
	rep diag.Reporter
}

var _ AttrExpander = (*TemplateExpander)(nil)

// NewTemplateExpander creates an expander over lib. A nil log uses the global
// logger; a nil r drops diagnostics. r must be safe for concurrent use.
func NewTemplateExpander(lib *Library, log *zap.SugaredLogger, r diag.Reporter) *TemplateExpander {
	if log == nil {
		log = logger.Named("expand")
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	return &TemplateExpander{lib: lib, log: log, rep: r}
}

// ExpandAttrs expands the fields of attrs concurrently.
func (e *TemplateExpander) ExpandAttrs(ctx context.Context, attrs []token.Attr, frame *Frame) *async.Future[[]token.Attr] {
	return async.Go(func() ([]token.Attr, error) {
		return e.expandAttrs(ctx, attrs, frame, frame.Depth == 0)
	})
}

// ExpandTokens expands the macros of one token sequence. At document level
// with tracking on, every template expansion is wrapped in markers.
func (e *TemplateExpander) ExpandTokens(ctx context.Context, toks []token.Token, frame *Frame) ([]token.Token, error) {
	return e.expandSeq(ctx, toks, frame, frame.Depth == 0)
}

func (e *TemplateExpander) expandAttrs(ctx context.Context, attrs []token.Attr, frame *Frame, wrap bool) ([]token.Attr, error) {
	// index-addressed slots keep the order without a mutex
	out := make([]token.Attr, len(attrs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range attrs {
		g.Go(func() error {
			key, err := e.expandValue(gctx, attrs[i].Key, frame, wrap)
			if err != nil {
				return err
			}
			val, err := e.expandValue(gctx, attrs[i].Val, frame, wrap)
			if err != nil {
				return err
			}
			out[i] = token.Attr{Key: key, Val: val, Span: attrs[i].Span}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *TemplateExpander) expandValue(ctx context.Context, v token.Value, frame *Frame, wrap bool) (token.Value, error) {
	if !v.IsSeq() {
		return v, nil
	}
	toks, err := e.expandSeq(ctx, v.Toks, frame, wrap)
	if err != nil {
		return token.Value{}, err
	}
	return token.SeqOf(toks...), nil
}

func (e *TemplateExpander) expandSeq(ctx context.Context, toks []token.Token, frame *Frame, wrap bool) ([]token.Token, error) {
	out := make([]token.Token, 0, len(toks))
	for i := range toks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok := toks[i]
		switch tok.Kind {
		case token.Template:
			exp, err := e.expandTemplate(ctx, tok, frame, wrap)
			if err != nil {
				return nil, err
			}
			out = append(out, exp...)
		case token.TemplateArg:
			exp, err := e.expandArg(ctx, tok, frame)
			if err != nil {
				return nil, err
			}
			out = append(out, exp...)
		case token.StartTag, token.SelfClosingTag:
			// Document-level tags are left to the attribute stage; inside a
			// body only this frame knows the argument values.
			if frame.Depth > 0 && len(tok.Attrs) > 0 {
				attrs, err := e.expandAttrs(ctx, tok.Attrs, frame, false)
				if err != nil {
					return nil, err
				}
				tok = tok.Clone()
				tok.Attrs = attrs
			}
			out = append(out, tok)
		case token.Text, token.Newline, token.Comment, token.EndTag, token.Invalid, token.EOF:
			out = append(out, tok)
		}
	}
	return out, nil
}

func (e *TemplateExpander) expandTemplate(ctx context.Context, tok token.Token, frame *Frame, wrap bool) ([]token.Token, error) {
	target := tok.Name
	var params []token.Attr
	if len(tok.Attrs) > 0 {
		tv, err := e.expandValue(ctx, tok.Attrs[0].Key, frame, false)
		if err != nil {
			return nil, err
		}
		target = tv.String()
		params = tok.Attrs[1:]
	}
	args, err := e.expandArgs(ctx, params, frame)
	if err != nil {
		return nil, err
	}

	var body []token.Token
	if fn, first, ok := splitFunction(target); ok {
		body = fn(first, args)
	} else if tpl, found := e.lib.Lookup(target); found {
		name := NormalizeName(target)
		child := frame.Child(name, args)
		if child.Depth > child.MaxDepth {
			return nil, errors.WithHintf(
				errors.Wrapf(errors.ErrRecursionDepth, "template %q at depth %d", name, child.Depth),
				"raise [conversion] max_depth (now %d) or check %q for self-inclusion", child.MaxDepth, name)
		}
		body, err = e.expandSeq(ctx, tpl, child, false)
		if err != nil {
			return nil, err
		}
	} else {
		name := NormalizeName(target)
		e.log.Debugw("unknown template", "name", name, "depth", frame.Depth)
		diag.ReportWarning(e.rep, diag.XfmUnknownTemplate, tok.Span, "unknown template "+name).Emit()
		body = []token.Token{token.NewText("[[Template:" + name + "]]")}
	}

	if frame.Depth == 0 {
		rebase(body, tok.Span)
	}
	if !wrap || !frame.Tracking {
		return body, nil
	}
	out := make([]token.Token, 0, len(body)+2)
	out = append(out, provenance.OpenMarker(provenance.Template, tok.Data.Src))
	out = append(out, body...)
	return append(out, provenance.EndMarker(provenance.Template)), nil
}

// expandArgs resolves argument values in the caller's frame.
func (e *TemplateExpander) expandArgs(ctx context.Context, params []token.Attr, frame *Frame) (map[string][]token.Token, error) {
	args := make(map[string][]token.Token, len(params))
	for _, p := range params {
		v, err := e.expandValue(ctx, p.Val, frame, false)
		if err != nil {
			return nil, err
		}
		if v.IsSeq() {
			args[p.Key.String()] = v.Toks
		} else {
			args[p.Key.String()] = textOf(v.Str)
		}
	}
	return args, nil
}

func (e *TemplateExpander) expandArg(ctx context.Context, tok token.Token, frame *Frame) ([]token.Token, error) {
	if v, ok := frame.Arg(tok.Name); ok {
		return token.CloneAll(v), nil
	}
	for _, a := range tok.Attrs {
		if a.Key.String() != token.DefaultKey {
			continue
		}
		v, err := e.expandValue(ctx, a.Val, frame, false)
		if err != nil {
			return nil, err
		}
		if v.IsSeq() {
			return v.Toks, nil
		}
		return textOf(v.Str), nil
	}
	return []token.Token{token.NewText(tok.Data.Src)}, nil
}

// rebase points every span in toks at the invocation site. Bodies were lexed
// from the library's own documents, so their spans mean nothing to the caller.
func rebase(toks []token.Token, span source.Span) {
	for i := range toks {
		t := &toks[i]
		t.Span = span
		if len(t.Attrs) == 0 {
			continue
		}
		t.Attrs = token.CloneAttrs(t.Attrs)
		for j := range t.Attrs {
			a := &t.Attrs[j]
			a.Span = span
			rebase(a.Key.Toks, span)
			rebase(a.Val.Toks, span)
		}
	}
}
