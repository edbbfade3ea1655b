package attrexp

import (
	"context"

	"mwconv/internal/async"
	"mwconv/internal/dispatch"
	"mwconv/internal/expand"
	"mwconv/internal/session"
	"mwconv/internal/token"
	"mwconv/internal/trace"
)

const (
	// Name is the transform name the stage registers under.
	Name = "AttributeExpander:onToken"
	// Rank places the stage after template expansion and before anything
	// that needs resolved attributes.
	Rank = 1.11
)

// Options configures the stage.
type Options struct {
	// WrapTemplates enables producer tracking in the scan.
	WrapTemplates bool
}

// Stage expands tag attributes.
type Stage struct {
	sess *session.Session
	exp  expand.AttrExpander
	opts Options
}

// New creates a stage that expands through exp and takes grouping ids from sess.
func New(sess *session.Session, exp expand.AttrExpander, opts Options) *Stage {
	return &Stage{sess: sess, exp: exp, opts: opts}
}

// Register adds the stage to m for every token kind.
func (s *Stage) Register(m *dispatch.Manager) {
	m.AddTransform(Name, Rank, dispatch.AnyKind, s.Handle)
}

// Handle answers synchronously unless tok is a tag with attributes. In that
// case it issues one expansion for a clone of tok and returns a pending result.
func (s *Stage) Handle(ctx context.Context, tok token.Token, frame *expand.Frame) (dispatch.Result, error) {
	switch tok.Kind {
	case token.StartTag, token.SelfClosingTag:
		if len(tok.Attrs) == 0 {
			return dispatch.Result{Tokens: []token.Token{tok}}, nil
		}
	case token.EndTag, token.Text, token.Newline, token.Comment,
		token.Template, token.TemplateArg, token.Invalid, token.EOF:
		return dispatch.Result{Tokens: []token.Token{tok}}, nil
	}

	clone := tok.Clone()
	span := trace.Begin(s.sess.Tracer, trace.ScopeToken, "attrexp", trace.CurrentSpan(ctx)).
		WithExtra("tag", clone.Name)
	expanded := s.exp.ExpandAttrs(ctx, clone.Attrs, frame)

	pending := async.Go(func() ([]token.Token, error) {
		attrs, err := expanded.Await(ctx)
		if err != nil {
			span.End("failed")
			return nil, err
		}
		out, err := s.synthesize(clone, attrs)
		span.End("")
		return out, err
	})
	return dispatch.Result{Pending: pending}, nil
}
