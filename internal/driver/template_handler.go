package driver

import (
	"context"

	"mwconv/internal/async"
	"mwconv/internal/dispatch"
	"mwconv/internal/expand"
	"mwconv/internal/token"
)

const (
	// TemplateHandlerName prefixes the names the handler registers under.
	TemplateHandlerName = "TemplateHandler"
	// TemplateHandlerRank runs document-level expansion before attributes.
	TemplateHandlerRank = 1.1
)

// TemplateHandler expands document-level Template and TemplateArg tokens.
// Its output continues through the later transforms, so tags produced by a
// template still reach the attribute stage.
type TemplateHandler struct {
	exp *expand.TemplateExpander
}

// NewTemplateHandler creates a handler expanding through exp.
func NewTemplateHandler(exp *expand.TemplateExpander) *TemplateHandler {
	return &TemplateHandler{exp: exp}
}

// Register adds the handler for both macro kinds.
func (h *TemplateHandler) Register(m *dispatch.Manager) {
	m.AddTransform(TemplateHandlerName+":onTemplate", TemplateHandlerRank, token.Template, h.Handle)
	m.AddTransform(TemplateHandlerName+":onTemplateArg", TemplateHandlerRank, token.TemplateArg, h.Handle)
}

// Handle expands tok asynchronously.
func (h *TemplateHandler) Handle(ctx context.Context, tok token.Token, frame *expand.Frame) (dispatch.Result, error) {
	pending := async.Go(func() ([]token.Token, error) {
		return h.exp.ExpandTokens(ctx, []token.Token{tok}, frame)
	})
	return dispatch.Result{Pending: pending}, nil
}
