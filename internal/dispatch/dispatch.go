// Package dispatch routes tokens through rank-ordered transforms.
//
// Each token runs through every matching transform in rank order. A
// transform may answer at once or return a pending future; the tokens it
// produces continue at the next rank. Process keeps the output in input
// order however the pending results complete.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"mwconv/internal/async"
	"mwconv/internal/errors"
	"mwconv/internal/expand"
	"mwconv/internal/token"
)

// AnyKind registers a transform for every token kind.
const AnyKind token.Kind = math.MaxUint8

// Result is a transform's answer. Pending, when set, replaces Tokens.
type Result struct {
	Tokens  []token.Token
	Pending *async.Future[[]token.Token]
}

// IsPending reports whether the result completes later.
func (r Result) IsPending() bool { return r.Pending != nil }

// Handler transforms one token.
type Handler func(ctx context.Context, tok token.Token, frame *expand.Frame) (Result, error)

type transform struct {
	name    string
	rank    float64
	kind    token.Kind
	handler Handler
}

func (t *transform) matches(k token.Kind) bool {
	return t.kind == AnyKind || t.kind == k
}

// Manager holds the registered transforms.
type Manager struct {
	mu         sync.RWMutex
	transforms []*transform
	names      map[string]struct{}
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]struct{})}
}

// AddTransform registers handler at rank for tokens of kind.
// Panics if name is already registered.
func (m *Manager) AddTransform(name string, rank float64, kind token.Kind, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.names[name]; exists {
		panic(fmt.Sprintf("transform already registered: %s", name))
	}
	m.names[name] = struct{}{}
	m.transforms = append(m.transforms, &transform{name: name, rank: rank, kind: kind, handler: handler})
	sort.SliceStable(m.transforms, func(i, j int) bool {
		return m.transforms[i].rank < m.transforms[j].rank
	})
}

// Names lists the transforms in rank order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.transforms))
	for i, t := range m.transforms {
		out[i] = t.name
	}
	return out
}

// Process runs tokens through the transforms. All pending results are
// started before the first one is awaited. The first error is returned.
func (m *Manager) Process(ctx context.Context, tokens []token.Token, frame *expand.Frame) ([]token.Token, error) {
	m.mu.RLock()
	chain := make([]*transform, len(m.transforms))
	copy(chain, m.transforms)
	m.mu.RUnlock()

	slots := make([]*async.Future[[]token.Token], len(tokens))
	for i := range tokens {
		slots[i] = m.apply(ctx, chain, tokens[i], 0, frame)
	}
	return awaitAll(ctx, slots)
}

// apply runs tok through chain[from:].
func (m *Manager) apply(ctx context.Context, chain []*transform, tok token.Token, from int, frame *expand.Frame) *async.Future[[]token.Token] {
	for i := from; i < len(chain); i++ {
		t := chain[i]
		if !t.matches(tok.Kind) {
			continue
		}
		res, err := t.handler(ctx, tok, frame)
		if err != nil {
			return async.Failed[[]token.Token](errors.Wrapf(err, "transform %s", t.name))
		}
		next := i + 1
		if res.IsPending() {
			return async.Then(ctx, res.Pending, func(out []token.Token) ([]token.Token, error) {
				return m.continueAll(ctx, chain, out, next, frame)
			})
		}
		if len(res.Tokens) == 1 {
			tok = res.Tokens[0]
			continue
		}
		return m.fanOut(ctx, chain, res.Tokens, next, frame)
	}
	return async.Resolved([]token.Token{tok})
}

// fanOut continues several produced tokens without blocking when all of
// them finish synchronously.
func (m *Manager) fanOut(ctx context.Context, chain []*transform, toks []token.Token, from int, frame *expand.Frame) *async.Future[[]token.Token] {
	slots := make([]*async.Future[[]token.Token], len(toks))
	ready := true
	for i := range toks {
		slots[i] = m.apply(ctx, chain, toks[i], from, frame)
		ready = ready && slots[i].Ready()
	}
	if ready {
		out, err := awaitAll(ctx, slots)
		if err != nil {
			return async.Failed[[]token.Token](err)
		}
		return async.Resolved(out)
	}
	return async.Go(func() ([]token.Token, error) { return awaitAll(ctx, slots) })
}

func (m *Manager) continueAll(ctx context.Context, chain []*transform, toks []token.Token, from int, frame *expand.Frame) ([]token.Token, error) {
	return m.fanOut(ctx, chain, toks, from, frame).Await(ctx)
}

func awaitAll(ctx context.Context, slots []*async.Future[[]token.Token]) ([]token.Token, error) {
	out := make([]token.Token, 0, len(slots))
	for _, f := range slots {
		toks, err := f.Await(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, toks...)
	}
	return out, nil
}
