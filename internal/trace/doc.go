// Package trace provides a tracing subsystem for the conversion pipeline.
//
// Tracing helps diagnose slow or stuck conversions: every document, every pass
// (lex, transform, render) and, at debug level, every pending token expansion
// can be recorded.
//
// # Usage
//
//	mwconv convert --trace=- --trace-level=phase page.wiki
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a conversion fails
//   - MultiTracer: fan-out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only ring dumps on failure
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-document events
//   - LevelDebug: everything including per-token expansions
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "transform", parentID)
//	defer span.End("")
package trace
