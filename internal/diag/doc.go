// Package diag defines the diagnostic model shared by the lexer, the
// transform pipeline and the driver.
//
// Producers never format or print diagnostics. They report through a
// Reporter; the driver collects them in a Bag and the CLI renders them
// with FormatShort.
//
// # Data model
//
//   - Severity: Info, Warning, Error.
//   - Code: numeric identifier with a stable string ID (LEX1001, XFM2001, ...).
//   - Message: short, actionable text.
//   - Primary: the source.Span the diagnostic points at.
//   - Notes: optional secondary spans with extra context.
//
// Markup input is never rejected: every lexer diagnostic is a warning and
// the offending bytes are kept as text.
package diag
