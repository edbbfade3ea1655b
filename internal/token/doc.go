// Package token defines the markup token model shared by every pipeline stage.
// Invariants:
//   - Kind is a closed set; switches over Kind list every member.
//   - StartTag and SelfClosingTag are the only tag-classified kinds. EndTag, Text,
//     Newline, Comment, Template and TemplateArg are text-classified.
//   - An attribute key or value is either a literal string or a sub-token sequence
//     (Value.Seq). An empty sequence is still a sequence.
//   - Clone is a deep copy: no slice of the clone aliases the original.
//   - A Template token's Attrs[0] holds the target as its key; arguments follow,
//     keyed by name or by 1-based position. A TemplateArg token may carry one
//     attribute keyed DefaultKey with its fallback.
//   - Data holds out-of-band metadata (raw source, trailing slash) that is never
//     rendered as a visible attribute.
package token
