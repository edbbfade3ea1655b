package attrexp

import (
	"strings"

	"mwconv/internal/errors"
	"mwconv/internal/provenance"
	"mwconv/internal/token"
)

// synthesize strips markers from the expanded fields of clone and builds
// the markers describing them. It returns the markers followed by the tag.
func (s *Stage) synthesize(clone token.Token, expanded []token.Attr) ([]token.Token, error) {
	if len(expanded) != len(clone.Attrs) {
		return nil, errors.AssertionFailedf("expander returned %d attributes for %d", len(expanded), len(clone.Attrs))
	}

	var (
		markers  []token.Token
		producer provenance.ProducerType
	)
	for i := range clone.Attrs {
		orig, a := clone.Attrs[i], &expanded[i]

		if orig.Key.IsSeq() && a.Key.IsSeq() {
			res := s.scan(a.Key.Toks, clone.Name)
			// a generated key stays a sequence, so its value is left alone
			a.Key = token.SeqOf(res.Filtered...)
			if res.HasProducer {
				producer = res.ProducerType
				markers = append(markers, marker(provenance.AttrKeyProperty+token.ToString(res.Filtered), res.RawSource, a))
			}
		}

		key, literal := a.Key.Literal()
		if literal && !strings.HasPrefix(key, provenance.ReservedPrefix) && orig.Val.IsSeq() && a.Val.IsSeq() {
			res := s.scan(a.Val.Toks, clone.Name)
			a.Val = token.SeqOf(res.Filtered...)
			if res.HasProducer {
				// the value's producer wins over the key's
				producer = res.ProducerType
				markers = append(markers, marker(provenance.AttrValProperty+key, res.RawSource, a))
			}
		}
	}

	clone.Attrs = expanded
	if len(markers) == 0 {
		return []token.Token{clone}, nil
	}

	about := s.sess.GroupingID()
	clone.SetAttr("about", about)
	clone.AddSpaceSeparatedAttr("typeof", provenance.ExpandedAttrsPrefix+producer.Suffix())
	for i := range markers {
		markers[i].SetAttr("about", about)
	}
	s.sess.Log.Debugw("expanded attributes", "tag", clone.Name, "about", about, "markers", len(markers))
	return append(markers, clone), nil
}

func (s *Stage) scan(toks []token.Token, tag string) provenance.ScanResult {
	res := provenance.Scan(toks, s.opts.WrapTemplates)
	if res.Unterminated || res.Mismatched > 0 {
		s.sess.Log.Debugw("malformed provenance span", "tag", tag,
			"unterminated", res.Unterminated, "mismatched", res.Mismatched)
	}
	return res
}

func marker(property, src string, a *token.Attr) token.Token {
	m := provenance.AttrMarker(property, src)
	m.Span = a.Span
	return m
}
