// Package bio converts per-token BIO tag sequences into named entity spans
// and back.
//
// In the BIO scheme, B-X begins an entity of type X, I-X continues it, and O
// marks tokens outside any entity. Real-world corpora frequently contain
// malformed continuations (an I-X with no open X entity); the decoder
// recovers by treating such a tag as an implicit span start instead of
// failing. Tags with no recognizable prefix are a DecodeError: the caller
// aborts entity decoding for the current sentence but still commits its
// tokens, since entities are best-effort and tokens are not.
package bio

import (
	"fmt"
	"strings"

	"github.com/annokit/annokit/anno"
)

// DecodeError reports a tag string with no recognizable B-/I-/O prefix.
type DecodeError struct {
	// Index is the position of the offending tag in the sentence.
	Index int
	// Tag is the unparsable tag string.
	Tag string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unrecognized tag %q at token %d", e.Tag, e.Index)
}

// Decoder converts a per-token tag sequence into entity spans over the same
// tokens. A decoder carries no per-sentence state between calls and may be
// reused across sentences and documents.
type Decoder struct {
	// InternTags deduplicates decoded tag strings, bounding memory on large
	// corpora with few distinct tags. Purely an optimization; the decoded
	// spans are identical either way.
	InternTags bool

	interned map[string]string
}

// NewDecoder returns a decoder with tag interning enabled.
func NewDecoder() *Decoder {
	return &Decoder{InternTags: true}
}

// group is a run of tokens sharing one open entity. It exists only during
// decoding and is consumed into a NamedEntity when closed.
type group struct {
	value string
	span  anno.Span
	count int
}

// Decode pairs tokens index-for-index with tags and returns the decoded
// entity spans. len(tags) must equal len(tokens). On a DecodeError no
// entities are returned.
func (d *Decoder) Decode(tokens []anno.Token, tags []string) ([]anno.NamedEntity, error) {
	if len(tokens) != len(tags) {
		return nil, fmt.Errorf("got %d tags for %d tokens", len(tags), len(tokens))
	}

	var entities []anno.NamedEntity
	var open *group
	flush := func() {
		if open == nil {
			return
		}
		source := anno.SourceComplex
		if open.count == 1 {
			source = anno.SourceSingle
		}
		entities = append(entities, anno.NamedEntity{
			Span:   open.span,
			Value:  open.value,
			Source: source,
		})
		open = nil
	}

	for i, tag := range tags {
		switch {
		case tag == "O":
			flush()
		case strings.HasPrefix(tag, "B-"):
			flush()
			open = &group{value: d.intern(tag[2:]), span: tokens[i].Span, count: 1}
		case strings.HasPrefix(tag, "I-"):
			value := tag[2:]
			if open != nil && open.value == value {
				open.span.End = tokens[i].End
				open.count++
				break
			}
			// Malformed continuation: no matching open entity. Recover by
			// starting a new span here instead of failing.
			flush()
			open = &group{value: d.intern(value), span: tokens[i].Span, count: 1}
		default:
			return nil, &DecodeError{Index: i, Tag: tag}
		}
	}
	flush()
	return entities, nil
}

func (d *Decoder) intern(tag string) string {
	if !d.InternTags {
		return tag
	}
	if d.interned == nil {
		d.interned = make(map[string]string)
	}
	if s, ok := d.interned[tag]; ok {
		return s
	}
	d.interned[tag] = tag
	return tag
}
