// Package anno defines the shared annotation model: character-offset spans
// (tokens, sentences, named entities) over an immutable document text buffer.
//
// All offsets are byte offsets into Document.Text(), suitable for slicing Go
// strings directly: text[span.Begin:span.End]. Annotations are committed
// append-only during a single pass over the document and are never mutated
// after being finalized; the only deferred completion is the one-shot POS
// assignment on tokens, which taggers fill in after segmentation.
package anno

import (
	"github.com/pkg/errors"
)

// Span is a [begin, end) byte-offset range over the document text.
type Span struct {
	Begin int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Begin }

// Contains reports whether other lies fully within s.
func (s Span) Contains(other Span) bool {
	return s.Begin <= other.Begin && other.End <= s.End
}

// Token is a span with an optional part-of-speech value.
type Token struct {
	Span
	POS    string
	Coarse CoarsePOS
}

// Sentence covers a contiguous run of tokens: Begin is the first token's
// begin, End the last token's end.
type Sentence struct {
	Span
}

// EntitySource records how an entity span was delimited by its producer. It
// disambiguates adjacent same-type entities from fragments of one longer
// entity: two adjacent PER entities carry SourceSingle/SourceComplex markers,
// while the fragments of a single discontinuous annotation carry
// SourceBegin ... SourceEnd.
type EntitySource int

const (
	// SourceSingle marks an entity made of exactly one token or fragment.
	SourceSingle EntitySource = iota
	// SourceBegin marks the first fragment of a discontinuous entity.
	SourceBegin
	// SourceEnd marks the last fragment of a discontinuous entity.
	SourceEnd
	// SourceComplex marks a multi-token entity, or an interior fragment.
	SourceComplex
)

var entitySourceNames = [...]string{
	SourceSingle:  "single",
	SourceBegin:   "begin",
	SourceEnd:     "end",
	SourceComplex: "complex",
}

// String returns the marker name.
func (s EntitySource) String() string {
	if int(s) >= 0 && int(s) < len(entitySourceNames) {
		return entitySourceNames[s]
	}
	return "unknown"
}

// NamedEntity is a span covering one or more contiguous tokens sharing one
// decoded tag group. Value is the entity type (e.g. "PER").
type NamedEntity struct {
	Span
	Value  string
	Source EntitySource
}

// Document is an immutable text buffer plus the annotations committed over
// it. The text never changes after construction; annotations are appended in
// offset order during one pass and read back afterwards.
type Document struct {
	// ID identifies the document within a collection.
	ID string
	// Language is the ISO 639 document language, when known.
	Language string

	text      string
	tokens    []Token
	sentences []Sentence
	entities  []NamedEntity
}

// NewDocument creates a document over the given text.
func NewDocument(id, text string) *Document {
	return &Document{ID: id, text: text}
}

// Text returns the document text buffer.
func (d *Document) Text() string { return d.text }

// Covered returns the text covered by the given span.
func (d *Document) Covered(s Span) string { return d.text[s.Begin:s.End] }

func (d *Document) checkSpan(s Span) error {
	if s.Begin < 0 || s.Begin > s.End || s.End > len(d.text) {
		return errors.Errorf("span [%d,%d) out of bounds for text of length %d",
			s.Begin, s.End, len(d.text))
	}
	return nil
}

// AddToken commits a token span. Tokens must be appended in offset order and
// must not overlap the previously committed token.
func (d *Document) AddToken(s Span) error {
	if err := d.checkSpan(s); err != nil {
		return err
	}
	if n := len(d.tokens); n > 0 && s.Begin < d.tokens[n-1].End {
		return errors.Errorf("token [%d,%d) overlaps previous token ending at %d",
			s.Begin, s.End, d.tokens[n-1].End)
	}
	d.tokens = append(d.tokens, Token{Span: s})
	return nil
}

// AddSentence commits a sentence span. Sentences must be appended in offset
// order and must not overlap.
func (d *Document) AddSentence(s Span) error {
	if err := d.checkSpan(s); err != nil {
		return err
	}
	if n := len(d.sentences); n > 0 && s.Begin < d.sentences[n-1].End {
		return errors.Errorf("sentence [%d,%d) overlaps previous sentence ending at %d",
			s.Begin, s.End, d.sentences[n-1].End)
	}
	d.sentences = append(d.sentences, Sentence{Span: s})
	return nil
}

// AddEntity commits a named entity. Entity spans must lie within the document
// text but may arrive out of order relative to other entities.
func (d *Document) AddEntity(e NamedEntity) error {
	if err := d.checkSpan(e.Span); err != nil {
		return err
	}
	d.entities = append(d.entities, e)
	return nil
}

// Tokens returns the committed tokens in offset order.
func (d *Document) Tokens() []Token { return d.tokens }

// Sentences returns the committed sentences in offset order.
func (d *Document) Sentences() []Sentence { return d.sentences }

// Entities returns the committed named entities.
func (d *Document) Entities() []NamedEntity { return d.entities }

// Token returns the i-th committed token.
func (d *Document) Token(i int) Token { return d.tokens[i] }

// TokenIndicesIn returns the indices of the tokens fully covered by the given
// span, in offset order.
func (d *Document) TokenIndicesIn(s Span) []int {
	var indices []int
	for i, t := range d.tokens {
		if t.Begin >= s.End {
			break
		}
		if s.Contains(t.Span) {
			indices = append(indices, i)
		}
	}
	return indices
}

// SetTokenPOS fills in the part-of-speech value of the i-th token. The span
// itself stays immutable; this is the one-shot completion step taggers run
// after segmentation committed the token.
func (d *Document) SetTokenPOS(i int, pos string, coarse CoarsePOS) error {
	if i < 0 || i >= len(d.tokens) {
		return errors.Errorf("token index %d out of range (%d tokens)", i, len(d.tokens))
	}
	d.tokens[i].POS = pos
	d.tokens[i].Coarse = coarse
	return nil
}
