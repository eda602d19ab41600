// Package align reconciles token forms reported by an external tool with the
// untouched document text, recovering exact byte offsets for each form.
//
// External taggers and segmenters report token text that is detached from the
// original buffer: whitespace has been discarded and the forms may have been
// normalized or escaped along the way. The aligner scans the original text
// left to right with a monotonic cursor, locating each form by exact
// substring search at or after the cursor. Cursor monotonicity resolves
// repeated identical forms (the second "the" is always searched from after
// the first one's span) and guarantees that emitted spans never overlap.
//
// A form that cannot be found at or after the cursor signals that the tool's
// output has desynchronized from the source (Unicode normalization, escaping,
// or a tool defect); that is an unrecoverable AlignmentError and the caller
// must fail the current document rather than skip or guess.
package align

import (
	"fmt"
	"strings"

	"github.com/annokit/annokit/anno"
)

// contextWindow bounds the amount of surrounding text quoted in errors.
const contextWindow = 48

// AlignmentError reports a token form that could not be located in the
// document text at or after the scan cursor.
type AlignmentError struct {
	// Form is the token text reported by the external tool.
	Form string
	// Pos is the cursor position the search started from.
	Pos int
	// Context is the document text following Pos, truncated for display.
	Context string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("token form %q not found at or after offset %d (text: %q)",
		e.Form, e.Pos, e.Context)
}

// Cursor scans a document text left to right, mapping token forms to spans.
// It is not safe for concurrent use; each document scan owns its own cursor.
type Cursor struct {
	text string
	pos  int
}

// NewCursor returns a cursor over text, positioned at offset 0.
func NewCursor(text string) *Cursor {
	return &Cursor{text: text}
}

// Pos returns the current cursor position: the end of the last consumed span,
// or 0 before the first call to Next. Adapters use it to close sentence spans
// after the sentence's last token.
func (c *Cursor) Pos() int { return c.pos }

// Next locates form in the text at or after the cursor and returns its span,
// advancing the cursor to the span's end. A form that cannot be found yields
// an *AlignmentError; the cursor is left unchanged in that case.
func (c *Cursor) Next(form string) (anno.Span, error) {
	if form == "" {
		return anno.Span{}, c.fail(form)
	}
	idx := strings.Index(c.text[c.pos:], form)
	if idx < 0 {
		return anno.Span{}, c.fail(form)
	}
	begin := c.pos + idx
	span := anno.Span{Begin: begin, End: begin + len(form)}
	c.pos = span.End
	return span, nil
}

func (c *Cursor) fail(form string) *AlignmentError {
	ctx := c.text[c.pos:]
	if len(ctx) > contextWindow {
		ctx = ctx[:contextWindow] + "..."
	}
	return &AlignmentError{Form: form, Pos: c.pos, Context: ctx}
}
