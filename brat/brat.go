// Package brat parses brat standoff annotations onto a document.
//
// Only the parts the annotation pipeline consumes are implemented:
// annotation-type parameters of the form TYPE or TYPE:SUBCAT, and text-bound
// annotation lines ("T" lines) carrying an ID, a type, one or more offset
// fragments, and optionally the covered text:
//
//	T1	PER 0 5	Wolff
//	T2	ORG 10 15;20 25	Real Madrid
//
// Relation, event and attribute lines are out of scope and skipped.
package brat

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/annokit/annokit/anno"
)

// FlagAnchor marks an annotation parameter as an anchor type.
const FlagAnchor = "A"

var paramPattern = regexp.MustCompile(
	`^(?P<type>[a-zA-Z_][a-zA-Z0-9_\-.]+)(?::(?P<subcat>[a-zA-Z][a-zA-Z0-9]+))?$`)

// AnnotationParam is a parsed annotation-type parameter: a type name with an
// optional subcategory, written TYPE or TYPE:SUBCAT.
type AnnotationParam struct {
	Type   string
	Subcat string
}

// ParseAnnotationParam parses a TYPE[:SUBCAT] parameter value.
func ParseAnnotationParam(value string) (AnnotationParam, error) {
	m := paramPattern.FindStringSubmatch(value)
	if m == nil {
		return AnnotationParam{}, errors.Errorf("illegal annotation parameter format %q", value)
	}
	return AnnotationParam{
		Type:   m[paramPattern.SubexpIndex("type")],
		Subcat: m[paramPattern.SubexpIndex("subcat")],
	}, nil
}

// TextAnnotation is one text-bound annotation: an entity with one or more
// offset fragments. Most annotations have a single fragment; discontinuous
// annotations list several, separated by semicolons in the file.
type TextAnnotation struct {
	// ID is the annotation identifier, e.g. "T1".
	ID string
	// Type is the entity type, e.g. "PER".
	Type string
	// Fragments are the covered spans, in offset order.
	Fragments []anno.Span
	// Text is the covered text as recorded in the file; discontinuous
	// fragments are joined with single spaces. Empty when the file omits it.
	Text string
}

// ParseTextAnnotation parses one "T" line.
func ParseTextAnnotation(line string) (*TextAnnotation, error) {
	cols := strings.SplitN(line, "\t", 3)
	if len(cols) < 2 {
		return nil, errors.Errorf("text annotation needs at least 2 tab-separated fields: %q", line)
	}

	a := &TextAnnotation{ID: cols[0]}
	if len(cols) == 3 {
		a.Text = cols[2]
	}

	// Second column: TYPE begin end[;begin end]...
	typeAndOffsets := strings.SplitN(cols[1], " ", 2)
	if len(typeAndOffsets) != 2 {
		return nil, errors.Errorf("text annotation %s has no offsets: %q", a.ID, cols[1])
	}
	a.Type = typeAndOffsets[0]

	for _, frag := range strings.Split(typeAndOffsets[1], ";") {
		bounds := strings.Fields(frag)
		if len(bounds) != 2 {
			return nil, errors.Errorf("text annotation %s has malformed fragment %q", a.ID, frag)
		}
		begin, err := strconv.Atoi(bounds[0])
		if err != nil {
			return nil, errors.Wrapf(err, "text annotation %s has a bad begin offset", a.ID)
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return nil, errors.Wrapf(err, "text annotation %s has a bad end offset", a.ID)
		}
		if begin > end {
			return nil, errors.Errorf("text annotation %s has begin %d after end %d", a.ID, begin, end)
		}
		a.Fragments = append(a.Fragments, anno.Span{Begin: begin, End: end})
	}
	return a, nil
}

// ReadAnnotations reads all text-bound annotations from a standoff file.
// Non-"T" lines (relations, events, attributes, comments) and blank lines
// are skipped.
func ReadAnnotations(r io.Reader) ([]*TextAnnotation, error) {
	var annotations []*TextAnnotation
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] != 'T' {
			continue
		}
		a, err := ParseTextAnnotation(line)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read annotation file")
	}
	return annotations, nil
}

// Apply commits the annotation's fragments as named entities on the
// document. When the annotation records its covered text, the document text
// under the fragments must reproduce it (fragments joined with single
// spaces); a mismatch means the standoff file and the text have drifted
// apart and is an error.
//
// Fragment source markers distinguish fragments of one discontinuous entity
// from independent adjacent entities of the same type: a lone fragment is
// SourceSingle, the first of several SourceBegin, the last SourceEnd, and
// interior ones SourceComplex.
func (a *TextAnnotation) Apply(doc *anno.Document) error {
	if a.Text != "" {
		covered := make([]string, len(a.Fragments))
		for i, f := range a.Fragments {
			if f.End > len(doc.Text()) {
				return errors.Errorf("text annotation %s exceeds document text", a.ID)
			}
			covered[i] = doc.Covered(f)
		}
		if got := strings.Join(covered, " "); got != a.Text {
			return errors.Errorf("text annotation %s covers %q, file records %q", a.ID, got, a.Text)
		}
	}

	for i, f := range a.Fragments {
		source := anno.SourceComplex
		switch {
		case len(a.Fragments) == 1:
			source = anno.SourceSingle
		case i == 0:
			source = anno.SourceBegin
		case i == len(a.Fragments)-1:
			source = anno.SourceEnd
		}
		if err := doc.AddEntity(anno.NamedEntity{Span: f, Value: a.Type, Source: source}); err != nil {
			return errors.Wrapf(err, "failed to commit text annotation %s", a.ID)
		}
	}
	return nil
}
