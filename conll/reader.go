// Package conll reads the CoNLL 2002 named entity format and its GermEval
// 2014 variant.
//
// The file is one token per line, fields separated by a single space (CoNLL
// 2002) or tab (GermEval), with a blank line ending each sentence:
//
//	Wolff      B-PER
//	,          O
//	currently  O
//
// Fields are [form, outer-tag] or, in the embedded variant,
// [form, outer-tag, embedded-tag] where the third column carries embedded
// named entities. The GermEval distribution additionally contains lines
// beginning with '#' that cite the source of the following sentence; whether
// such lines are skipped, treated as token lines, or rejected is configurable
// (see CommentPolicy), since corpora disagree on their status.
//
// The reader synthesizes the document text itself: tokens are joined with
// single spaces and each sentence ends with a newline. Token, sentence and
// entity spans are committed against that synthesized buffer.
package conll

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/annokit/annokit/anno"
	"github.com/annokit/annokit/bio"
)

// Column separators.
const (
	SeparatorSpace = " "
	SeparatorTab   = "\t"
)

// CommentPolicy selects how lines beginning with '#' are handled.
type CommentPolicy int

const (
	// CommentSkip drops '#' lines (GermEval source citations).
	CommentSkip CommentPolicy = iota
	// CommentToken treats '#' lines as regular token lines.
	CommentToken
	// CommentReject fails the file on '#' lines with a FormatError.
	CommentReject
)

// Config controls a read. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// Separator is the column separator, SeparatorSpace or SeparatorTab.
	Separator string
	// Language is recorded on the produced document.
	Language string
	// ReadNamedEntity decodes the outer entity column.
	ReadNamedEntity bool
	// ReadEmbeddedNamedEntity expects and decodes a third, embedded entity
	// column. Embedded entities are committed only when this is set; the
	// column is never silently dropped while enabled.
	ReadEmbeddedNamedEntity bool
	// InternTags deduplicates tag strings during decoding.
	InternTags bool
	// Comments selects the '#' line policy.
	Comments CommentPolicy
}

// DefaultConfig returns the CoNLL 2002 defaults: space separator, outer
// entities on, embedded entities off, tag interning on, '#' lines skipped.
func DefaultConfig() Config {
	return Config{
		Separator:       SeparatorSpace,
		ReadNamedEntity: true,
		InternTags:      true,
		Comments:        CommentSkip,
	}
}

// FormatError reports a line that does not match the configured file format.
type FormatError struct {
	// Line is the 1-based line number in the input.
	Line int
	// Fields is the number of separator-delimited fields found.
	Fields int
	// Want is the number of fields the configured mode requires.
	Want int
	// Text is the offending line.
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: got %d fields, need %d: %q", e.Line, e.Fields, e.Want, e.Text)
}

// field positions within a token line
const (
	colForm = iota
	colOuter
	colEmbedded
)

// ReadFile reads a single CoNLL file into a document.
func ReadFile(path string, cfg Config) (*anno.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return Read(f, cfg)
}

// Read reads one document's worth of CoNLL data. A read aborts on the first
// malformed line (FormatError); an unparsable entity tag aborts entity
// decoding for its sentence only, the tokens and sentence are still
// committed.
func Read(r io.Reader, cfg Config) (*anno.Document, error) {
	wantFields := 2
	if cfg.ReadEmbeddedNamedEntity {
		wantFields = 3
	}

	s := &sentenceScanner{
		scanner:    bufio.NewScanner(r),
		separator:  cfg.Separator,
		wantFields: wantFields,
		comments:   cfg.Comments,
	}

	// First pass over each sentence synthesizes the text buffer; spans are
	// recorded as the buffer grows and committed once the text is final.
	var text strings.Builder
	type pending struct {
		tokens       []anno.Span
		sentence     anno.Span
		outerTags    []string
		embeddedTags []string
	}
	var sentences []pending

	for {
		words, err := s.next()
		if err != nil {
			return nil, err
		}
		if words == nil {
			break
		}
		if len(words) == 0 {
			continue
		}

		p := pending{sentence: anno.Span{Begin: text.Len()}}
		for _, fields := range words {
			form := fields[colForm]
			begin := text.Len()
			text.WriteString(form)
			p.tokens = append(p.tokens, anno.Span{Begin: begin, End: text.Len()})
			p.sentence.End = text.Len()
			text.WriteString(" ")

			p.outerTags = append(p.outerTags, fields[colOuter])
			if cfg.ReadEmbeddedNamedEntity {
				p.embeddedTags = append(p.embeddedTags, fields[colEmbedded])
			}
		}
		text.WriteString("\n")
		sentences = append(sentences, p)
	}

	doc := anno.NewDocument(uuid.NewString(), text.String())
	doc.Language = cfg.Language

	decoder := bio.NewDecoder()
	decoder.InternTags = cfg.InternTags

	for _, p := range sentences {
		first := len(doc.Tokens())
		for _, t := range p.tokens {
			if err := doc.AddToken(t); err != nil {
				return nil, err
			}
		}
		if err := doc.AddSentence(p.sentence); err != nil {
			return nil, err
		}

		tokens := doc.Tokens()[first:]
		if cfg.ReadNamedEntity {
			commitEntities(doc, decoder, tokens, p.outerTags)
		}
		if cfg.ReadEmbeddedNamedEntity {
			commitEntities(doc, decoder, tokens, p.embeddedTags)
		}
	}
	return doc, nil
}

// commitEntities decodes one tag column for one sentence. Entities are
// best-effort: a DecodeError drops this sentence's entities and moves on.
func commitEntities(doc *anno.Document, d *bio.Decoder, tokens []anno.Token, tags []string) {
	entities, err := d.Decode(tokens, tags)
	if err != nil {
		klog.Warningf("document %s: entity decoding aborted for sentence: %v", doc.ID, err)
		return
	}
	for _, e := range entities {
		if err := doc.AddEntity(e); err != nil {
			klog.Warningf("document %s: dropping entity: %v", doc.ID, err)
		}
	}
}

// sentenceScanner yields one sentence of split token lines at a time: an
// empty (never nil) slice for a sentence with no token lines, nil only at end
// of input.
type sentenceScanner struct {
	scanner    *bufio.Scanner
	separator  string
	wantFields int
	comments   CommentPolicy
	line       int
	done       bool
}

func (s *sentenceScanner) next() ([][]string, error) {
	if s.done {
		return nil, nil
	}
	words := [][]string{}
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, errors.Wrap(err, "failed to read input")
			}
			s.done = true
			if len(words) == 0 {
				return nil, nil
			}
			return words, nil
		}
		s.line++
		line := s.scanner.Text()
		if strings.TrimSpace(line) == "" {
			return words, nil
		}
		if line[0] == '#' {
			switch s.comments {
			case CommentSkip:
				continue
			case CommentReject:
				fields := len(strings.Split(line, s.separator))
				return nil, &FormatError{Line: s.line, Fields: fields, Want: s.wantFields, Text: line}
			case CommentToken:
				// Fall through to regular token handling.
			}
		}

		fields := strings.Split(line, s.separator)
		if len(fields) != s.wantFields {
			return nil, &FormatError{Line: s.line, Fields: len(fields), Want: s.wantFields, Text: line}
		}
		words = append(words, fields)
	}
}
