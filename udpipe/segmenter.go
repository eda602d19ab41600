// Package udpipe segments raw document text into tokens and sentences by
// driving a UDPipe-style in-process segmentation model.
//
// Unlike the tagger adapters there is no pre-existing token list to pair
// against: the model itself reports the token forms of each sentence, and
// the adapter recovers their exact character offsets by aligning the forms
// against the untouched document text with a monotonic cursor. A form the
// aligner cannot locate means the model's output has desynchronized from the
// source; the document fails rather than committing guessed spans.
package udpipe

import (
	"io"

	"github.com/pkg/errors"

	"github.com/annokit/annokit/align"
	"github.com/annokit/annokit/anno"
	"github.com/annokit/annokit/models"
)

// Model is a loaded segmentation model. Implementations wrap the native
// UDPipe runtime; loading failures surface as models.ResourceError before
// any processing begins.
type Model interface {
	// NewTokenizer returns a fresh tokenizer for one document. Tokenizers
	// are single-use and not safe for concurrent use.
	NewTokenizer() Tokenizer
}

// Tokenizer iterates the sentences of one text, reporting each sentence as
// its ordered token forms.
type Tokenizer interface {
	// SetText provides the text to segment.
	SetText(text string)
	// NextSentence returns the next sentence's token forms, or io.EOF when
	// the text is exhausted.
	NextSentence() ([]string, error)
}

// Provider turns an opened model resource into a Model. Bindings to the
// native runtime implement this.
type Provider func(*models.Handle) (Model, error)

// Segmenter commits Token and Sentence annotations produced by a Model.
type Segmenter struct {
	model Model
}

// NewSegmenter returns a segmenter over a loaded model.
func NewSegmenter(m Model) *Segmenter {
	return &Segmenter{model: m}
}

// Process segments the document text and commits token and sentence spans.
// A sentence span runs from its first token's begin to the scan cursor after
// its last token. Sentences the model reports without any token are skipped.
func (s *Segmenter) Process(doc *anno.Document) error {
	tok := s.model.NewTokenizer()
	tok.SetText(doc.Text())
	cursor := align.NewCursor(doc.Text())

	for {
		forms, err := tok.NextSentence()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read next sentence from model")
		}
		if len(forms) == 0 {
			continue
		}

		spans := make([]anno.Span, len(forms))
		for i, form := range forms {
			span, err := cursor.Next(form)
			if err != nil {
				return errors.Wrapf(err, "failed to align sentence starting with %q", forms[0])
			}
			spans[i] = span
		}

		for _, span := range spans {
			if err := doc.AddToken(span); err != nil {
				return err
			}
		}
		sentence := anno.Span{Begin: spans[0].Begin, End: cursor.Pos()}
		if err := doc.AddSentence(sentence); err != nil {
			return err
		}
	}
}
