// Package hunpos tags pre-segmented documents with part-of-speech values by
// driving a HunPos-style tagger subprocess.
//
// The document must already carry Token and Sentence annotations. Per
// sentence, the tagger sends each token's surface text on its own line
// followed by a blank line, then reads exactly one response line per token
// (surface text, a tab, the tag) plus a blank terminator. Tokens are paired
// with response lines index-for-index; the external tool never merges or
// splits tokens.
//
// Any write/read failure or protocol mismatch is fatal for the document: the
// last batch sent and the last response line read are logged for diagnosis,
// the subprocess is torn down, and the error surfaces to the caller. There is
// no automatic restart.
package hunpos

import (
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/annokit/annokit/anno"
	"github.com/annokit/annokit/extproc"
	"github.com/annokit/annokit/models"
)

// Tagger drives one external tagger process. One tagger serves one document
// at a time; concurrent documents each need their own tagger.
type Tagger struct {
	// Mapping maps tagset tags to coarse categories. Optional; without it
	// tokens get CoarseUnknown.
	Mapping *models.TagMapping
	// InternTags deduplicates tag strings across the document.
	InternTags bool

	ch       extproc.Channel
	interned map[string]string
}

// NewTagger wraps an existing channel, with tag interning enabled. Tests use
// this with an in-memory channel.
func NewTagger(ch extproc.Channel) *Tagger {
	return &Tagger{ch: ch, InternTags: true}
}

// Start launches the tagger binary against an opened model and returns a
// tagger speaking the model's declared text encoding.
func Start(binary string, model *models.Handle) (*Tagger, error) {
	proc, err := extproc.Start(binary, []string{model.Path}, model.Entry.Encoding)
	if err != nil {
		return nil, err
	}
	return NewTagger(proc), nil
}

// Process tags every sentence of the document, one synchronous
// request/response exchange per sentence. Empty sentences are skipped. On
// failure the subprocess is terminated and no further sentences are
// processed; tags of a failed sentence are never partially committed.
func (t *Tagger) Process(doc *anno.Document) error {
	var lastSent []string
	var lastLine string

	fail := func(err error) error {
		klog.Errorf("sent before error: %q", strings.Join(lastSent, " "))
		klog.Errorf("last response before error: %q", lastLine)
		if closeErr := t.ch.Close(); closeErr != nil {
			klog.Errorf("failed to terminate tagger process: %v", closeErr)
		}
		return err
	}

	for _, sentence := range doc.Sentences() {
		indices := doc.TokenIndicesIn(sentence.Span)
		if len(indices) == 0 {
			continue
		}

		forms := make([]string, len(indices))
		for i, idx := range indices {
			forms[i] = doc.Covered(doc.Token(idx).Span)
		}
		lastSent = forms

		if err := t.ch.Send(forms); err != nil {
			return fail(errors.Wrap(err, "failed to send sentence"))
		}
		lines, err := t.ch.Receive(len(forms))
		if err != nil {
			return fail(errors.Wrap(err, "failed to read sentence tags"))
		}
		// Parse the full response before committing anything, so a
		// malformed line never leaves the sentence half tagged.
		tags := make([]string, len(lines))
		for i, line := range lines {
			lastLine = line
			fields := strings.SplitN(line, "\t", 2)
			if len(fields) < 2 {
				return fail(&extproc.ProtocolError{Want: len(forms), Got: i, Line: line})
			}
			tags[i] = t.intern(strings.TrimSpace(fields[1]))
		}

		for i, idx := range indices {
			coarse := anno.CoarseUnknown
			if t.Mapping != nil {
				coarse = t.Mapping.Coarse(tags[i])
			}
			if err := doc.SetTokenPOS(idx, tags[i], coarse); err != nil {
				return fail(err)
			}
		}
	}
	return nil
}

// Close terminates the external process. It must be called when the tagger
// is disposed, regardless of success or failure.
func (t *Tagger) Close() error {
	return t.ch.Close()
}

func (t *Tagger) intern(tag string) string {
	if !t.InternTags {
		return tag
	}
	if t.interned == nil {
		t.interned = make(map[string]string)
	}
	if s, ok := t.interned[tag]; ok {
		return s
	}
	t.interned[tag] = tag
	return tag
}
