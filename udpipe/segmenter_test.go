package udpipe

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annokit/annokit/align"
	"github.com/annokit/annokit/anno"
)

// fakeModel replays a fixed segmentation: one slice of token forms per
// sentence.
type fakeModel struct {
	sentences [][]string
}

func (m *fakeModel) NewTokenizer() Tokenizer {
	return &fakeTokenizer{sentences: m.sentences}
}

type fakeTokenizer struct {
	text      string
	sentences [][]string
}

func (t *fakeTokenizer) SetText(text string) { t.text = text }

func (t *fakeTokenizer) NextSentence() ([]string, error) {
	if len(t.sentences) == 0 {
		return nil, io.EOF
	}
	s := t.sentences[0]
	t.sentences = t.sentences[1:]
	return s, nil
}

var _ Model = (*fakeModel)(nil)

func TestProcessCommitsSpans(t *testing.T) {
	text := "Wolff plays. Yes!"
	model := &fakeModel{sentences: [][]string{
		{"Wolff", "plays", "."},
		{"Yes", "!"},
	}}
	doc := anno.NewDocument("d1", text)

	require.NoError(t, NewSegmenter(model).Process(doc))

	tokens := doc.Tokens()
	require.Len(t, tokens, 5)
	wantForms := []string{"Wolff", "plays", ".", "Yes", "!"}
	for i, form := range wantForms {
		assert.Equal(t, form, doc.Covered(tokens[i].Span), "token %d", i)
	}

	sentences := doc.Sentences()
	require.Len(t, sentences, 2)
	assert.Equal(t, "Wolff plays.", doc.Covered(sentences[0].Span))
	assert.Equal(t, "Yes!", doc.Covered(sentences[1].Span))
}

// Repeated forms must bind to successive occurrences, never rescan earlier
// text.
func TestProcessRepeatedForms(t *testing.T) {
	text := "the cat saw the cat"
	model := &fakeModel{sentences: [][]string{
		{"the", "cat", "saw", "the", "cat"},
	}}
	doc := anno.NewDocument("d1", text)

	require.NoError(t, NewSegmenter(model).Process(doc))

	tokens := doc.Tokens()
	require.Len(t, tokens, 5)
	assert.Equal(t, anno.Span{Begin: 0, End: 3}, tokens[0].Span)
	assert.Equal(t, anno.Span{Begin: 12, End: 15}, tokens[3].Span)
	assert.Equal(t, anno.Span{Begin: 16, End: 19}, tokens[4].Span)
}

func TestProcessSentenceEndsAtLastToken(t *testing.T) {
	// Trailing whitespace stays outside the sentence span.
	text := "Hi there.   \n"
	model := &fakeModel{sentences: [][]string{{"Hi", "there", "."}}}
	doc := anno.NewDocument("d1", text)

	require.NoError(t, NewSegmenter(model).Process(doc))
	require.Len(t, doc.Sentences(), 1)
	assert.Equal(t, anno.Span{Begin: 0, End: 9}, doc.Sentences()[0].Span)
}

func TestProcessSkipsEmptySentences(t *testing.T) {
	model := &fakeModel{sentences: [][]string{
		{},
		{"Hi"},
		{},
	}}
	doc := anno.NewDocument("d1", "Hi")

	require.NoError(t, NewSegmenter(model).Process(doc))
	assert.Len(t, doc.Sentences(), 1)
	assert.Len(t, doc.Tokens(), 1)
}

// A form the model reports but the text does not contain past the cursor is
// a desync; nothing from the failed sentence is committed.
func TestProcessAlignmentFailure(t *testing.T) {
	model := &fakeModel{sentences: [][]string{
		{"Hello", "world"},
		{"mars", "!"},
	}}
	doc := anno.NewDocument("d1", "Hello world !")

	err := NewSegmenter(model).Process(doc)
	require.Error(t, err)
	var alignErr *align.AlignmentError
	require.ErrorAs(t, err, &alignErr)
	assert.Equal(t, "mars", alignErr.Form)

	// The first sentence landed, the failed one left no tokens behind.
	assert.Len(t, doc.Sentences(), 1)
	assert.Len(t, doc.Tokens(), 2)
}
