package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annokit/annokit/anno"
)

func annotatedDoc(t *testing.T) *anno.Document {
	t.Helper()
	doc := anno.NewDocument("doc-1", "Wolff plays . stray")
	doc.Language = "en"
	for _, s := range []anno.Span{
		{Begin: 0, End: 5}, {Begin: 6, End: 11}, {Begin: 12, End: 13},
		{Begin: 14, End: 19},
	} {
		require.NoError(t, doc.AddToken(s))
	}
	require.NoError(t, doc.AddSentence(anno.Span{Begin: 0, End: 13}))
	require.NoError(t, doc.SetTokenPOS(0, "NNP", anno.CoarseNoun))
	require.NoError(t, doc.SetTokenPOS(1, "VBZ", anno.CoarseVerb))
	require.NoError(t, doc.AddEntity(anno.NamedEntity{
		Span: anno.Span{Begin: 0, End: 5}, Value: "PER", Source: anno.SourceSingle,
	}))
	return doc
}

func TestTokenRows(t *testing.T) {
	rows := TokenRows(annotatedDoc(t))
	require.Len(t, rows, 4)

	assert.Equal(t, TokenRow{
		DocID: "doc-1", Language: "en", Sentence: 0,
		Begin: 0, End: 5, Form: "Wolff", POS: "NNP", Coarse: "NOUN",
	}, rows[0])
	assert.Equal(t, "plays", rows[1].Form)
	assert.Equal(t, int32(0), rows[2].Sentence)

	// The token after the last sentence carries no sentence index.
	assert.Equal(t, "stray", rows[3].Form)
	assert.Equal(t, int32(-1), rows[3].Sentence)
	assert.Equal(t, "X", rows[3].Coarse)
}

func TestEntityRows(t *testing.T) {
	rows := EntityRows(annotatedDoc(t))
	require.Len(t, rows, 1)
	assert.Equal(t, EntityRow{
		DocID: "doc-1", Begin: 0, End: 5,
		Value: "PER", Source: "single", Text: "Wolff",
	}, rows[0])
}

func TestTokenRoundTrip(t *testing.T) {
	doc := annotatedDoc(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTokens(&buf, doc))

	rows, err := ReadTokens(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, TokenRows(doc), rows)
}

func TestEntityRoundTrip(t *testing.T) {
	doc := annotatedDoc(t)
	var buf bytes.Buffer
	require.NoError(t, WriteEntities(&buf, doc))

	rows, err := ReadEntities(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, EntityRows(doc), rows)
}

func TestWriteTokensMultipleDocuments(t *testing.T) {
	first := annotatedDoc(t)
	second := anno.NewDocument("doc-2", "Hi")
	require.NoError(t, second.AddToken(anno.Span{Begin: 0, End: 2}))
	require.NoError(t, second.AddSentence(anno.Span{Begin: 0, End: 2}))

	var buf bytes.Buffer
	require.NoError(t, WriteTokens(&buf, first, second))

	rows, err := ReadTokens(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "doc-1", rows[0].DocID)
	assert.Equal(t, "doc-2", rows[4].DocID)
	assert.Equal(t, "Hi", rows[4].Form)
}
