package anno

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCommit(t *testing.T) {
	doc := NewDocument("d1", "Hello world")

	require.NoError(t, doc.AddToken(Span{Begin: 0, End: 5}))
	require.NoError(t, doc.AddToken(Span{Begin: 6, End: 11}))
	require.NoError(t, doc.AddSentence(Span{Begin: 0, End: 11}))
	require.NoError(t, doc.AddEntity(NamedEntity{Span: Span{Begin: 0, End: 5}, Value: "PER", Source: SourceSingle}))

	assert.Equal(t, "Hello", doc.Covered(doc.Token(0).Span))
	assert.Equal(t, "world", doc.Covered(doc.Token(1).Span))
	assert.Len(t, doc.Sentences(), 1)
	assert.Len(t, doc.Entities(), 1)
}

func TestDocumentRejectsBadSpans(t *testing.T) {
	doc := NewDocument("d1", "Hello world")

	assert.Error(t, doc.AddToken(Span{Begin: -1, End: 3}), "negative begin")
	assert.Error(t, doc.AddToken(Span{Begin: 4, End: 2}), "begin after end")
	assert.Error(t, doc.AddToken(Span{Begin: 0, End: 100}), "end past text")

	require.NoError(t, doc.AddToken(Span{Begin: 0, End: 5}))
	assert.Error(t, doc.AddToken(Span{Begin: 3, End: 8}), "overlapping previous token")

	require.NoError(t, doc.AddSentence(Span{Begin: 0, End: 5}))
	assert.Error(t, doc.AddSentence(Span{Begin: 4, End: 11}), "overlapping previous sentence")
}

func TestTokenIndicesIn(t *testing.T) {
	doc := NewDocument("d1", "a bb ccc dddd")
	require.NoError(t, doc.AddToken(Span{Begin: 0, End: 1}))
	require.NoError(t, doc.AddToken(Span{Begin: 2, End: 4}))
	require.NoError(t, doc.AddToken(Span{Begin: 5, End: 8}))
	require.NoError(t, doc.AddToken(Span{Begin: 9, End: 13}))

	assert.Equal(t, []int{0, 1}, doc.TokenIndicesIn(Span{Begin: 0, End: 4}))
	assert.Equal(t, []int{2, 3}, doc.TokenIndicesIn(Span{Begin: 5, End: 13}))
	assert.Nil(t, doc.TokenIndicesIn(Span{Begin: 1, End: 2}), "span covering no full token")
}

func TestSetTokenPOS(t *testing.T) {
	doc := NewDocument("d1", "Hello world")
	require.NoError(t, doc.AddToken(Span{Begin: 0, End: 5}))

	require.NoError(t, doc.SetTokenPOS(0, "NN", CoarseNoun))
	assert.Equal(t, "NN", doc.Token(0).POS)
	assert.Equal(t, CoarseNoun, doc.Token(0).Coarse)

	assert.Error(t, doc.SetTokenPOS(1, "NN", CoarseNoun), "index out of range")
}

func TestEntitySourceString(t *testing.T) {
	assert.Equal(t, "single", SourceSingle.String())
	assert.Equal(t, "begin", SourceBegin.String())
	assert.Equal(t, "end", SourceEnd.String())
	assert.Equal(t, "complex", SourceComplex.String())
}

func TestCoarsePOSNames(t *testing.T) {
	c, ok := CoarsePOSFromName("NOUN")
	require.True(t, ok)
	assert.Equal(t, CoarseNoun, c)
	assert.Equal(t, "NOUN", c.String())

	_, ok = CoarsePOSFromName("GERUND")
	assert.False(t, ok)
}
