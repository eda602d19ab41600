package bio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annokit/annokit/anno"
)

// tokensFor builds contiguous single-letter-ish token spans: token i covers
// [2i, 2i+1), leaving a one byte gap between tokens.
func tokensFor(n int) []anno.Token {
	tokens := make([]anno.Token, n)
	for i := range tokens {
		tokens[i] = anno.Token{Span: anno.Span{Begin: 2 * i, End: 2*i + 1}}
	}
	return tokens
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []anno.NamedEntity
	}{
		{
			name: "no entities",
			tags: []string{"O", "O", "O"},
			want: nil,
		},
		{
			name: "single token entity",
			tags: []string{"B-PER", "O"},
			want: []anno.NamedEntity{
				{Span: anno.Span{Begin: 0, End: 1}, Value: "PER", Source: anno.SourceSingle},
			},
		},
		{
			name: "multi token entity",
			tags: []string{"B-ORG", "I-ORG", "O"},
			want: []anno.NamedEntity{
				{Span: anno.Span{Begin: 0, End: 3}, Value: "ORG", Source: anno.SourceComplex},
			},
		},
		{
			name: "adjacent same type entities stay separate",
			tags: []string{"B-PER", "B-PER", "I-PER"},
			want: []anno.NamedEntity{
				{Span: anno.Span{Begin: 0, End: 1}, Value: "PER", Source: anno.SourceSingle},
				{Span: anno.Span{Begin: 2, End: 5}, Value: "PER", Source: anno.SourceComplex},
			},
		},
		{
			name: "type change closes the open entity",
			tags: []string{"B-PER", "I-LOC", "O"},
			want: []anno.NamedEntity{
				{Span: anno.Span{Begin: 0, End: 1}, Value: "PER", Source: anno.SourceSingle},
				{Span: anno.Span{Begin: 2, End: 3}, Value: "LOC", Source: anno.SourceSingle},
			},
		},
		{
			name: "malformed continuation recovers as a new span",
			tags: []string{"O", "I-LOC", "I-LOC", "O"},
			want: []anno.NamedEntity{
				{Span: anno.Span{Begin: 2, End: 5}, Value: "LOC", Source: anno.SourceComplex},
			},
		},
		{
			name: "open entity closed at end of sentence",
			tags: []string{"O", "B-MISC", "I-MISC"},
			want: []anno.NamedEntity{
				{Span: anno.Span{Begin: 2, End: 5}, Value: "MISC", Source: anno.SourceComplex},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder()
			got, err := d.Decode(tokensFor(len(tc.tags)), tc.tags)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeError(t *testing.T) {
	d := NewDecoder()
	tokens := tokensFor(3)

	entities, err := d.Decode(tokens, []string{"B-PER", "WAT", "O"})
	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 1, decodeErr.Index)
	assert.Equal(t, "WAT", decodeErr.Tag)
	assert.Nil(t, entities, "no entities on decode error")
}

func TestDecodeLengthMismatch(t *testing.T) {
	d := NewDecoder()
	_, err := d.Decode(tokensFor(2), []string{"O"})
	assert.Error(t, err)
}

func TestDecodeInterning(t *testing.T) {
	d := NewDecoder()
	require.True(t, d.InternTags)

	entities, err := d.Decode(tokensFor(4), []string{"B-PER", "O", "B-PER", "O"})
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, entities[0].Value, entities[1].Value)

	d.InternTags = false
	entities, err = d.Decode(tokensFor(2), []string{"B-LOC", "O"})
	require.NoError(t, err)
	assert.Equal(t, "LOC", entities[0].Value)
}

// TestRoundTrip checks that encoding entity spans to BIO tags and decoding
// them reproduces the original spans exactly.
func TestRoundTrip(t *testing.T) {
	tokens := tokensFor(8)
	tests := []struct {
		name     string
		entities []anno.NamedEntity
	}{
		{name: "empty", entities: nil},
		{
			name: "mixed",
			entities: []anno.NamedEntity{
				{Span: anno.Span{Begin: 0, End: 1}, Value: "PER", Source: anno.SourceSingle},
				{Span: anno.Span{Begin: 4, End: 9}, Value: "ORG", Source: anno.SourceComplex},
				{Span: anno.Span{Begin: 12, End: 13}, Value: "LOC", Source: anno.SourceSingle},
			},
		},
		{
			name: "adjacent same type",
			entities: []anno.NamedEntity{
				{Span: anno.Span{Begin: 0, End: 3}, Value: "PER", Source: anno.SourceComplex},
				{Span: anno.Span{Begin: 4, End: 5}, Value: "PER", Source: anno.SourceSingle},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tags, err := Encode(tokens, tc.entities)
			require.NoError(t, err)

			got, err := NewDecoder().Decode(tokens, tags)
			require.NoError(t, err)
			assert.Equal(t, tc.entities, got)
		})
	}
}

func TestEncodeRejectsMisalignedEntities(t *testing.T) {
	tokens := tokensFor(3)

	_, err := Encode(tokens, []anno.NamedEntity{
		{Span: anno.Span{Begin: 1, End: 3}, Value: "PER"},
	})
	assert.Error(t, err, "entity begin inside a token")

	_, err = Encode(tokens, []anno.NamedEntity{
		{Span: anno.Span{Begin: 0, End: 3}, Value: "PER"},
		{Span: anno.Span{Begin: 2, End: 5}, Value: "LOC"},
	})
	assert.Error(t, err, "overlapping entities")
}
