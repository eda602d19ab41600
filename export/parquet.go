// Package export converts annotated documents to and from Parquet, for
// feeding corpus statistics tooling that speaks columnar formats.
package export

import (
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"

	"github.com/annokit/annokit/anno"
)

// TokenRow is one token of one document as a flat record.
type TokenRow struct {
	DocID    string `parquet:"doc_id"`
	Language string `parquet:"language"`
	Sentence int32  `parquet:"sentence"`
	Begin    int32  `parquet:"begin"`
	End      int32  `parquet:"end"`
	Form     string `parquet:"form"`
	POS      string `parquet:"pos"`
	Coarse   string `parquet:"coarse"`
}

// EntityRow is one named entity of one document as a flat record.
type EntityRow struct {
	DocID  string `parquet:"doc_id"`
	Begin  int32  `parquet:"begin"`
	End    int32  `parquet:"end"`
	Value  string `parquet:"value"`
	Source string `parquet:"source"`
	Text   string `parquet:"text"`
}

// TokenRows flattens a document's tokens. The sentence column is the index
// of the sentence covering the token, or -1 for tokens outside any sentence.
func TokenRows(doc *anno.Document) []TokenRow {
	sentences := doc.Sentences()
	rows := make([]TokenRow, 0, len(doc.Tokens()))
	si := 0
	for _, t := range doc.Tokens() {
		for si < len(sentences) && t.Begin >= sentences[si].End {
			si++
		}
		sentence := int32(-1)
		if si < len(sentences) && sentences[si].Contains(t.Span) {
			sentence = int32(si)
		}
		rows = append(rows, TokenRow{
			DocID:    doc.ID,
			Language: doc.Language,
			Sentence: sentence,
			Begin:    int32(t.Begin),
			End:      int32(t.End),
			Form:     doc.Covered(t.Span),
			POS:      t.POS,
			Coarse:   t.Coarse.String(),
		})
	}
	return rows
}

// EntityRows flattens a document's named entities.
func EntityRows(doc *anno.Document) []EntityRow {
	rows := make([]EntityRow, 0, len(doc.Entities()))
	for _, e := range doc.Entities() {
		rows = append(rows, EntityRow{
			DocID:  doc.ID,
			Begin:  int32(e.Begin),
			End:    int32(e.End),
			Value:  e.Value,
			Source: e.Source.String(),
			Text:   doc.Covered(e.Span),
		})
	}
	return rows
}

// WriteTokens writes the tokens of all documents as one Parquet file.
func WriteTokens(w io.Writer, docs ...*anno.Document) error {
	var rows []TokenRow
	for _, doc := range docs {
		rows = append(rows, TokenRows(doc)...)
	}
	if err := parquet.Write(w, rows); err != nil {
		return errors.Wrap(err, "failed to write token rows")
	}
	return nil
}

// WriteEntities writes the named entities of all documents as one Parquet
// file.
func WriteEntities(w io.Writer, docs ...*anno.Document) error {
	var rows []EntityRow
	for _, doc := range docs {
		rows = append(rows, EntityRows(doc)...)
	}
	if err := parquet.Write(w, rows); err != nil {
		return errors.Wrap(err, "failed to write entity rows")
	}
	return nil
}

// ReadTokens reads back a token Parquet file.
func ReadTokens(r io.ReaderAt, size int64) ([]TokenRow, error) {
	rows, err := parquet.Read[TokenRow](r, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token rows")
	}
	return rows, nil
}

// ReadEntities reads back an entity Parquet file.
func ReadEntities(r io.ReaderAt, size int64) ([]EntityRow, error) {
	rows, err := parquet.Read[EntityRow](r, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read entity rows")
	}
	return rows, nil
}
