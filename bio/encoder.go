package bio

import (
	"github.com/pkg/errors"

	"github.com/annokit/annokit/anno"
)

// Encode converts entity spans back into a per-token BIO tag sequence.
// Entities must be non-overlapping and aligned to token boundaries: each
// entity's begin must be some token's begin and its end some token's end.
// Decoding the returned tags reproduces the original spans exactly.
func Encode(tokens []anno.Token, entities []anno.NamedEntity) ([]string, error) {
	tags := make([]string, len(tokens))
	for i := range tags {
		tags[i] = "O"
	}

	for _, e := range entities {
		first, last := -1, -1
		for i, t := range tokens {
			if t.Begin == e.Begin {
				first = i
			}
			if t.End == e.End {
				last = i
			}
		}
		if first < 0 || last < 0 || last < first {
			return nil, errors.Errorf(
				"entity %s [%d,%d) is not aligned to token boundaries", e.Value, e.Begin, e.End)
		}
		for i := first; i <= last; i++ {
			if tags[i] != "O" {
				return nil, errors.Errorf(
					"entity %s [%d,%d) overlaps another entity at token %d", e.Value, e.Begin, e.End, i)
			}
			if i == first {
				tags[i] = "B-" + e.Value
			} else {
				tags[i] = "I-" + e.Value
			}
		}
	}
	return tags, nil
}
