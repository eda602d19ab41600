package anno

import "fmt"

// CoarsePOS is the closed set of coarse part-of-speech categories a tagger
// tag can map onto. Model tagsets map to these via mapping tables resolved
// at startup; there is no runtime type lookup.
type CoarsePOS int

const (
	CoarseUnknown CoarsePOS = iota
	CoarseNoun
	CoarseVerb
	CoarseAdjective
	CoarseAdverb
	CoarsePronoun
	CoarseDeterminer
	CoarseAdposition
	CoarseConjunction
	CoarseNumeral
	CoarseParticle
	CoarsePunctuation
	CoarseOther
)

var coarsePOSNames = [...]string{
	CoarseUnknown:     "X",
	CoarseNoun:        "NOUN",
	CoarseVerb:        "VERB",
	CoarseAdjective:   "ADJ",
	CoarseAdverb:      "ADV",
	CoarsePronoun:     "PRON",
	CoarseDeterminer:  "DET",
	CoarseAdposition:  "ADP",
	CoarseConjunction: "CONJ",
	CoarseNumeral:     "NUM",
	CoarseParticle:    "PART",
	CoarsePunctuation: "PUNCT",
	CoarseOther:       "O",
}

var coarsePOSFromName = func() map[string]CoarsePOS {
	m := make(map[string]CoarsePOS, len(coarsePOSNames))
	for c, name := range coarsePOSNames {
		m[name] = CoarsePOS(c)
	}
	return m
}()

// String returns the category name, e.g. "NOUN".
func (c CoarsePOS) String() string {
	if int(c) >= 0 && int(c) < len(coarsePOSNames) {
		return coarsePOSNames[c]
	}
	return fmt.Sprintf("CoarsePOS(%d)", int(c))
}

// CoarsePOSFromName returns the category for a name like "NOUN". The second
// result is false for names outside the closed set.
func CoarsePOSFromName(name string) (CoarsePOS, bool) {
	c, ok := coarsePOSFromName[name]
	return c, ok
}
