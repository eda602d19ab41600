package models

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/annokit/annokit/anno"
)

// TagMapping maps a model tagset's part-of-speech tags onto the closed
// anno.CoarsePOS categories. Mappings are plain data loaded once from YAML;
// there is no runtime type lookup. The "*" key, when present, is the
// fallback for unmapped tags (otherwise they map to CoarseUnknown).
type TagMapping struct {
	byTag    map[string]anno.CoarsePOS
	fallback anno.CoarsePOS
}

// LoadTagMapping parses a YAML mapping of tag name to coarse category name,
// e.g.:
//
//	NN: NOUN
//	VBZ: VERB
//	"*": X
func LoadTagMapping(data []byte) (*TagMapping, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse tag mapping")
	}

	m := &TagMapping{byTag: make(map[string]anno.CoarsePOS, len(raw))}
	for tag, name := range raw {
		coarse, ok := anno.CoarsePOSFromName(name)
		if !ok {
			return nil, errors.Errorf("tag %q maps to unknown coarse category %q", tag, name)
		}
		if tag == "*" {
			m.fallback = coarse
			continue
		}
		m.byTag[tag] = coarse
	}
	return m, nil
}

// LoadTagMappingFile reads and parses a YAML tag mapping file.
func LoadTagMappingFile(path string) (*TagMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tag mapping %s", path)
	}
	return LoadTagMapping(data)
}

// Coarse returns the coarse category for a tag.
func (m *TagMapping) Coarse(tag string) anno.CoarsePOS {
	if c, ok := m.byTag[tag]; ok {
		return c
	}
	return m.fallback
}
