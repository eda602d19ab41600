package models

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Entry is one resolved model: an immutable description of where the model
// lives and how to talk to it. Entries are values; nothing mutates them after
// resolution.
type Entry struct {
	// Tool is the adapter this model serves, e.g. "hunpos" or "udpipe".
	Tool string `yaml:"tool"`
	// Language is the ISO 639 language the model was trained for.
	Language string `yaml:"language"`
	// Variant distinguishes multiple models per language.
	Variant string `yaml:"variant"`
	// Location is a local path or http(s) URL. In catalog files it may
	// contain ${language} and ${variant} placeholders.
	Location string `yaml:"location"`
	// Encoding is the IANA name of the model's text encoding, when the tool
	// speaks something other than UTF-8 (older HunPos models are
	// ISO-8859-1).
	Encoding string `yaml:"encoding"`
}

// Catalog maps model identities to entries. Load it once at startup; it is
// read-only afterwards.
type Catalog struct {
	// Entries are explicit models, matched by (tool, language, variant).
	Entries []Entry `yaml:"models"`
	// DefaultVariants maps language to the variant used when the caller
	// requests none. The "*" key is the fallback for unlisted languages.
	DefaultVariants map[string]string `yaml:"default_variants"`
	// Templates maps tool to a location template with ${language} and
	// ${variant} placeholders, used when no explicit entry matches.
	Templates map[string]Entry `yaml:"templates"`
}

// LoadCatalog parses a YAML catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to parse model catalog")
	}
	return &c, nil
}

// LoadCatalogFile reads and parses a YAML catalog file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model catalog %s", path)
	}
	return LoadCatalog(data)
}

// Resolve maps (tool, language, variant) to an entry. It is a pure function:
// given the same catalog and inputs it always returns the same entry, and it
// never mutates the catalog.
//
// An empty variant picks the catalog's default variant for the language.
// The overrides map keys "location", "language", "variant" and "encoding"
// replace the corresponding resolved values, mirroring how callers pin a
// model to an explicit file.
func Resolve(c *Catalog, tool, language, variant string, overrides map[string]string) (Entry, error) {
	if v, ok := overrides["language"]; ok {
		language = v
	}
	if v, ok := overrides["variant"]; ok {
		variant = v
	}
	if variant == "" {
		variant = c.defaultVariant(language)
	}

	entry, ok := c.lookup(tool, language, variant)
	if !ok {
		if _, pinned := overrides["location"]; !pinned {
			return Entry{}, &ResourceError{
				Tool: tool, Language: language, Variant: variant,
				Reason: "no catalog entry or template matches",
			}
		}
		entry = Entry{Tool: tool, Language: language, Variant: variant}
	}

	if v, ok := overrides["location"]; ok {
		entry.Location = v
	}
	if v, ok := overrides["encoding"]; ok {
		entry.Encoding = v
	}
	if entry.Location == "" {
		return Entry{}, &ResourceError{
			Tool: tool, Language: language, Variant: variant,
			Reason: "resolved entry has no location",
		}
	}
	entry.Location = expand(entry.Location, language, variant)
	return entry, nil
}

func (c *Catalog) defaultVariant(language string) string {
	if v, ok := c.DefaultVariants[language]; ok {
		return v
	}
	if v, ok := c.DefaultVariants["*"]; ok {
		return v
	}
	return "default"
}

func (c *Catalog) lookup(tool, language, variant string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Tool == tool && e.Language == language && e.Variant == variant {
			return e, true
		}
	}
	if t, ok := c.Templates[tool]; ok {
		t.Tool = tool
		t.Language = language
		t.Variant = variant
		return t, true
	}
	return Entry{}, false
}

func expand(location, language, variant string) string {
	location = strings.ReplaceAll(location, "${language}", language)
	location = strings.ReplaceAll(location, "${variant}", variant)
	return location
}
