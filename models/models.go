// Package models resolves and caches the external models and binaries the
// adapters run against.
//
// Model identity is (tool, language, variant). A Catalog, loaded once from a
// YAML file, maps identities to locations; Resolve is a pure function from
// identity plus overrides to an immutable Entry. Nothing is mutated after
// resolution, and the same inputs always resolve to the same Entry.
//
// Cache turns resolved entries into local, memory-mapped file handles. Remote
// locations are downloaded once into the cache directory, guarded by a file
// lock so concurrent processes do not clobber each other's downloads. The
// cache is safe for concurrent use and hands out one shared handle per
// resolved identity.
package models

import "fmt"

// ResourceError reports a model or binary that could not be resolved or
// produced. It surfaces before any document processing begins.
type ResourceError struct {
	// Tool is the adapter the model was requested for.
	Tool string
	// Language and Variant identify the requested model.
	Language string
	Variant  string
	// Reason describes what failed.
	Reason string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("no model for %s/%s/%s: %s", e.Tool, e.Language, e.Variant, e.Reason)
}
