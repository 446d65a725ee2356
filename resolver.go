package structspec

import (
	"io"
	"os"
	"path/filepath"

	"github.com/structspec/structspec/spec"
)

// Resolver locates specification documents for the compiler, resolving a
// path or name into document source or an already-loaded model.
type Resolver interface {
	FindSpecByPath(path string) (SearchResult, error)
}

// SearchResult is how a Resolver answers a query. Only one field should be
// set; if both are, the compiler prefers the already-loaded Spec and skips
// parsing.
type SearchResult struct {
	// Source is raw document source (YAML or JSON) to be parsed.
	Source io.Reader
	// Spec is an already-loaded document model.
	Spec *spec.Specification
}

// ResolverFunc adapts a function into a Resolver.
type ResolverFunc func(path string) (SearchResult, error)

func (f ResolverFunc) FindSpecByPath(path string) (SearchResult, error) {
	return f(path)
}

// SourceResolver resolves paths against the local file system. The zero
// value resolves paths as given, relative to the working directory.
type SourceResolver struct {
	// Root, when non-empty, is prepended to every queried path.
	Root string
}

func (r *SourceResolver) FindSpecByPath(path string) (SearchResult, error) {
	if r.Root != "" {
		path = filepath.Join(r.Root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Source: f}, nil
}

var _ Resolver = (*SourceResolver)(nil)
var _ Resolver = ResolverFunc(nil)
