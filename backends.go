package structspec

import (
	"github.com/structspec/structspec/backend"
	"github.com/structspec/structspec/backend/cgen"
	"github.com/structspec/structspec/backend/pygen"
)

// Backends returns the output backends this build supports, in a stable
// order. The set is fixed at compile time; there is no plugin discovery.
func Backends() []backend.Backend {
	return []backend.Backend{
		cgen.New(),
		pygen.New(),
	}
}

// BackendByName returns the backend with the given name, or nil if no such
// backend exists.
func BackendByName(name string) backend.Backend {
	for _, b := range Backends() {
		if b.Name() == name {
			return b
		}
	}
	return nil
}
