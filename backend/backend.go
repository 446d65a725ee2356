// Package backend defines the contract between the layout compiler and the
// target-language emitters. A backend consumes compiled layout sets only;
// it never sees a packet that failed to compile, and it must honor each
// segment's endianness exactly as compiled rather than normalizing byte
// order across a packet.
package backend

import (
	"io"

	"go.uber.org/zap"

	"github.com/structspec/structspec/layout"
)

// Backend is one target-language emitter. Implementations must be safe for
// concurrent use: one Backend value may emit several layout sets at once.
type Backend interface {
	// Name is the backend's identifier, e.g. "python" or "c".
	Name() string
	// FileExtension is the extension for emitted artifacts, without the dot.
	FileExtension() string
	// Emit renders every packet of the set: for each packet a decode
	// operation (raw bytes to structured value) and a size operation
	// (the compiled size expression, evaluated statically or against a
	// raw-byte buffer when runtime-dependent).
	Emit(w io.Writer, set *layout.Set, opts Options) error
}

// Options modifies backend output.
type Options struct {
	// IncludeIdentifier tags each decoded packet with a type/name
	// discriminator.
	IncludeIdentifier bool
	// Verbose enables diagnostic logging. It never changes the emitted
	// artifact.
	Verbose bool
	// Logger receives diagnostics when Verbose is set. A nil Logger
	// silently discards them.
	Logger *zap.Logger
}

// Log returns the logger diagnostics should go to, which is a no-op logger
// unless Verbose is set and a Logger was supplied.
func (o Options) Log() *zap.Logger {
	if !o.Verbose || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
