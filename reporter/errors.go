package reporter

import (
	"errors"
	"fmt"

	"github.com/structspec/structspec/spec"
)

// ErrInvalidSpec is a sentinel error that is returned by compilation entry
// points when compile errors were encountered but the configured
// ErrorReporter always returned nil (i.e. it collected the errors instead of
// aborting at the first one).
var ErrInvalidSpec = errors.New("compile failed: invalid packet specification")

// ErrorWithPos is an error about a specification document that includes the
// location in the document that caused the error.
//
// The value of Error() will contain both the SourcePos and the underlying
// error. The value of Unwrap() will only be the underlying error.
type ErrorWithPos interface {
	error
	GetPosition() spec.SourcePos
	Unwrap() error
}

func Error(pos spec.SourcePos, err error) ErrorWithPos {
	return errorWithSourcePos{pos: pos, underlying: err}
}

func Errorf(pos spec.SourcePos, format string, args ...any) ErrorWithPos {
	return errorWithSourcePos{pos: pos, underlying: fmt.Errorf(format, args...)}
}

type errorWithSourcePos struct {
	underlying error
	pos        spec.SourcePos
}

func (e errorWithSourcePos) Error() string {
	return fmt.Sprintf("%s: %v", e.pos, e.underlying)
}

func (e errorWithSourcePos) GetPosition() spec.SourcePos {
	return e.pos
}

func (e errorWithSourcePos) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPos = errorWithSourcePos{}
