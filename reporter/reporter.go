// Package reporter contains the error reporting plumbing shared by all
// compilation phases. A Handler funnels every compile error through a
// caller-supplied Reporter; when the reporter returns nil the phase keeps
// going, which is how a whole document's worth of errors is collected in a
// single pass instead of stopping at the first failing packet.
package reporter

import (
	"sync"

	"github.com/structspec/structspec/spec"
)

// ErrorReporter is responsible for reporting the given error. If the
// reporter returns a non-nil error, compilation aborts with that error. If
// the reporter returns nil, compilation continues, allowing the compiler to
// report as many errors as it can find in one pass.
type ErrorReporter func(err ErrorWithPos) error

// WarningReporter is responsible for reporting the given warning. Warnings
// do not fail a compilation but indicate something dubious in the document.
// Though they are just warnings, the details are supplied via an error type.
type WarningReporter func(ErrorWithPos)

type Reporter interface {
	Error(ErrorWithPos) error
	Warning(ErrorWithPos)
}

func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPos) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler wraps a Reporter and tracks whether any errors were reported. It
// is safe for concurrent use, so a single Handler may be shared by parallel
// compilations of independent documents.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

// HandleErrorf reports an error with the given position and message. The
// return value is nil if compilation should continue looking for more
// errors, and non-nil if it should abort.
func (h *Handler) HandleErrorf(pos spec.SourcePos, format string, args ...any) error {
	return h.HandleError(Errorf(pos, format, args...))
}

// HandleError reports the given error. If the error is not an ErrorWithPos
// it is treated as fatal and stored without consulting the reporter.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if ewp, ok := err.(ErrorWithPos); ok {
		h.errsReported = true
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

func (h *Handler) HandleWarning(pos spec.SourcePos, err error) {
	// no need for lock; warnings don't interact with mutable fields
	h.reporter.Warning(errorWithSourcePos{pos: pos, underlying: err})
}

// Error returns the error that should be surfaced to the caller once a
// phase completes: the aborting error if there was one, ErrInvalidSpec if
// errors were reported but all swallowed by the reporter, nil otherwise.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSpec
	}
	return h.err
}

// ErrorsReported reports whether any error has passed through the handler.
func (h *Handler) ErrorsReported() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.errsReported
}
