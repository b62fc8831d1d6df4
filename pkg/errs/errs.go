// Package errs defines the sentinel and typed errors shared by the gomobiledoc packages.
//
// Recoverable conditions (bad input documents, unknown cards, contract violations by
// host-provided card renderers) are reported as wrapped sentinel errors. Invariant
// violations are caller bugs: they panic with an *AssertionError, which the editor's
// transaction boundary converts back into a returned error.
package errs

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrUnsupportedVersion indicates a document version no codec handles.
	ErrUnsupportedVersion = errors.New("unsupported mobiledoc version")

	// ErrMalformedDocument indicates a document whose structure does not match its version.
	ErrMalformedDocument = errors.New("malformed mobiledoc")
)

// Card and atom errors.
var (
	// ErrUnknownCard indicates a card name with no definition and no fallback handler.
	ErrUnknownCard = errors.New("unknown card")

	// ErrUnknownAtom indicates an atom name with no definition and no fallback handler.
	ErrUnknownAtom = errors.New("unknown atom")

	// ErrCardContract indicates a card definition that broke its render contract.
	ErrCardContract = errors.New("card contract violation")

	// ErrAtomContract indicates an atom definition that broke its render contract.
	ErrAtomContract = errors.New("atom contract violation")
)

// Editing errors.
var (
	// ErrNestedTransaction indicates a Run call made while another transaction is open.
	ErrNestedTransaction = errors.New("nested transaction")

	// ErrInvalidPosition indicates an offset outside its section.
	ErrInvalidPosition = errors.New("position out of bounds")

	// ErrMidMarker indicates an offset that falls strictly inside a marker.
	ErrMidMarker = errors.New("offset is not at a marker boundary")

	// ErrNotRendered indicates an operation that requires a mounted editor.
	ErrNotRendered = errors.New("editor is not rendered")

	// ErrNothingToUndo indicates an empty undo or redo stack.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// AssertionError reports a violated model invariant.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Message
}

// Assert panics with an *AssertionError when cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(&AssertionError{Message: fmt.Sprintf(format, args...)})
	}
}

// Recover converts an in-flight *AssertionError panic into *errp.
// Other panics are re-raised. Use it as `defer errs.Recover(&err)`.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	var assertion *AssertionError
	if err, ok := r.(error); ok && errors.As(err, &assertion) {
		*errp = assertion
		return
	}
	panic(r)
}
