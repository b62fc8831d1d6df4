package cli

import (
	"errors"

	"github.com/yaklabco/gomobiledoc/internal/configloader"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/fsutil"
)

// Exit codes for gomobiledoc.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitDifferences indicates diff found differences.
	ExitDifferences = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitDataError indicates an input document that could not be read as a post.
	ExitDataError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 78
)

// ErrDifferencesFound is returned by diff when the posts differ.
var ErrDifferencesFound = errors.New("posts differ")

// ErrInvalidUsage marks a bad flag value or argument combination.
var ErrInvalidUsage = errors.New("invalid usage")

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrDifferencesFound):
		return ExitDifferences
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.As(err, &validation), errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory):
		return ExitIOError
	case errors.Is(err, errs.ErrUnsupportedVersion), errors.Is(err, errs.ErrMalformedDocument),
		errors.Is(err, errs.ErrUnknownCard), errors.Is(err, errs.ErrUnknownAtom):
		return ExitDataError
	default:
		return ExitInternalError
	}
}
