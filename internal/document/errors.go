package document

import (
	"errors"
	"fmt"
)

var (
	ErrFormat  = errors.New("invalid painter document")
	ErrVersion = errors.New("unsupported painter document version")
)

// FormatError reports a structurally invalid document.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid painter document: %s", e.Reason)
	}
	return fmt.Sprintf("invalid painter document: %s: %s", e.Field, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// VersionError reports a version tag this build cannot read.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported painter document version %q (supported: %s)", e.Version, FormatVersion)
}

func (e *VersionError) Unwrap() error { return ErrVersion }
