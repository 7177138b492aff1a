package hdt

import (
	"errors"
	"fmt"

	"github.com/KonradHoeffner/hdt/internal/wireerr"
)

// Exported errors (spec.md §7).
var (
	// ErrFormatUnsupported is returned when the magic, a section's format
	// URI, or a section's type byte is not the recognized default variant.
	ErrFormatUnsupported = wireerr.ErrFormatUnsupported

	// ErrIDOutOfRange is returned when a query supplies an id below 1 or
	// above a role's maximum.
	ErrIDOutOfRange = wireerr.ErrIDOutOfRange

	// ErrInvalidTerm is returned when a term contains an interior NUL byte,
	// which the dictionary cannot represent since NUL is its section
	// terminator.
	ErrInvalidTerm = wireerr.ErrInvalidTerm
)

// CorruptError reports a CRC mismatch, popcount mismatch, width overflow,
// non-ascending dictionary order, or any other internal invariant violation
// discovered while parsing or validating section.
type CorruptError struct {
	Section string
	Reason  string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("hdt: corrupt %s: %s", e.Section, e.Reason)
}

func (e *CorruptError) Is(target error) bool {
	return target == wireerr.ErrCorrupt
}

func (e *CorruptError) Unwrap() error {
	return wireerr.ErrCorrupt
}

// wrapSection classifies an error returned by an internal/* parser into
// the public error taxonomy of spec.md §7, tagging it with the container
// section it came from. FormatUnsupported and IdOutOfRange pass through
// unchanged (they are already correctly typed); anything wrapping
// wireerr.ErrCorrupt is re-surfaced as a CorruptError carrying section
// context; anything else (I/O failure) is wrapped plainly.
func wrapSection(section string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, wireerr.ErrFormatUnsupported) || errors.Is(err, wireerr.ErrIDOutOfRange) || errors.Is(err, wireerr.ErrInvalidTerm) {
		return err
	}
	if errors.Is(err, wireerr.ErrCorrupt) {
		return &CorruptError{Section: section, Reason: err.Error()}
	}
	return fmt.Errorf("hdt: %s: %w", section, err)
}
