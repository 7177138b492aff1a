// Package wireerr holds the sentinel errors shared by every internal
// wire-format parser (bitseq, packedarray, ciheader, dict, triples). The
// root package wraps ErrCorrupt with section/reason context to produce the
// public CorruptError and re-exports the others unchanged (spec.md §7).
package wireerr

import "errors"

// ErrCorrupt signals a CRC mismatch, popcount mismatch, width overflow, or
// any other structural inconsistency discovered while parsing a section.
var ErrCorrupt = errors.New("corrupt HDT section")

// ErrFormatUnsupported signals a recognized-but-unsupported tag, version,
// or format URI.
var ErrFormatUnsupported = errors.New("unsupported HDT format")

// ErrInvalidTerm signals a term containing an interior NUL byte, which the
// front-coded dictionary cannot represent since NUL is its block
// terminator (spec.md §7).
var ErrInvalidTerm = errors.New("invalid HDT term: contains interior NUL")

// ErrIDOutOfRange signals a dictionary id below 1 or above a role's
// maximum; distinct from ErrCorrupt since it is a normal query-time
// outcome, not a structural parse failure (spec.md §7).
var ErrIDOutOfRange = errors.New("HDT dictionary id out of range")
