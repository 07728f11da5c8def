package specobj

import "errors"

var (
	// ErrDegenerateSlit is returned when a slit's left and right edges
	// coincide (or cross) at the reference row.
	ErrDegenerateSlit = errors.New("degenerate slit geometry")

	// ErrTraceOutsideSlit marks an object trace whose fractional position
	// falls outside [0, 1] of its slit.
	ErrTraceOutsideSlit = errors.New("object trace outside slit")

	// ErrInvalidGeometry covers shapes, bounds and reference rows that
	// violate the record invariants.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrEncodingBounds is returned when an identity field does not fit its
	// fixed-width slot in an object name.
	ErrEncodingBounds = errors.New("identity field out of bounds")

	// ErrDecodeParse is returned when an object name fragment is not a
	// letter followed by an integer.
	ErrDecodeParse = errors.New("malformed object name")

	// ErrKeySetMismatch is returned by DecodeNames when a name carries a
	// different set of fields than the first name in the batch.
	ErrKeySetMismatch = errors.New("object names disagree on field set")

	// ErrMissingField is returned when a decoded name lacks a field the
	// caller needs (for matching: O, S and D).
	ErrMissingField = errors.New("object name missing field")

	// ErrNoCandidates is returned by MatchObject for an empty candidate
	// list. It is distinct from the "no match" outcome.
	ErrNoCandidates = errors.New("no candidate names")
)
