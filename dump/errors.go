package dump

import "errors"

// Failure kinds. Operations wrap these with context via fmt.Errorf("...: %w"),
// so callers classify with errors.Is.
var (
	// ErrMalformedDump reports a buffer that is not a dump: wrong length or
	// missing start/end marker. Fatal to decoding; the buffer must be discarded.
	ErrMalformedDump = errors.New("malformed dump")

	// ErrUnknownKey reports a logical parameter the schema does not (yet) know.
	ErrUnknownKey = errors.New("unknown parameter key")

	// ErrInvalidDomain reports a value outside a parameter's legal range.
	// The target is left unmodified.
	ErrInvalidDomain = errors.New("value outside parameter domain")

	// ErrDuplicateKey reports a registration under an already-taken key.
	ErrDuplicateKey = errors.New("duplicate parameter key")

	// ErrOutOfBounds reports a descriptor offset beyond the declared dump length.
	ErrOutOfBounds = errors.New("offset outside dump bounds")

	// ErrOverlapConflict reports a registration claiming bits of a byte that
	// another descriptor already owns.
	ErrOverlapConflict = errors.New("descriptor bit ownership overlap")
)
