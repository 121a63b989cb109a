// Package errs names the error taxonomy the control plane distinguishes when
// deciding how (or whether) to surface a failure.
package errs

import "errors"

// Kind classifies a failure so callers can apply the right propagation
// policy without string-matching error messages.
type Kind int

const (
	// HardwareAbsent means a bus/device failed to open (I2C, mmap, GPIO
	// expander). Always recovered locally by flipping a presence flag.
	HardwareAbsent Kind = iota
	// HardwareTransient means a read/write on an otherwise-present bus
	// returned an error. Logged, never surfaced; caller falls back to a
	// best-effort value.
	HardwareTransient
	// ImportFailed means the importer subprocess exited non-zero, or was
	// killed by a signal this process did not send.
	ImportFailed
	// AllocationExhausted means a track hit MAX_BLOCKS or the allocator
	// failed; growth halts but existing audio keeps playing.
	AllocationExhausted
	// ProgrammerError means an invariant was violated by the caller (RT
	// thread touching a blocking primitive, double-free of the empty
	// track, etc). These panic; they are bugs, not runtime conditions.
	ProgrammerError
)

func (k Kind) String() string {
	switch k {
	case HardwareAbsent:
		return "hardware_absent"
	case HardwareTransient:
		return "hardware_transient"
	case ImportFailed:
		return "import_failed"
	case AllocationExhausted:
		return "allocation_exhausted"
	case ProgrammerError:
		return "programmer_error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so the propagation policy in
// spec §7 can be applied mechanically by callers that switch on Kind().
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, reporting ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}
