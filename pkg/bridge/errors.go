package bridge

import "errors"

// Bridge errors.
var (
	// ErrNilSource is returned by New for a nil source object or system.
	ErrNilSource = errors.New("source must be a non-nil object")

	// ErrAssignComputed is returned when assigning to a computed member,
	// whether declared read-only or discovered read-only on first write.
	ErrAssignComputed = errors.New("cannot assign to computed property")

	// ErrUnknownMember is returned for member names the bridge did not
	// classify.
	ErrUnknownMember = errors.New("unknown member")

	// ErrNotCallable is returned by Call for non-callable members.
	ErrNotCallable = errors.New("member is not callable")

	// ErrDisposed is returned by Call after the bridge is disposed.
	ErrDisposed = errors.New("bridge is disposed")
)
