package trace

import "time"

// Event records one bridge action. CBOR encoding uses integer keys for
// compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// BridgeID uniquely identifies the bridge instance (UUID).
	BridgeID string `cbor:"2,keyasint"`

	// Direction indicates which way the value moved.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// Member is the affected member name, empty for bridge-wide events.
	Member string `cbor:"5,keyasint,omitempty"`

	// Value is a plain snapshot of the propagated value, if any.
	Value any `cbor:"6,keyasint,omitempty"`

	// Detail carries free-form context (warning text, resubscribe reason).
	Detail string `cbor:"7,keyasint,omitempty"`
}

// Direction indicates which way a value moved through the bridge.
type Direction uint8

const (
	// DirNone is for events with no direction (teardown, warnings).
	DirNone Direction = 0
	// DirToSource is bridge-to-source propagation.
	DirToSource Direction = 1
	// DirToBridge is source-to-bridge propagation.
	DirToBridge Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirToSource:
		return "TO_SOURCE"
	case DirToBridge:
		return "TO_BRIDGE"
	default:
		return "NONE"
	}
}

// Category classifies a trace event.
type Category uint8

const (
	// CatSlotWrite is a top-level data-slot assignment.
	CatSlotWrite Category = 0
	// CatDerivedUpdate is a recomputed derived value landing in its slot.
	CatDerivedUpdate Category = 1
	// CatTriggerFire is a write-only trigger invocation.
	CatTriggerFire Category = 2
	// CatFlush is a deferred nested-mutation flush.
	CatFlush Category = 3
	// CatEchoSuppressed is a change notification skipped as an echo.
	CatEchoSuppressed Category = 4
	// CatResubscribe is a deep observation moved to a new value.
	CatResubscribe Category = 5
	// CatWarning is a diagnostic.
	CatWarning Category = 6
	// CatTeardown is bridge disposal.
	CatTeardown Category = 7
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CatSlotWrite:
		return "SLOT_WRITE"
	case CatDerivedUpdate:
		return "DERIVED_UPDATE"
	case CatTriggerFire:
		return "TRIGGER_FIRE"
	case CatFlush:
		return "FLUSH"
	case CatEchoSuppressed:
		return "ECHO_SUPPRESSED"
	case CatResubscribe:
		return "RESUBSCRIBE"
	case CatWarning:
		return "WARNING"
	case CatTeardown:
		return "TEARDOWN"
	default:
		return "UNKNOWN"
	}
}
