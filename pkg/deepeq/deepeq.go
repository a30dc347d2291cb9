// Package deepeq implements deep structural equality for the dynamic
// values the bridge shuttles between the two reactive systems.
//
// Values are compared by structure, not identity: slices elementwise,
// string-keyed maps by key set and pairwise values, numbers by numeric
// value across Go's numeric types (so an int written on one side equals
// the float64 that comes back from the other). NaN equals NaN. Cyclic
// graphs are handled with pairwise visit tracking, so two independently
// cyclic but structurally identical graphs compare equal while a cyclic
// graph never equals a merely deep acyclic one.
package deepeq

import (
	"math"
	"reflect"
)

// ref identifies a container value for cycle tracking. Slices need the
// length alongside the data pointer since subslices share storage.
type ref struct {
	ptr uintptr
	len int
}

// Equal reports whether a and b are deeply, structurally equal.
func Equal(a, b any) bool {
	return equal(a, b, nil)
}

func equal(a, b any, seen map[ref]ref) bool {
	if a == nil || b == nil {
		return a == b
	}

	if fa, ok := toFloat64(a); ok {
		fb, ok := toFloat64(b)
		if !ok {
			return false
		}
		// NaN compares equal to itself; -0 and +0 compare equal.
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb
	}

	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok {
			return false
		}
		if len(av) != len(bv) {
			return false
		}
		seen, done, result := checkPair(refOfSlice(av), refOfSlice(bv), seen)
		if done {
			return result
		}
		for i := range av {
			if !equal(av[i], bv[i], seen) {
				return false
			}
		}
		return true

	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			return false
		}
		if len(av) != len(bv) {
			return false
		}
		seen, done, result := checkPair(refOfMap(av), refOfMap(bv), seen)
		if done {
			return result
		}
		for k, x := range av {
			y, exists := bv[k]
			if !exists {
				return false
			}
			if !equal(x, y, seen) {
				return false
			}
		}
		return true
	}

	// A slice never equals a non-slice, regardless of the fallback below.
	if isSliceLike(a) != isSliceLike(b) {
		return false
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// checkPair records that a is being compared against b. If a was already
// paired, the comparison short-circuits: equal when paired with the same
// b as before, unequal otherwise. This is what distinguishes a true
// shared cycle from a structurally similar but acyclic counterpart.
func checkPair(a, b ref, seen map[ref]ref) (map[ref]ref, bool, bool) {
	if prev, ok := seen[a]; ok {
		return seen, true, prev == b
	}
	if seen == nil {
		seen = make(map[ref]ref)
	}
	seen[a] = b
	return seen, false, false
}

func refOfSlice(s []any) ref {
	return ref{ptr: reflect.ValueOf(s).Pointer(), len: len(s)}
}

func refOfMap(m map[string]any) ref {
	return ref{ptr: reflect.ValueOf(m).Pointer()}
}

func isSliceLike(v any) bool {
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// toFloat64 converts any Go numeric value to float64 for value-level
// comparison. Returns false for non-numeric values.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
