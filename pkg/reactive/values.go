package reactive

import (
	"regexp"
	"time"
)

// IsContainer reports whether v is a value the bridge treats as a
// mutable container: a string-keyed map or a generic slice. Everything
// else, including time.Time and compiled regexps, is passed through by
// identity and cannot be mutated through the bridge.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	case time.Time, *time.Time, *regexp.Regexp:
		return false
	default:
		return false
	}
}

// Clone returns a deep copy of v. Containers are copied recursively;
// all other values are returned as-is. A clone has a fresh identity at
// every level, which is what lets a reactive system on either side
// detect it as a new value.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, x := range val {
			out[k] = Clone(x)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, x := range val {
			out[i] = Clone(x)
		}
		return out
	default:
		return v
	}
}
