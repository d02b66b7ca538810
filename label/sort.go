package label

import "golang.org/x/exp/slices"

// SortedSet returns a copy of s with its elements sorted by their debug
// text. PDS3 and ISIS encoders use this when asked to normalize Set output;
// Set itself remains order-preserving from parsing, matching Testable
// Property 2 (a Set is "unordered" only in that an encoder may choose to
// re-sort it, not that parsing discards order).
func SortedSet(s Set) Set {
	out := Set{Elements: append([]Value(nil), s.Elements...)}
	slices.SortFunc(out.Elements, func(a, b Value) int {
		as, bs := a.GoString(), b.GoString()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})
	return out
}
