package parser

import (
	"golang.org/x/exp/slices"

	"github.com/nrivard/pvl/label"
)

// DuplicateKeys reports every key that occurs more than once directly
// under c, sorted for stable diagnostic output. Duplicate keys are
// structurally valid per the label tree's invariants; this exists purely
// so a caller building a lint report doesn't need to reimplement the
// counting.
func DuplicateKeys(c *label.Container) []string {
	counts := make(map[string]int)
	for _, item := range c.Slice(0, c.Len()) {
		counts[item.Key]++
	}
	var dups []string
	for key, n := range counts {
		if n > 1 {
			dups = append(dups, key)
		}
	}
	slices.Sort(dups)
	return dups
}
