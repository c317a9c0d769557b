package lookup

import (
	"cmp"
	"slices"
)

func sortScored(hits []scored) {
	slices.SortFunc(hits, func(a, b scored) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		if c := cmp.Compare(a.runes, b.runes); c != 0 {
			return c
		}
		return cmp.Compare(a.entry, b.entry)
	})
}
