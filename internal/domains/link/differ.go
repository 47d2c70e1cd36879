package link

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Diff compares the persisted relationship set with the desired one.
// removed = previous - desired, added = desired - previous. Inputs are
// treated as sets: order and repeated entries do not change the result.
// Outputs keep the order of first appearance in their source slice.
func Diff(previous, desired []string) (removed, added []string) {
	removed, added = lo.Difference(lo.Uniq(previous), lo.Uniq(desired))
	return removed, added
}

// DiffIDs renders both sets to canonical strings before comparing them.
func DiffIDs(previous, desired []uuid.UUID) (removed, added []string) {
	return Diff(IDStrings(previous), IDStrings(desired))
}
