package cssom

import "sort"

// SortByPriority stable-sorts rules in ascending Selector.Priority() order,
// so that later application in internal/style overwrites earlier
// declarations of equal specificity with the document-order-later one
// (spec.md §4.4's cascade: "ascending priority, ties broken by document
// order"), matching original_source ui.py's
// sorted(self.rules, key=cascade_priority). sort.SliceStable preserves the
// input order of equal-priority rules, which is exactly document order
// since Parse appends rules in the order they were written.
func SortByPriority(rules []Rule) []Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Selector.Priority() < sorted[j].Selector.Priority()
	})
	return sorted
}
