// Package loot implements the chest and daily-item economy: weighted random
// sampling over tank catalogue entries and the pure reward-generation
// formulas that turn a roll into a model.Chest or model.DailyItem.
package loot

import "math/rand/v2"

// entry pairs a value with its sampling weight.
type entry[T any] struct {
	item   T
	weight float64
}

// WeightedRandomList draws items with probability proportional to their
// assigned weight. The zero value is an empty, ready-to-use list.
type WeightedRandomList[T any] struct {
	entries []entry[T]
	total   float64
}

// Add registers item with the given weight. Weight must be positive for the
// item to ever be drawn.
func (l *WeightedRandomList[T]) Add(item T, weight float64) {
	l.entries = append(l.entries, entry[T]{item: item, weight: weight})
	l.total += weight
}

// Len reports how many entries remain.
func (l *WeightedRandomList[T]) Len() int {
	return len(l.entries)
}

// GetRandom draws one item uniformly by weight. It never panics on a
// non-empty list; ok is false only when the list is empty.
func (l *WeightedRandomList[T]) GetRandom() (item T, ok bool) {
	if len(l.entries) == 0 {
		return item, false
	}
	if l.total <= 0 {
		return l.entries[len(l.entries)-1].item, true
	}

	r := rand.Float64() * l.total
	var sum float64
	for _, e := range l.entries {
		sum += e.weight
		if sum >= r {
			return e.item, true
		}
	}
	// Floating point drift: fall back to the last entry.
	return l.entries[len(l.entries)-1].item, true
}

// RemoveEntry removes the first entry matching equals and returns its
// weight. Returns (0, false) if no entry matched.
func (l *WeightedRandomList[T]) RemoveEntry(equals func(T) bool) (float64, bool) {
	for i, e := range l.entries {
		if equals(e.item) {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.total -= e.weight
			return e.weight, true
		}
	}
	return 0, false
}
