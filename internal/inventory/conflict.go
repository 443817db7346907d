package inventory

import (
	"time"

	"rental-inventory-backend/internal/model"
)

// ConflictIndex records, per device tag, the date intervals the tag is
// committed to. One instance is built per request and discarded with the
// response; caching it across requests would go stale against concurrent
// writers.
type ConflictIndex struct {
	byTag map[string][]Interval
}

// NewConflictIndex returns an empty index.
func NewConflictIndex() *ConflictIndex {
	return &ConflictIndex{byTag: make(map[string][]Interval)}
}

// BuildConflictIndex seeds an index from the reservations that already carry
// an assigned tag. Unassigned reservations contribute nothing until the
// engine decides their tag.
func BuildConflictIndex(reservations []model.Reservation, ref time.Time) *ConflictIndex {
	idx := NewConflictIndex()
	for i := range reservations {
		r := &reservations[i]
		if !r.Assigned() {
			continue
		}
		idx.Commit(*r.AssignedTag, IntervalOf(r, ref))
	}
	return idx
}

// IsFree reports whether the tag has no committed interval overlapping the
// candidate. The per-tag lists stay small (bounded by reservations per tag
// per window), so the check is a plain pairwise scan.
func (idx *ConflictIndex) IsFree(tag string, candidate Interval) bool {
	for _, iv := range idx.byTag[tag] {
		if iv.Overlaps(candidate) {
			return false
		}
	}
	return true
}

// Commit appends an interval to the tag's committed list.
func (idx *ConflictIndex) Commit(tag string, iv Interval) {
	idx.byTag[tag] = append(idx.byTag[tag], iv)
}

// Intervals returns the committed intervals for a tag.
func (idx *ConflictIndex) Intervals(tag string) []Interval {
	return idx.byTag[tag]
}

// Tags returns every tag with at least one committed interval.
func (idx *ConflictIndex) Tags() []string {
	tags := make([]string, 0, len(idx.byTag))
	for tag := range idx.byTag {
		tags = append(tags, tag)
	}
	return tags
}
