package inventory

import (
	"fmt"
	"sort"
	"time"

	"rental-inventory-backend/internal/model"
)

// Outcome is the terminal state of one reservation within an allocation run.
type Outcome string

const (
	OutcomeAssigned   Outcome = "assigned"
	OutcomeNoCapacity Outcome = "no_capacity"
)

// Decision records why a reservation received (or failed to receive) a tag.
type Decision struct {
	ReservationID string  `json:"reservationId"`
	Tag           string  `json:"tag,omitempty"`
	Outcome       Outcome `json:"outcome"`
	Reason        string  `json:"reason"`
}

// TagPreference suggests a preferred tag for a reservation, or "" for no
// preference. It is a soft policy: the engine falls through to first-fit
// whenever the preferred tag is busy or unknown.
type TagPreference func(r *model.Reservation) string

// Engine assigns free, category-matching tags to unassigned reservations.
// It is deliberately single-threaded: each commit happens before the next
// reservation is examined, which is what guarantees overlap-freedom without
// locks.
type Engine struct {
	Preference TagPreference
}

// Allocate processes the unassigned reservations of one category in a fixed,
// reproducible order (ascending pickup date, then ascending id) and assigns
// the first free candidate tag to each. Candidates must be sorted by the
// caller; the engine does not reorder them. Reservations that get a tag are
// mutated in place so callers see the assignment downstream.
func (e *Engine) Allocate(category string, pending []*model.Reservation, candidates []string, idx *ConflictIndex, ref time.Time) []Decision {
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].PickupDate.Equal(pending[j].PickupDate) {
			return pending[i].PickupDate.Before(pending[j].PickupDate)
		}
		return pending[i].ID < pending[j].ID
	})

	decisions := make([]Decision, 0, len(pending))
	for _, r := range pending {
		iv := IntervalOf(r, ref)

		tag, reason := e.pickTag(r, iv, candidates, idx)
		if tag == "" {
			why := fmt.Sprintf("all %d devices in category %s are booked for %s to %s",
				len(candidates), category,
				r.PickupDate.Format(DateLayout), r.ReturnDate.Format(DateLayout))
			if len(candidates) == 0 {
				why = fmt.Sprintf("no devices exist in category %s", category)
			}
			decisions = append(decisions, Decision{
				ReservationID: r.ID,
				Outcome:       OutcomeNoCapacity,
				Reason:        why,
			})
			continue
		}

		// Commit before looking at the next reservation so two overlapping
		// bookings can never land on the same tag within one pass.
		idx.Commit(tag, iv)
		t := tag
		r.AssignedTag = &t
		decisions = append(decisions, Decision{
			ReservationID: r.ID,
			Tag:           tag,
			Outcome:       OutcomeAssigned,
			Reason:        reason,
		})
	}
	return decisions
}

func (e *Engine) pickTag(r *model.Reservation, iv Interval, candidates []string, idx *ConflictIndex) (string, string) {
	if e.Preference != nil {
		if pref := e.Preference(r); pref != "" && containsTag(candidates, pref) && idx.IsFree(pref, iv) {
			return pref, fmt.Sprintf("kept device %s from the renter's previous booking", pref)
		}
	}
	for _, tag := range candidates {
		if idx.IsFree(tag, iv) {
			return tag, fmt.Sprintf("first free device in category %s", r.Category)
		}
	}
	return "", ""
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// ContinuityPreference builds a TagPreference from the already-assigned
// reservations of this run: a renter whose previous booking on some tag ends
// the day before (or the day of) the new pickup keeps that tag when it is
// free, so back-to-back extensions stay on the same physical device.
func ContinuityPreference(assigned []model.Reservation) TagPreference {
	byRenter := make(map[string][]model.Reservation)
	for _, h := range assigned {
		if !h.Assigned() || h.RenterID == "" {
			continue
		}
		byRenter[h.RenterID] = append(byRenter[h.RenterID], h)
	}

	return func(r *model.Reservation) string {
		if r.RenterID == "" {
			return ""
		}
		var best *model.Reservation
		for i := range byRenter[r.RenterID] {
			h := &byRenter[r.RenterID][i]
			if h.ID == r.ID {
				continue
			}
			gap := r.PickupDate.Sub(h.ReturnDate)
			if gap < 0 || gap > 24*time.Hour {
				continue
			}
			if best == nil || h.ReturnDate.After(best.ReturnDate) {
				best = h
			}
		}
		if best == nil {
			return ""
		}
		return *best.AssignedTag
	}
}
