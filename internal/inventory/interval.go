package inventory

import (
	"time"

	"rental-inventory-backend/internal/model"
)

// Interval is the occupancy window a reservation imposes on a device tag.
// An open-ended interval has no upper bound: the reservation's nominal
// return date has passed without the device coming back.
type Interval struct {
	Start     time.Time
	End       time.Time
	OpenEnded bool
}

// Overlaps reports whether two occupancy windows share at least one day.
// Bounds are inclusive on both ends.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.OpenEnded && other.OpenEnded {
		// Both run to infinity; they always meet.
		return true
	}
	if iv.OpenEnded {
		return !other.End.Before(iv.Start)
	}
	if other.OpenEnded {
		return !iv.End.Before(other.Start)
	}
	return !iv.Start.After(other.End) && !other.Start.After(iv.End)
}

// Covers reports whether the interval occupies the given calendar day.
func (iv Interval) Covers(day time.Time) bool {
	if day.Before(iv.Start) {
		return false
	}
	return iv.OpenEnded || !day.After(iv.End)
}

// IntervalOf converts a reservation into the occupancy window it imposes,
// relative to the reference date (usually today). A reservation past its
// return date that was never marked returned occupies open-endedly.
func IntervalOf(r *model.Reservation, ref time.Time) Interval {
	open := r.Status != model.ReservationReturned && r.ReturnDate.Before(dateOf(ref))
	return Interval{Start: r.PickupDate, End: r.ReturnDate, OpenEnded: open}
}

// dateOf truncates a timestamp to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
