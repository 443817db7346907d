package inventory

import (
	"time"

	"rental-inventory-backend/internal/model"
)

// TimeSlot is the derived occupancy of one calendar day. It is never
// persisted; it exists only inside a response.
type TimeSlot struct {
	Date         time.Time           `json:"date"`
	Reservations []model.Reservation `json:"reservations"`
}

// BuildTimeline converts the final reservation set into one TimeSlot per day
// in the window, inclusive. A reservation lands on every day its interval
// covers; an open-ended (unreturned, overdue) reservation keeps appearing on
// every day from its pickup onward, so staff watch the backlog grow instead
// of seeing it vanish at the nominal return date. Pure function; it never
// touches the conflict index.
func BuildTimeline(w Window, reservations []model.Reservation, ref time.Time) []TimeSlot {
	days := w.Days()
	slots := make([]TimeSlot, 0, len(days))
	for _, day := range days {
		slot := TimeSlot{Date: day}
		for i := range reservations {
			r := &reservations[i]
			if IntervalOf(r, ref).Covers(day) {
				slot.Reservations = append(slot.Reservations, *r)
			}
		}
		slots = append(slots, slot)
	}
	return slots
}
