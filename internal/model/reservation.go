package model

import "time"

// Reservation statuses.
const (
	ReservationPending     = "pending"
	ReservationPickedUp    = "picked_up"
	ReservationNotPickedUp = "not_picked_up"
	ReservationReturned    = "returned"
)

// Reservation is a rental booking for one device of a given category.
// AssignedTag is nil until either staff or the allocation engine picks a
// physical unit.
//
// While Status != returned the reservation occupies its device for
// [PickupDate, ReturnDate] inclusive. A reservation whose return date has
// already passed but that was never marked returned keeps occupying the
// device with no upper bound until someone actually closes it.
type Reservation struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Category    string    `gorm:"size:32;index;not null" json:"category"`
	RenterID    string    `gorm:"size:64;index" json:"renterId"`
	AssignedTag *string   `gorm:"size:64;index" json:"assignedTag,omitempty"`
	PickupDate  time.Time `gorm:"index;not null" json:"pickupDate"`
	PickupTime  string    `gorm:"size:8" json:"pickupTime,omitempty"`
	ReturnDate  time.Time `gorm:"index;not null" json:"returnDate"`
	ReturnTime  string    `gorm:"size:8" json:"returnTime,omitempty"`
	Status      string    `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Assigned reports whether a physical device tag has been decided.
func (r *Reservation) Assigned() bool {
	return r.AssignedTag != nil && *r.AssignedTag != ""
}
