package model

import "time"

// Device statuses. Lifecycle transitions are driven by staff edits; the
// allocation core only reads Tag and Category.
const (
	DeviceAvailable   = "available"
	DeviceReserved    = "reserved"
	DeviceInUse       = "in_use"
	DeviceMaintenance = "maintenance"
	DeviceDamaged     = "damaged"
	DeviceLost        = "lost"
)

// Device is a single physical rental unit. The asset tag is its identity;
// the category is the model/type a reservation requests before a specific
// unit is chosen.
type Device struct {
	Tag       string    `gorm:"size:64;primaryKey" json:"tag"`
	Category  string    `gorm:"size:32;index;not null" json:"category"`
	Status    string    `gorm:"size:20;not null;default:'available'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
