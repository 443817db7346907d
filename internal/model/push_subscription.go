package model

import "time"

// PushSubscription holds a staff browser's web push subscription for
// no-capacity alerts. Categories is a comma-separated list of categories the
// staffer cares about; empty means all.
type PushSubscription struct {
	Endpoint   string    `gorm:"primaryKey"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	Categories string    `gorm:"size:256"`
	CreatedAt  time.Time `gorm:"not null"`
}
