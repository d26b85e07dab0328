package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscription either follows every vehicle exit or only the vehicles it
// watches.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	AllExits  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	WatchedVehicles []WatchedVehicle `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// WatchedVehicle links a subscription to a vehicle number.
type WatchedVehicle struct {
	Endpoint      string `gorm:"primaryKey"`
	VehicleNumber string `gorm:"primaryKey;size:64;index"`
}

// ExitEvent describes a vehicle that left the car park.
type ExitEvent struct {
	ActivityID    string
	VehicleNumber string
	GuestRoom     string
	TotalAmount   *float64
}
