package model

import "time"

// ActivityRow is the stored copy of an upstream vehicle activity record.
type ActivityRow struct {
	ID            string    `gorm:"primaryKey;size:64"`
	VehicleNumber string    `gorm:"size:64;index;not null"`
	VehicleType   string    `gorm:"size:16;not null"`
	GuestName     string    `gorm:"size:256"`
	GuestRoom     string    `gorm:"size:32"`
	GuestPhone    string    `gorm:"size:64"`
	EntryTime     time.Time `gorm:"not null;index"`
	ExitTime      *time.Time
	Status        string `gorm:"size:16;not null;index"`
	TotalAmount   *float64
	SlotNumber    string    `gorm:"size:32"`
	SlotFloor     string    `gorm:"size:32"`
	SyncedAt      time.Time `gorm:"not null"`
}

// TableName pins the table name independent of the struct name.
func (ActivityRow) TableName() string {
	return "vehicle_activities"
}

// NewActivityRow converts a record into its stored form.
func NewActivityRow(v VehicleActivity, syncedAt time.Time) ActivityRow {
	row := ActivityRow{
		ID:            v.ID,
		VehicleNumber: v.VehicleNumber,
		VehicleType:   string(v.VehicleType),
		GuestName:     v.GuestName,
		GuestRoom:     v.GuestRoom,
		GuestPhone:    v.GuestPhone,
		EntryTime:     v.EntryTime.UTC(),
		Status:        string(v.Status),
		TotalAmount:   v.TotalAmount,
		SyncedAt:      syncedAt,
	}
	if v.ExitTime != nil {
		exit := v.ExitTime.UTC()
		row.ExitTime = &exit
	}
	if v.ParkingSlot != nil {
		row.SlotNumber = v.ParkingSlot.SlotNumber
		row.SlotFloor = v.ParkingSlot.Floor
	}
	return row
}

// Activity converts the stored row back into a record.
func (r ActivityRow) Activity() VehicleActivity {
	v := VehicleActivity{
		ID:            r.ID,
		VehicleNumber: r.VehicleNumber,
		VehicleType:   VehicleType(r.VehicleType),
		GuestName:     r.GuestName,
		GuestRoom:     r.GuestRoom,
		GuestPhone:    r.GuestPhone,
		EntryTime:     r.EntryTime,
		ExitTime:      r.ExitTime,
		Status:        VehicleStatus(r.Status),
		TotalAmount:   r.TotalAmount,
	}
	if r.SlotNumber != "" || r.SlotFloor != "" {
		v.ParkingSlot = &SlotRef{SlotNumber: r.SlotNumber, Floor: r.SlotFloor}
	}
	return v
}

// SameAs reports whether the row already holds the values in other,
// ignoring SyncedAt.
func (r ActivityRow) SameAs(other ActivityRow) bool {
	return r.ID == other.ID &&
		r.VehicleNumber == other.VehicleNumber &&
		r.VehicleType == other.VehicleType &&
		r.GuestName == other.GuestName &&
		r.GuestRoom == other.GuestRoom &&
		r.GuestPhone == other.GuestPhone &&
		r.EntryTime.Equal(other.EntryTime) &&
		equalTimePtr(r.ExitTime, other.ExitTime) &&
		r.Status == other.Status &&
		equalFloatPtr(r.TotalAmount, other.TotalAmount) &&
		r.SlotNumber == other.SlotNumber &&
		r.SlotFloor == other.SlotFloor
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
