package model

// SlotStatus is the occupancy state of a parking slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotOccupied    SlotStatus = "occupied"
	SlotReserved    SlotStatus = "reserved"
	SlotMaintenance SlotStatus = "maintenance"
)

// AllSlotStatuses lists every slot status.
func AllSlotStatuses() []SlotStatus {
	return []SlotStatus{SlotAvailable, SlotOccupied, SlotReserved, SlotMaintenance}
}

// Valid reports whether s is a declared slot status.
func (s SlotStatus) Valid() bool {
	return s.Tone() != ToneUnknown
}

// Tone maps the status to its badge colour.
func (s SlotStatus) Tone() Tone {
	switch s {
	case SlotAvailable:
		return ToneSuccess
	case SlotOccupied:
		return ToneError
	case SlotReserved:
		return ToneWarning
	case SlotMaintenance:
		return ToneNeutral
	}
	return ToneUnknown
}

// Slot is a parking bay.
type Slot struct {
	ID         string      `json:"_id"`
	SlotNumber string      `json:"slotNumber"`
	Floor      string      `json:"floor"`
	Type       VehicleType `json:"type"`
	Status     SlotStatus  `json:"status"`
	Rate       float64     `json:"rate"`
}

// ParkingStats is the parking dashboard summary.
type ParkingStats struct {
	TotalSlots     int `json:"totalSlots"`
	AvailableSlots int `json:"availableSlots"`
	OccupiedSlots  int `json:"occupiedSlots"`
	ParkedVehicles int `json:"parkedVehicles"`
}

// CreateSlotRequest creates a parking slot.
type CreateSlotRequest struct {
	SlotNumber string      `json:"slotNumber" binding:"required"`
	Floor      string      `json:"floor" binding:"required"`
	Type       VehicleType `json:"type" binding:"required"`
	Rate       float64     `json:"rate" binding:"gt=0"`
}

// ParkVehicleRequest checks a guest vehicle into a slot.
type ParkVehicleRequest struct {
	VehicleNumber string      `json:"vehicleNumber" binding:"required"`
	VehicleType   VehicleType `json:"vehicleType" binding:"required"`
	GuestName     string      `json:"guestName" binding:"required"`
	GuestRoom     string      `json:"guestRoom" binding:"required"`
	GuestPhone    string      `json:"guestPhone" binding:"required"`
	ParkingSlotID string      `json:"parkingSlotId" binding:"required"`
}
