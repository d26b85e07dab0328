package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// VehicleType is the parking category of a vehicle.
type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleBike VehicleType = "bike"
	VehicleVan  VehicleType = "van"
	VehicleBus  VehicleType = "bus"
)

// AllVehicleTypes lists every parking vehicle type.
func AllVehicleTypes() []VehicleType {
	return []VehicleType{VehicleCar, VehicleBike, VehicleVan, VehicleBus}
}

// Valid reports whether t is a declared vehicle type.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleCar, VehicleBike, VehicleVan, VehicleBus:
		return true
	}
	return false
}

// VehicleStatus is the lifecycle state of a vehicle activity record.
type VehicleStatus string

const (
	StatusParked VehicleStatus = "parked"
	StatusExited VehicleStatus = "exited"
)

// AllVehicleStatuses lists every vehicle status.
func AllVehicleStatuses() []VehicleStatus {
	return []VehicleStatus{StatusParked, StatusExited}
}

// Valid reports whether s is a declared vehicle status.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusParked, StatusExited:
		return true
	}
	return false
}

// Tone maps the status to its badge colour.
func (s VehicleStatus) Tone() Tone {
	switch s {
	case StatusParked:
		return TonePrimary
	case StatusExited:
		return ToneSuccess
	}
	return ToneUnknown
}

// SlotRef is the slot a vehicle occupied.
type SlotRef struct {
	SlotNumber string `json:"slotNumber"`
	Floor      string `json:"floor"`
}

// VehicleActivity is one parking visit, from entry to an optional exit.
type VehicleActivity struct {
	ID            string        `json:"_id"`
	VehicleNumber string        `json:"vehicleNumber"`
	VehicleType   VehicleType   `json:"vehicleType"`
	GuestName     string        `json:"guestName"`
	GuestRoom     string        `json:"guestRoom"`
	GuestPhone    string        `json:"guestPhone"`
	EntryTime     time.Time     `json:"entryTime"`
	ExitTime      *time.Time    `json:"exitTime,omitempty"`
	Status        VehicleStatus `json:"status"`
	TotalAmount   *float64      `json:"totalAmount,omitempty"`
	ParkingSlot   *SlotRef      `json:"parkingSlot,omitempty"`
}

// UnmarshalJSON accepts parkingSlot either populated or as a bare slot id.
// Anything other than an object leaves ParkingSlot nil.
func (v *VehicleActivity) UnmarshalJSON(data []byte) error {
	type plain VehicleActivity
	var w struct {
		plain
		ParkingSlot json.RawMessage `json:"parkingSlot"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = VehicleActivity(w.plain)
	v.ParkingSlot = nil

	raw := bytes.TrimSpace(w.ParkingSlot)
	if len(raw) > 0 && raw[0] == '{' {
		var slot SlotRef
		if err := json.Unmarshal(raw, &slot); err == nil {
			v.ParkingSlot = &slot
		}
	}
	return nil
}

// Errors returned by VehicleActivity.Validate.
var (
	ErrMissingID        = errors.New("missing id")
	ErrMissingEntryTime = errors.New("missing entry time")
	ErrInvalidStatus    = errors.New("invalid status")
)

// Validate rejects records that cannot be shown at all. Inconsistencies such
// as an exited record without an amount are not validation failures; they
// are reported as warnings by the log engine.
func (v VehicleActivity) Validate() error {
	if v.ID == "" {
		return ErrMissingID
	}
	if v.EntryTime.IsZero() {
		return fmt.Errorf("record %s: %w", v.ID, ErrMissingEntryTime)
	}
	if !v.Status.Valid() {
		return fmt.Errorf("record %s: %w %q", v.ID, ErrInvalidStatus, v.Status)
	}
	return nil
}
