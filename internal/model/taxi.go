package model

import (
	"fmt"
	"math"
	"time"
)

// TaxiVehicleType is the class of car a guest books.
type TaxiVehicleType string

const (
	TaxiSedan  TaxiVehicleType = "sedan"
	TaxiSUV    TaxiVehicleType = "suv"
	TaxiLuxury TaxiVehicleType = "luxury"
	TaxiVan    TaxiVehicleType = "van"
	TaxiBus    TaxiVehicleType = "bus"
)

// AllTaxiVehicleTypes lists every bookable taxi class.
func AllTaxiVehicleTypes() []TaxiVehicleType {
	return []TaxiVehicleType{TaxiSedan, TaxiSUV, TaxiLuxury, TaxiVan, TaxiBus}
}

// Tariff is a flat charge plus a per-kilometre rate.
type Tariff struct {
	Base  float64 `json:"base"`
	PerKm float64 `json:"perKm"`
}

// Tariff returns the published fare for the class.
func (t TaxiVehicleType) Tariff() (Tariff, bool) {
	switch t {
	case TaxiSedan:
		return Tariff{Base: 50, PerKm: 12}, true
	case TaxiSUV:
		return Tariff{Base: 80, PerKm: 15}, true
	case TaxiLuxury:
		return Tariff{Base: 150, PerKm: 25}, true
	case TaxiVan:
		return Tariff{Base: 100, PerKm: 18}, true
	case TaxiBus:
		return Tariff{Base: 200, PerKm: 20}, true
	}
	return Tariff{}, false
}

// Valid reports whether t is a declared taxi class.
func (t TaxiVehicleType) Valid() bool {
	_, ok := t.Tariff()
	return ok
}

// EstimateFare prices a trip of distanceKm, rounded to two decimals.
func EstimateFare(t TaxiVehicleType, distanceKm float64) (float64, error) {
	tariff, ok := t.Tariff()
	if !ok {
		return 0, fmt.Errorf("unknown taxi vehicle type %q", t)
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return 0, fmt.Errorf("invalid distance %v", distanceKm)
	}
	fare := tariff.Base + tariff.PerKm*distanceKm
	return math.Round(fare*100) / 100, nil
}

// BookingStatus is the progress of a taxi booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// AllBookingStatuses lists every booking status.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled}
}

// Valid reports whether s is a declared booking status.
func (s BookingStatus) Valid() bool {
	return s.Tone() != ToneUnknown
}

// Tone maps the status to its badge colour.
func (s BookingStatus) Tone() Tone {
	switch s {
	case BookingPending:
		return ToneWarning
	case BookingConfirmed:
		return ToneInfo
	case BookingInProgress:
		return TonePrimary
	case BookingCompleted:
		return ToneSuccess
	case BookingCancelled:
		return ToneError
	}
	return ToneUnknown
}

// PaymentStatus is the settlement state of a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// AllPaymentStatuses lists every payment status.
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentPending, PaymentPaid, PaymentRefunded}
}

// Valid reports whether s is a declared payment status.
func (s PaymentStatus) Valid() bool {
	return s.Tone() != ToneUnknown
}

// Tone maps the status to its badge colour.
func (s PaymentStatus) Tone() Tone {
	switch s {
	case PaymentPending:
		return ToneWarning
	case PaymentPaid:
		return ToneSuccess
	case PaymentRefunded:
		return ToneError
	}
	return ToneUnknown
}

// DriverStatus is a driver's availability.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
	DriverOffDuty   DriverStatus = "off-duty"
)

// AllDriverStatuses lists every driver status.
func AllDriverStatuses() []DriverStatus {
	return []DriverStatus{DriverAvailable, DriverBusy, DriverOffDuty}
}

// Tone maps the status to its badge colour.
func (s DriverStatus) Tone() Tone {
	switch s {
	case DriverAvailable:
		return ToneSuccess
	case DriverBusy:
		return ToneWarning
	case DriverOffDuty:
		return ToneError
	}
	return ToneUnknown
}

// Driver is a taxi driver registered with the hotel.
type Driver struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	LicenseNumber string          `json:"licenseNumber"`
	VehicleNumber string          `json:"vehicleNumber"`
	VehicleType   TaxiVehicleType `json:"vehicleType"`
	Status        DriverStatus    `json:"status"`
	Rating        float64         `json:"rating"`
}

// Booking is a guest taxi booking.
type Booking struct {
	ID             string          `json:"_id"`
	GuestName      string          `json:"guestName"`
	GuestRoom      string          `json:"guestRoom"`
	GuestPhone     string          `json:"guestPhone"`
	PickupLocation string          `json:"pickupLocation"`
	DropLocation   string          `json:"dropLocation"`
	PickupTime     time.Time       `json:"pickupTime"`
	VehicleType    TaxiVehicleType `json:"vehicleType"`
	Distance       float64         `json:"distance"`
	Notes          string          `json:"notes,omitempty"`
	Status         BookingStatus   `json:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	TotalFare      float64         `json:"totalFare"`
	Driver         *Driver         `json:"driver,omitempty"`
}

// TaxiStats is the taxi dashboard summary.
type TaxiStats struct {
	TotalBookings    int     `json:"totalBookings"`
	PendingBookings  int     `json:"pendingBookings"`
	AvailableDrivers int     `json:"availableDrivers"`
	TodayRevenue     float64 `json:"todayRevenue"`
}

// CreateBookingRequest books a taxi for a guest.
type CreateBookingRequest struct {
	GuestName      string          `json:"guestName" binding:"required"`
	GuestRoom      string          `json:"guestRoom" binding:"required"`
	GuestPhone     string          `json:"guestPhone" binding:"required"`
	PickupLocation string          `json:"pickupLocation" binding:"required"`
	DropLocation   string          `json:"dropLocation" binding:"required"`
	PickupTime     string          `json:"pickupTime" binding:"required"`
	VehicleType    TaxiVehicleType `json:"vehicleType" binding:"required"`
	Distance       float64         `json:"distance" binding:"gte=0"`
	Notes          string          `json:"notes"`
}

// CreateDriverRequest registers a driver.
type CreateDriverRequest struct {
	Name          string          `json:"name" binding:"required"`
	Phone         string          `json:"phone" binding:"required"`
	LicenseNumber string          `json:"licenseNumber" binding:"required"`
	VehicleNumber string          `json:"vehicleNumber" binding:"required"`
	VehicleType   TaxiVehicleType `json:"vehicleType" binding:"required"`
}
