package upstream

import (
	"context"
	"net/http"
	"net/url"

	"hotel-console-backend/internal/model"
)

// Bookings lists taxi bookings.
func (c *Client) Bookings(ctx context.Context, token string) ([]model.Booking, error) {
	var b []model.Booking
	err := c.get(ctx, token, "/taxi/bookings", "/taxi/bookings", nil, &b)
	return b, err
}

// Booking fetches one booking.
func (c *Client) Booking(ctx context.Context, token, id string) (*model.Booking, error) {
	var b model.Booking
	if err := c.get(ctx, token, "/taxi/bookings/:id", "/taxi/bookings/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking books a taxi. PickupTime must already be RFC 3339.
func (c *Client) CreateBooking(ctx context.Context, token string, req model.CreateBookingRequest) (*model.Booking, error) {
	var b model.Booking
	if err := c.do(ctx, token, http.MethodPost, "/taxi/bookings", "/taxi/bookings", nil, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBookingStatus moves a booking through its lifecycle.
func (c *Client) UpdateBookingStatus(ctx context.Context, token, id string, status model.BookingStatus) (*model.Booking, error) {
	return c.putBooking(ctx, token, id, "status", map[string]any{"status": status})
}

// AssignDriver attaches a driver to a booking.
func (c *Client) AssignDriver(ctx context.Context, token, id, driverID string) (*model.Booking, error) {
	return c.putBooking(ctx, token, id, "assign-driver", map[string]any{"driverId": driverID})
}

// UpdatePayment records the payment state of a booking.
func (c *Client) UpdatePayment(ctx context.Context, token, id string, status model.PaymentStatus) (*model.Booking, error) {
	return c.putBooking(ctx, token, id, "payment", map[string]any{"paymentStatus": status})
}

func (c *Client) putBooking(ctx context.Context, token, id, action string, body any) (*model.Booking, error) {
	var b model.Booking
	path := "/taxi/bookings/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, token, http.MethodPut, "/taxi/bookings/:id/"+action, path, nil, body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Drivers lists registered drivers.
func (c *Client) Drivers(ctx context.Context, token string) ([]model.Driver, error) {
	var d []model.Driver
	err := c.get(ctx, token, "/taxi/drivers", "/taxi/drivers", nil, &d)
	return d, err
}

// AvailableDrivers lists idle drivers for a vehicle type; empty means any.
func (c *Client) AvailableDrivers(ctx context.Context, token string, t model.TaxiVehicleType) ([]model.Driver, error) {
	var q url.Values
	if t != "" {
		q = url.Values{"vehicleType": {string(t)}}
	}
	var d []model.Driver
	err := c.get(ctx, token, "/taxi/drivers/available", "/taxi/drivers/available", q, &d)
	return d, err
}

// CreateDriver registers a driver.
func (c *Client) CreateDriver(ctx context.Context, token string, req model.CreateDriverRequest) (*model.Driver, error) {
	var d model.Driver
	if err := c.do(ctx, token, http.MethodPost, "/taxi/drivers", "/taxi/drivers", nil, req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// TaxiStats returns the taxi dashboard summary.
func (c *Client) TaxiStats(ctx context.Context, token string) (*model.TaxiStats, error) {
	var s model.TaxiStats
	if err := c.get(ctx, token, "/taxi/stats", "/taxi/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
