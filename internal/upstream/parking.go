package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/metrics"
	"hotel-console-backend/internal/model"
)

// Slots lists parking slots.
func (c *Client) Slots(ctx context.Context, token string) ([]model.Slot, error) {
	var slots []model.Slot
	err := c.get(ctx, token, "/parking/slots", "/parking/slots", nil, &slots)
	return slots, err
}

// AvailableSlots lists free slots for a vehicle type.
func (c *Client) AvailableSlots(ctx context.Context, token string, t model.VehicleType) ([]model.Slot, error) {
	var slots []model.Slot
	err := c.get(ctx, token, "/parking/slots/available", "/parking/slots/available", url.Values{"type": {string(t)}}, &slots)
	return slots, err
}

// CreateSlot adds a parking slot.
func (c *Client) CreateSlot(ctx context.Context, token string, req model.CreateSlotRequest) (*model.Slot, error) {
	var slot model.Slot
	if err := c.do(ctx, token, http.MethodPost, "/parking/slots", "/parking/slots", nil, req, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ParkVehicle checks a vehicle into a slot.
func (c *Client) ParkVehicle(ctx context.Context, token string, req model.ParkVehicleRequest) (*model.VehicleActivity, error) {
	var v model.VehicleActivity
	if err := c.do(ctx, token, http.MethodPost, "/parking/vehicles/park", "/parking/vehicles/park", nil, req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ParkedVehicles lists vehicles currently parked.
func (c *Client) ParkedVehicles(ctx context.Context, token string) ([]model.VehicleActivity, error) {
	return c.activities(ctx, token, "/parking/vehicles")
}

// History lists every vehicle activity record. Malformed records are
// dropped one by one and logged; the rest of the batch is returned.
func (c *Client) History(ctx context.Context, token string) ([]model.VehicleActivity, error) {
	return c.activities(ctx, token, "/parking/vehicles/history")
}

func (c *Client) activities(ctx context.Context, token, path string) ([]model.VehicleActivity, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, token, path, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeActivities(ctx, raw), nil
}

func decodeActivities(ctx context.Context, raw []json.RawMessage) []model.VehicleActivity {
	log := logger.Get(ctx)
	out := make([]model.VehicleActivity, 0, len(raw))
	for i, msg := range raw {
		var v model.VehicleActivity
		if err := json.Unmarshal(msg, &v); err != nil {
			log.Warnf("Skipping vehicle activity #%d: %v", i, err)
			metrics.RejectedRecords.Inc()
			continue
		}
		if err := v.Validate(); err != nil {
			log.Warnf("Skipping vehicle activity #%d: %v", i, err)
			metrics.RejectedRecords.Inc()
			continue
		}
		out = append(out, v)
	}
	return out
}

// ExitVehicle checks a vehicle out and returns the closed record.
func (c *Client) ExitVehicle(ctx context.Context, token, id string) (*model.VehicleActivity, error) {
	var v model.VehicleActivity
	path := fmt.Sprintf("/parking/vehicles/%s/exit", url.PathEscape(id))
	if err := c.do(ctx, token, http.MethodPut, "/parking/vehicles/:id/exit", path, nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ParkingStats returns the parking dashboard summary.
func (c *Client) ParkingStats(ctx context.Context, token string) (*model.ParkingStats, error) {
	var s model.ParkingStats
	if err := c.get(ctx, token, "/parking/stats", "/parking/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
