package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/apperror"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/parse"
)

// ListBookings handles GET /api/taxi/bookings.
func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.upstream.Bookings(c.Request.Context(), upstreamToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /api/taxi/bookings/:id.
func (h *Handler) GetBooking(c *gin.Context) {
	booking, err := h.upstream.Booking(c.Request.Context(), upstreamToken(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CreateBooking handles POST /api/taxi/bookings. The pickup time may come
// from a datetime-local input and is sent upstream as RFC 3339.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.VehicleType.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown taxi vehicle type %q", req.VehicleType)))
		return
	}
	pickup, err := parse.ParsePickupTime(req.PickupTime, h.engine.Location())
	if err != nil {
		h.fail(c, err)
		return
	}
	req.PickupTime = pickup.UTC().Format(time.RFC3339)

	booking, err := h.upstream.CreateBooking(c.Request.Context(), upstreamToken(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, booking)
}

type bookingStatusRequest struct {
	Status model.BookingStatus `json:"status" binding:"required"`
}

// UpdateBookingStatus handles PUT /api/taxi/bookings/:id/status.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	var req bookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Status.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown booking status %q", req.Status)))
		return
	}

	booking, err := h.upstream.UpdateBookingStatus(c.Request.Context(), upstreamToken(c), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, booking)
}

type assignDriverRequest struct {
	DriverID string `json:"driverId" binding:"required"`
}

// AssignDriver handles PUT /api/taxi/bookings/:id/assign-driver.
func (h *Handler) AssignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.upstream.AssignDriver(c.Request.Context(), upstreamToken(c), c.Param("id"), req.DriverID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, booking)
}

type paymentRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus" binding:"required"`
}

// UpdatePayment handles PUT /api/taxi/bookings/:id/payment.
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.PaymentStatus.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown payment status %q", req.PaymentStatus)))
		return
	}

	booking, err := h.upstream.UpdatePayment(c.Request.Context(), upstreamToken(c), c.Param("id"), req.PaymentStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, booking)
}

// ListDrivers handles GET /api/taxi/drivers.
func (h *Handler) ListDrivers(c *gin.Context) {
	drivers, err := h.upstream.Drivers(c.Request.Context(), upstreamToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// AvailableDrivers handles GET /api/taxi/drivers/available?vehicleType=.
func (h *Handler) AvailableDrivers(c *gin.Context) {
	vt := model.TaxiVehicleType(c.Query("vehicleType"))
	if !vt.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown taxi vehicle type %q", vt)))
		return
	}
	drivers, err := h.upstream.AvailableDrivers(c.Request.Context(), upstreamToken(c), vt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// CreateDriver handles POST /api/taxi/drivers.
func (h *Handler) CreateDriver(c *gin.Context) {
	var req model.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.VehicleType.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown taxi vehicle type %q", req.VehicleType)))
		return
	}
	req.VehicleNumber = parse.NormalizeVehicleNumber(req.VehicleNumber)

	driver, err := h.upstream.CreateDriver(c.Request.Context(), upstreamToken(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, driver)
}

// TaxiStats handles GET /api/taxi/stats.
func (h *Handler) TaxiStats(c *gin.Context) {
	stats, err := h.upstream.TaxiStats(c.Request.Context(), upstreamToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type fareEstimate struct {
	VehicleType model.TaxiVehicleType `json:"vehicleType"`
	Distance    float64               `json:"distance"`
	Tariff      model.Tariff          `json:"tariff"`
	Fare        float64               `json:"fare"`
	Currency    string                `json:"currency"`
}

// FareEstimate handles GET /api/taxi/fare-estimate?vehicleType=&distance=.
func (h *Handler) FareEstimate(c *gin.Context) {
	vt := model.TaxiVehicleType(c.Query("vehicleType"))
	distance, err := strconv.ParseFloat(c.DefaultQuery("distance", "0"), 64)
	if err != nil {
		h.fail(c, apperror.New(http.StatusBadRequest, "distance must be a number of kilometres"))
		return
	}
	fare, err := model.EstimateFare(vt, distance)
	if err != nil {
		h.fail(c, apperror.BadRequest(err))
		return
	}
	tariff, _ := vt.Tariff()
	c.JSON(http.StatusOK, fareEstimate{
		VehicleType: vt,
		Distance:    distance,
		Tariff:      tariff,
		Fare:        fare,
		Currency:    h.engine.Currency(),
	})
}
