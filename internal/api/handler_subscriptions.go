package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint       string   `json:"endpoint" binding:"required"`
	P256DH         string   `json:"p256dh" binding:"required"`
	Auth           string   `json:"auth" binding:"required"`
	AllExits       bool     `json:"all_exits"`
	VehicleNumbers []string `json:"vehicle_numbers"`
}

// PutSubscription creates or replaces a push subscription and its watch list.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub := model.PushSubscription{
		Endpoint:  req.Endpoint,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
		AllExits:  req.AllExits,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.PutSubscription(c.Request.Context(), sub, req.VehicleNumbers); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam returns key's value without URL decoding. Push endpoints are
// URLs themselves and browsers do not always escape them consistently.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

type subscriptionResponse struct {
	AllExits       bool     `json:"all_exits"`
	VehicleNumbers []string `json:"vehicle_numbers"`
}

// GetSubscription returns what a subscription is watching.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "endpoint is required"})
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), raw)
	if err != nil {
		h.fail(c, err)
		return
	}

	numbers := make([]string, len(sub.WatchedVehicles))
	for i, w := range sub.WatchedVehicles {
		numbers[i] = w.VehicleNumber
	}
	c.JSON(http.StatusOK, subscriptionResponse{AllExits: sub.AllExits, VehicleNumbers: numbers})
}

// GetVAPIDPublicKey returns the VAPID public key browsers subscribe with.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "push notifications are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
