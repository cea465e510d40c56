package handlers

import (
	"net/http"

	"postboard/middleware"
	"postboard/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
)

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	if h.Pusher == nil || !h.Pusher.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Push notifications are not configured",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "VAPID public key retrieved successfully",
		"publicKey": h.Pusher.PublicKey(),
	})
}

func (h *Handler) SubscribePush(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, models.NewValidationError(err.Error()))
		return
	}
	if h.Pusher == nil {
		h.fail(c, models.NewValidationError("Push notifications are not configured"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	userID := middleware.UserID(c)
	err := h.Pusher.Subscribe(ctx, userID, webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys: webpush.Keys{
			P256dh: req.Keys.P256dh,
			Auth:   req.Keys.Auth,
		},
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Push subscription saved successfully", gin.H{"userId": userID.Hex()})
}
