package handlers

import (
	"errors"
	"net/http"

	"newsdesk/notify"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
)

type Push struct {
	notifier *notify.Notifier
}

func NewPush(notifier *notify.Notifier) *Push {
	return &Push{notifier: notifier}
}

func (h *Push) VAPIDPublicKey(c *gin.Context) {
	if !h.notifier.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "publicKey": h.notifier.PublicKey()})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys"`
}

func (h *Push) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "endpoint, keys.p256dh and keys.auth are required"})
		return
	}

	sub := webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys:     webpush.Keys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
	}
	if err := h.notifier.Subscribe(c.Request.Context(), sub); err != nil {
		switch {
		case errors.Is(err, notify.ErrDisabled):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Push notifications are not configured"})
		case errors.Is(err, notify.ErrInvalidSubscription):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		default:
			respondError(c, err, "Failed to save subscription")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Push subscription saved successfully"})
}
