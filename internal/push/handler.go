// File: internal/push/handler.go
package push

import (
	"ecowas_fisheries_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RelayRequest is the body of POST /send-notification.
type RelayRequest struct {
	Token string `json:"token" binding:"required"`
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"required,max=2000"`
}

// Handler is the stateless push relay.
type Handler struct {
	sender Sender
	logger *zap.Logger
}

// NewHandler creates the relay handler.
func NewHandler(sender Sender, logger *zap.Logger) *Handler {
	return &Handler{sender: sender, logger: logger.Named("PushRelay")}
}

// RegisterRoutes mounts the relay on router behind the given middleware.
func (h *Handler) RegisterRoutes(router gin.IRoutes, middlewares ...gin.HandlerFunc) {
	handlers := append(middlewares, h.sendNotification)
	router.POST("/send-notification", handlers...)
}

func (h *Handler) sendNotification(c *gin.Context) {
	var req RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	err := h.sender.Send(c.Request.Context(), Message{Token: req.Token, Title: req.Title, Body: req.Body})
	if err != nil {
		h.logger.Error("Push relay failed", zap.Error(err))
		common.RespondWithError(c, common.ErrBadGateway.WithDetails("Push delivery failed."))
		return
	}
	common.RespondOK(c, "Notification sent.", nil)
}
