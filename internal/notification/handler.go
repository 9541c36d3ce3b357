// File: internal/notification/handler.go
package notification

import (
	"net/http"

	"ecowas_fisheries_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the client routes on a country-guarded group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.list)
		notifications.GET("/unread-count", h.unreadCount)
		notifications.POST("/read-all", h.markAllRead)
		notifications.POST("/:notification_id/read", h.markRead)
		notifications.DELETE("/:notification_id", h.delete)
	}
}

// RegisterAdminRoutes sets up broadcast and history on an admin group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/notifications", h.broadcast)
	admin.GET("/notifications", h.listAll)
}

func (h *Handler) list(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	items, err := h.service.ListForUser(c.Request.Context(), session)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notifications retrieved successfully.", items)
}

func (h *Handler) unreadCount(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	n, err := h.service.UnreadCount(c.Request.Context(), session)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved successfully.", gin.H{"unread": n})
}

func notificationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) markRead(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	id, ok := notificationID(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), session, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "Notification marked as read successfully.", nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	n, err := h.service.MarkAllRead(c.Request.Context(), session)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "All notifications marked as read successfully.", gin.H{"marked": n})
}

func (h *Handler) delete(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	id, ok := notificationID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) broadcast(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Broadcast: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	result, err := h.service.Broadcast(c.Request.Context(), session.Email, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Notification sent.", result)
}

func (h *Handler) listAll(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	records, pagination, err := h.service.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", records, pagination)
}
