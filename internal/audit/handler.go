// File: internal/audit/handler.go
package audit

import (
	"ecowas_fisheries_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdminRoutes mounts the audit trail on an admin group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/audit", h.list)
}

func (h *Handler) list(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	filter := ListFilter{Actor: c.Query("actor"), Action: c.Query("action")}

	entries, pagination, err := h.service.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Audit entries retrieved successfully.", entries, pagination)
}
