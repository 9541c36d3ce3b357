// File: internal/user/handler.go
package user

import (
	"strings"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for profile handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the self-service routes on an authenticated group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me")
	{
		me.GET("", h.getMe)
		me.PATCH("", h.updateMe)
		me.PUT("/push-token", h.setPushToken)
		me.POST("/avatar", h.uploadAvatar)
	}
}

// RegisterAdminRoutes mounts the profile listing on an admin group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/users", h.listUsers)
}

func (h *Handler) getMe(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), session.ProfileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", ToProfileResponse(p))
}

func (h *Handler) updateMe(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update profile: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	p, err := h.service.UpdateSettings(c.Request.Context(), session.ProfileID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", ToProfileResponse(p))
}

func (h *Handler) setPushToken(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	p, err := h.service.SetPushToken(c.Request.Context(), session.ProfileID, req.Token)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Push token saved.", ToProfileResponse(p))
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"file": "The file field is required."}))
		return
	}
	p, err := h.service.SetProfileImage(c.Request.Context(), session.ProfileID, fileHeader)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile image updated.", ToProfileResponse(p))
}

func (h *Handler) listUsers(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)

	filter := ListFilter{Role: c.Query("role")}
	if raw := c.Query("country"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			code := country.Normalize(part)
			if code == "" {
				common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"country": "Unknown country: " + strings.TrimSpace(part)}))
				return
			}
			filter.Countries = append(filter.Countries, code)
		}
	}

	profiles, pagination, err := h.service.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	out := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, ToProfileResponse(&profiles[i]))
	}
	common.RespondPaginated(c, "Profiles retrieved successfully.", out, pagination)
}
