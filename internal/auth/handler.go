// File: internal/auth/handler.go
package auth

import (
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for authentication operations.
// limiters run in front of the credential endpoints.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, limiters ...gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", append(limiters, h.signUp)...)
		authGroup.POST("/signin", append(limiters, h.signIn)...)

		authenticated := authGroup.Group("")
		authenticated.Use(authMW)
		{
			authenticated.POST("/signout", h.signOut)
			authenticated.GET("/session", h.getSession)
		}
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Sign-up: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	profile, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created successfully.", SignUpResponse{Profile: user.ToProfileResponse(profile)})
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Sign-in: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	resp, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed in successfully.", resp)
}

func (h *Handler) signOut(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	if err := h.service.SignOut(c.Request.Context(), session); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed out successfully.", nil)
}

func (h *Handler) getSession(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	common.RespondOK(c, "Session retrieved successfully.", session)
}
