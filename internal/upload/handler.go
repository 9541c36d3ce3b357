// File: internal/upload/handler.go
package upload

import (
	"strconv"
	"strings"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"

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

// RegisterRoutes sets up client routes on a country-guarded group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/uploads", h.create)
	router.GET("/uploads", h.listMine)
	router.GET("/reports", h.listReports)
	router.GET("/reports/:upload_id/download", h.download)
}

// RegisterAdminRoutes sets up review, publishing and the download log on an admin group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	uploads := admin.Group("/uploads")
	{
		uploads.GET("", h.adminList)
		uploads.GET("/search", h.search)
		uploads.GET("/:upload_id", h.get)
		uploads.PATCH("/:upload_id/status", h.transition)
	}
	admin.POST("/reports", h.publish)
	admin.GET("/downloads", h.listDownloads)
}

func uploadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("upload_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid upload ID format."))
		return uuid.Nil, false
	}
	return id, true
}

// countryFilter accepts a member code or name, or ALL.
func countryFilter(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.Query("country"))
	if raw == "" {
		return "", true
	}
	if strings.EqualFold(raw, country.AllCountries) {
		return country.AllCountries, true
	}
	code := country.Normalize(raw)
	if code == "" {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"country": "Unknown country: " + raw}))
		return "", false
	}
	return code, true
}

func (h *Handler) create(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	var req CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Upload: invalid form", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"file": "The file field is required."}))
		return
	}

	record, err := h.service.Create(c.Request.Context(), session, req, fileHeader)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Upload submitted for review.", record)
}

func (h *Handler) listMine(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	records, err := h.service.ListMine(c.Request.Context(), session)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Uploads retrieved successfully.", records)
}

func (h *Handler) listReports(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	records, err := h.service.ListVisible(c.Request.Context(), session)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reports retrieved successfully.", records)
}

func (h *Handler) download(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	id, ok := uploadID(c)
	if !ok {
		return
	}
	resp, err := h.service.Download(c.Request.Context(), session, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Download logged.", resp)
}

func (h *Handler) adminList(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	filter := ListFilter{Status: Status(strings.ToLower(c.Query("status")))}
	if filter.Status != "" && !filter.Status.Valid() {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"status": "The status field must be one of: pending approved rejected."}))
		return
	}
	code, ok := countryFilter(c)
	if !ok {
		return
	}
	filter.Country = code

	records, pagination, err := h.service.AdminList(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Uploads retrieved successfully.", records, pagination)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}
	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Upload retrieved successfully.", record)
}

func (h *Handler) transition(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	id, ok := uploadID(c)
	if !ok {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	record, err := h.service.Transition(c.Request.Context(), session.Email, id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Upload "+string(record.Status)+".", record)
}

func (h *Handler) publish(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	var req PublishRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Publish report: invalid form", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"file": "The file field is required."}))
		return
	}

	result, err := h.service.Publish(c.Request.Context(), session.Email, req, fileHeader)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Report published.", result)
}

func (h *Handler) listDownloads(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	code, ok := countryFilter(c)
	if !ok {
		return
	}
	entries, pagination, err := h.service.ListDownloads(c.Request.Context(), code, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Downloads retrieved successfully.", entries, pagination)
}

func (h *Handler) search(c *gin.Context) {
	q := SearchQuery{
		Text:   c.Query("q"),
		Status: Status(strings.ToLower(c.Query("status"))),
	}
	if q.Status != "" && !q.Status.Valid() {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"status": "The status field must be one of: pending approved rejected."}))
		return
	}
	code, ok := countryFilter(c)
	if !ok {
		return
	}
	q.Country = code
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > common.MaxPageSize {
			common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"limit": "The limit must be between 1 and 100."}))
			return
		}
		q.Limit = n
	}

	records, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Search completed.", records)
}
