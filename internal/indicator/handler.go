// File: internal/indicator/handler.go
package indicator

import (
	"fmt"
	"strconv"
	"strings"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"

	"github.com/gin-gonic/gin"
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

// RegisterRoutes sets up the client dashboard routes on a country-guarded group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	indicators := router.Group("/indicators")
	{
		indicators.GET("", h.forYear)
		indicators.GET("/series", h.series)
		indicators.GET("/export.csv", h.seriesCSV)
	}
	router.GET("/kpis", h.kpis)
}

// RegisterAdminRoutes sets up regional views and bulk loading on an admin group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	indicators := admin.Group("/indicators")
	{
		indicators.GET("/regional", h.regional)
		indicators.GET("/regional/export.csv", h.regionalCSV)
		indicators.GET("/aggregate", h.aggregate)
		indicators.POST("/seed", h.seed)
	}
	admin.GET("/kpis/catalog", h.catalog)
}

func validationError(c *gin.Context, field, msg string) {
	common.RespondWithError(c, common.NewValidationAPIError(map[string]string{field: msg}))
}

// queryYear reads an optional year parameter. Zero means absent.
func queryYear(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2100 {
		validationError(c, key, fmt.Sprintf("The %s parameter must be a year.", key))
		return 0, false
	}
	return year, true
}

// queryRange reads year, or from and to. It returns nil when none is given.
func queryRange(c *gin.Context) (*YearRange, bool) {
	year, ok := queryYear(c, "year")
	if !ok {
		return nil, false
	}
	if year != 0 {
		return &YearRange{From: year, To: year}, true
	}
	from, ok := queryYear(c, "from")
	if !ok {
		return nil, false
	}
	to, ok := queryYear(c, "to")
	if !ok {
		return nil, false
	}
	switch {
	case from == 0 && to == 0:
		return nil, true
	case from == 0:
		from = to
	case to == 0:
		to = from
	}
	yr := YearRange{From: from, To: to}.Normalized()
	return &yr, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryCountries(c *gin.Context) ([]string, bool) {
	var codes []string
	for _, part := range splitList(c.Query("countries")) {
		code := country.Normalize(part)
		if code == "" {
			validationError(c, "countries", "Unknown country: "+part)
			return nil, false
		}
		codes = append(codes, code)
	}
	return codes, true
}

func routeCountry(c *gin.Context) string {
	return country.Normalize(c.Param(common.CountryParam))
}

func (h *Handler) forYear(c *gin.Context) {
	year, ok := queryYear(c, "year")
	if !ok {
		return
	}
	rec, found, err := h.service.ForYear(c.Request.Context(), routeCountry(c), year)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if !found {
		common.RespondOK(c, "no data", nil)
		return
	}
	common.RespondOK(c, "Indicators retrieved successfully.", rec)
}

func (h *Handler) seriesParams(c *gin.Context) (string, *YearRange, bool) {
	indicator := strings.TrimSpace(c.Query("indicator"))
	if indicator == "" {
		validationError(c, "indicator", "The indicator parameter is required.")
		return "", nil, false
	}
	yr, ok := queryRange(c)
	if !ok {
		return "", nil, false
	}
	return indicator, yr, true
}

func (h *Handler) series(c *gin.Context) {
	indicator, yr, ok := h.seriesParams(c)
	if !ok {
		return
	}
	resp, err := h.service.Series(c.Request.Context(), routeCountry(c), indicator, yr)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Series retrieved successfully.", resp)
}

func (h *Handler) seriesCSV(c *gin.Context) {
	indicator, yr, ok := h.seriesParams(c)
	if !ok {
		return
	}
	code := routeCountry(c)
	resp, err := h.service.Series(c.Request.Context(), code, indicator, yr)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	name := code
	if ct, ok := country.Lookup(code); ok {
		name = ct.Name
	}
	body, err := SeriesCSV(name, indicator, resp.Points)
	if err != nil {
		h.logger.Error("Failed to render series CSV", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondCSV(c, fmt.Sprintf("%s-%s.csv", code, indicator), body)
}

func (h *Handler) kpis(c *gin.Context) {
	year, ok := queryYear(c, "year")
	if !ok {
		return
	}
	resolved, values, err := h.service.KPIs(c.Request.Context(), routeCountry(c), year)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "KPIs retrieved successfully.", gin.H{"year": resolved, "kpis": values})
}

func (h *Handler) regionalParams(c *gin.Context) ([]string, []string, YearRange, bool) {
	countries, ok := queryCountries(c)
	if !ok {
		return nil, nil, YearRange{}, false
	}
	yr, ok := queryRange(c)
	if !ok {
		return nil, nil, YearRange{}, false
	}
	if yr == nil {
		validationError(c, "year", "Either year or from/to is required.")
		return nil, nil, YearRange{}, false
	}
	return countries, splitList(c.Query("indicators")), *yr, true
}

func (h *Handler) regional(c *gin.Context) {
	countries, indicators, yr, ok := h.regionalParams(c)
	if !ok {
		return
	}
	resp, err := h.service.Regional(c.Request.Context(), countries, indicators, yr)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Regional summary retrieved successfully.", resp)
}

func (h *Handler) regionalCSV(c *gin.Context) {
	countries, indicators, yr, ok := h.regionalParams(c)
	if !ok {
		return
	}
	resp, err := h.service.Regional(c.Request.Context(), countries, indicators, yr)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	body, err := RegionalCSV(resp.Rows, resp.Indicators, resp.Average)
	if err != nil {
		h.logger.Error("Failed to render regional CSV", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondCSV(c, fmt.Sprintf("regional-%d-%d.csv", yr.From, yr.To), body)
}

func (h *Handler) aggregate(c *gin.Context) {
	year, ok := queryYear(c, "year")
	if !ok {
		return
	}
	if year == 0 {
		validationError(c, "year", "The year parameter is required.")
		return
	}
	indicator := strings.TrimSpace(c.Query("indicator"))
	if indicator == "" {
		validationError(c, "indicator", "The indicator parameter is required.")
		return
	}
	fn, ok := ParseFn(c.DefaultQuery("fn", string(Average)))
	if !ok {
		validationError(c, "fn", "The fn parameter must be one of: average sum percent_true.")
		return
	}
	countries, ok := queryCountries(c)
	if !ok {
		return
	}

	resp, err := h.service.Aggregate(c.Request.Context(), countries, year, indicator, fn)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Aggregate computed successfully.", resp)
}

func (h *Handler) seed(c *gin.Context) {
	session := common.RequireSession(c)
	if session == nil {
		return
	}
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("A JSON array of indicator rows is required."))
		return
	}
	replace, _ := strconv.ParseBool(c.DefaultQuery("replace", "false"))

	result, err := h.service.Seed(c.Request.Context(), session.Email, body, replace)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Indicator dataset loaded.", result)
}

func (h *Handler) catalog(c *gin.Context) {
	common.RespondOK(c, "KPI catalog retrieved successfully.", KPIs)
}
