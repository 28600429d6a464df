package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/portfolio-pilot/internal/db"
	"github.com/atharvakonge/portfolio-pilot/internal/export"
	"github.com/atharvakonge/portfolio-pilot/internal/metrics"
	"github.com/atharvakonge/portfolio-pilot/internal/query"
	"github.com/atharvakonge/portfolio-pilot/internal/validation"
)

// OwnerHeader selects whose portfolio a request works on
const OwnerHeader = "X-Owner-ID"

// InvestmentHandler serves the investment REST API and the portfolio stream
type InvestmentHandler struct {
	Store        db.Store
	Processor    *WriteProcessor
	Hub          *Hub
	Validator    *validation.Validator
	DefaultOwner string
	Log          zerolog.Logger
	Now          func() time.Time
}

// ListResponse is the dashboard payload: the requested view plus the
// metrics of the whole portfolio
type ListResponse struct {
	Success   bool                     `json:"success"`
	Data      []metrics.Holding        `json:"data"`
	Portfolio metrics.PortfolioMetrics `json:"portfolio"`
	Criteria  query.Criteria           `json:"criteria"`
	Count     int                      `json:"count"`
	Total     int                      `json:"total"`
}

// Register mounts the routes on r
func (h *InvestmentHandler) Register(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/investments", h.List)
		api.POST("/investments", h.Create)
		api.GET("/investments/:id", h.Get)
		api.PUT("/investments/:id", h.Update)
		api.DELETE("/investments/:id", h.Delete)

		api.GET("/portfolio/summary", h.Summary)
		api.GET("/export/csv", h.ExportCSV)
	}

	r.GET("/ws/portfolio", h.HandleWebSocket)
}

func (h *InvestmentHandler) owner(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(OwnerHeader)); v != "" {
		return v
	}
	// browsers cannot set headers on websocket upgrades
	if v := strings.TrimSpace(c.Query("owner")); v != "" {
		return v
	}
	return h.DefaultOwner
}

func (h *InvestmentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// List handles GET /api/investments?search=&type=&sort=
func (h *InvestmentHandler) List(c *gin.Context) {
	all, err := h.Store.FindAll(c.Request.Context(), h.owner(c))
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to fetch investments")
		fail(c, http.StatusInternalServerError, "Failed to fetch investments")
		return
	}

	criteria := query.ParseCriteria(c.Query("search"), c.Query("type"), c.Query("sort"))
	view := query.ApplyView(all, criteria)

	c.JSON(http.StatusOK, ListResponse{
		Success:   true,
		Data:      metrics.Holdings(view),
		Portfolio: metrics.ComputePortfolioMetrics(all),
		Criteria:  criteria,
		Count:     len(view),
		Total:     len(all),
	})
}

// Get handles GET /api/investments/:id
func (h *InvestmentHandler) Get(c *gin.Context) {
	inv, err := h.Store.FindByID(c.Request.Context(), h.owner(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch investment")
		return
	}
	ok(c, http.StatusOK, metrics.Holding{Investment: *inv, Metrics: metrics.ComputeInvestmentMetrics(*inv)})
}

// Create handles POST /api/investments
func (h *InvestmentHandler) Create(c *gin.Context) {
	var req validation.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := h.Validator.ValidateCreate(req)
	if err != nil {
		h.writeError(c, err, "Failed to add investment")
		return
	}

	res := h.Processor.Submit(c.Request.Context(), WriteRequest{
		Op:      OpCreate,
		OwnerID: h.owner(c),
		Fields:  fields,
	})
	if res.Err != nil {
		h.writeError(c, res.Err, "Failed to add investment")
		return
	}
	ok(c, http.StatusCreated, res.Investment)
}

// Update handles PUT /api/investments/:id
func (h *InvestmentHandler) Update(c *gin.Context) {
	var req validation.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch, err := h.Validator.ValidateUpdate(req)
	if err != nil {
		h.writeError(c, err, "Failed to update investment")
		return
	}

	res := h.Processor.Submit(c.Request.Context(), WriteRequest{
		Op:      OpUpdate,
		OwnerID: h.owner(c),
		ID:      c.Param("id"),
		Patch:   patch,
	})
	if res.Err != nil {
		h.writeError(c, res.Err, "Failed to update investment")
		return
	}
	ok(c, http.StatusOK, res.Investment)
}

// Delete handles DELETE /api/investments/:id
func (h *InvestmentHandler) Delete(c *gin.Context) {
	res := h.Processor.Submit(c.Request.Context(), WriteRequest{
		Op:      OpDelete,
		OwnerID: h.owner(c),
		ID:      c.Param("id"),
	})
	if res.Err != nil {
		h.writeError(c, res.Err, "Failed to delete investment")
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

// Summary handles GET /api/portfolio/summary
func (h *InvestmentHandler) Summary(c *gin.Context) {
	all, err := h.Store.FindAll(c.Request.Context(), h.owner(c))
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to fetch investments")
		fail(c, http.StatusInternalServerError, "Failed to fetch investments")
		return
	}
	ok(c, http.StatusOK, metrics.Summarize(all))
}

// ExportCSV handles GET /api/export/csv. The file always covers the whole
// portfolio, whatever view the client is showing.
func (h *InvestmentHandler) ExportCSV(c *gin.Context) {
	all, err := h.Store.FindAll(c.Request.Context(), h.owner(c))
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to fetch investments")
		fail(c, http.StatusInternalServerError, "Failed to fetch investments")
		return
	}

	out, err := export.SerializeToCSV(all)
	if errors.Is(err, export.ErrNoInvestments) {
		fail(c, http.StatusBadRequest, "No investments to export")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to export investments")
		fail(c, http.StatusInternalServerError, "Failed to export investments")
		return
	}

	filename := fmt.Sprintf("portfolio_%s.csv", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

// writeError maps store, validation and processor errors to responses
func (h *InvestmentHandler) writeError(c *gin.Context, err error, fallback string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Message)
	case db.IsNotFound(err):
		fail(c, http.StatusNotFound, "Investment not found")
	case errors.Is(err, ErrProcessorStopped):
		fail(c, http.StatusServiceUnavailable, "Service is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusServiceUnavailable, "Request cancelled")
	default:
		h.Log.Error().Err(err).Msg(fallback)
		fail(c, http.StatusInternalServerError, fallback)
	}
}
