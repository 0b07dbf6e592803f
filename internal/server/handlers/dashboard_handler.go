package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/service/dashboard"
	"github.com/mamadbah2/toolwear/internal/service/scrap"
)

// DashboardService computes dashboard reports.
type DashboardService interface {
	Report(ctx context.Context, ref time.Time) (*dashboard.Report, error)
}

// DashboardHandler serves KPIs and chart datasets.
type DashboardHandler struct {
	svc    DashboardService
	clock  clock
	logger *zap.Logger
}

// NewDashboardHandler constructs the dashboard HTTP adapter.
func NewDashboardHandler(svc DashboardService, loc *time.Location, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, clock: newClock(loc), logger: logger}
}

// Full returns KPIs, charts and the underlying records.
func (h *DashboardHandler) Full(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newDashboardResponse(report, scrap.Group(report.Scrap), h.clock.loc))
}

// KPIs returns only the scalar metrics.
func (h *DashboardHandler) KPIs(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.KPIs)
}

// Charts returns only the chart datasets.
func (h *DashboardHandler) Charts(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChartsResponse(report.Charts))
}

// report computes the dashboard for ?ref=DD/MM/YYYY, or for now.
func (h *DashboardHandler) report(c *gin.Context) (*dashboard.Report, bool) {
	ref := h.clock.now().In(h.clock.loc)
	if value := c.Query("ref"); value != "" {
		date, err := models.ParseDate(value)
		if err != nil {
			badRequest(c, h.logger, err, "ref must be DD/MM/YYYY")
			return nil, false
		}
		ref = date.In(h.clock.loc)
	}

	report, err := h.svc.Report(c.Request.Context(), ref)
	if err != nil {
		respondError(c, h.logger, err, "compute dashboard")
		return nil, false
	}
	return report, true
}
