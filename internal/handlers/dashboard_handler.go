package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashdash/internal/services"
)

// DashboardHandler serves the balance history and cash-flow read models.
type DashboardHandler struct {
	snapshotService services.SnapshotServicer
	clock           Clock
}

// NewDashboardHandler creates a new DashboardHandler. A nil clock uses the wall clock.
func NewDashboardHandler(snapshotService services.SnapshotServicer, clock Clock) *DashboardHandler {
	return &DashboardHandler{snapshotService: snapshotService, clock: clock}
}

// ListSnapshots handles the balance history
// @Summary     List cash snapshots
// @Tags        dashboard
// @Produce     json
// @Param       from_date query string false "Earliest date, YYYY-MM-DD"
// @Param       to_date   query string false "Latest date, YYYY-MM-DD"
// @Success     200 {object} map[string][]models.CashSnapshot
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /snapshots [get]
func (h *DashboardHandler) ListSnapshots(c *gin.Context) {
	from, to, err := bindDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshots, err := h.snapshotService.ListSnapshots(c.Request.Context(), from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

// CashFlow handles the cash-flow summary
// @Summary     Cash flow summary
// @Description Inflow, outflow and net change with a per-category breakdown. Defaults to the calendar week (Sunday to Saturday) containing to_date, or today.
// @Tags        dashboard
// @Produce     json
// @Param       from_date query string false "Earliest date, YYYY-MM-DD"
// @Param       to_date   query string false "Latest date, YYYY-MM-DD (default end of this week)"
// @Success     200 {object} services.CashFlowSummary
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/cash-flow [get]
func (h *DashboardHandler) CashFlow(c *gin.Context) {
	from, to, err := bindDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	anchor := h.clock.today()
	if to != nil {
		anchor = *to
	}
	start, end := anchor.WeekStart(), anchor.WeekEnd()
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}

	summary, err := h.snapshotService.CashFlow(c.Request.Context(), start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
