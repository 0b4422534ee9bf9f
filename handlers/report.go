package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/services"
)

// ReportHandler serves the dashboard, the leader-gated balance view and the
// CSV exports.
type ReportHandler struct {
	Reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *ReportHandler) CheckBalance(c *gin.Context) {
	var in models.CheckBalanceInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	info, err := h.Reports.CheckBalance(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	rows, err := h.Reports.ExportRows(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	writeCSVResponse(c, fmt.Sprintf("purchase_history_%s.csv", time.Now().Format("20060102_150405")), rows)
}

func (h *ReportHandler) ExportTeamCSV(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	rows, err := h.Reports.ExportTeamRows(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	writeCSVResponse(c, fmt.Sprintf("team_%d_purchase_history_%s.csv", id, time.Now().Format("20060102_150405")), rows)
}

func writeCSVResponse(c *gin.Context, filename string, rows []models.ExportRow) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := services.WriteCSV(c.Writer, rows); err != nil {
		// Headers are gone already; all we can do is log through gin's writer state.
		c.Status(http.StatusInternalServerError)
	}
}
