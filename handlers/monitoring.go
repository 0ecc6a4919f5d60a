package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"case_radar_go/db"
	"case_radar_go/services"
	"case_radar_go/services/monitor"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// MonitoringHandlers exposes the monitoring lifecycle and manual check
// trigger for a case
type MonitoringHandlers struct {
	Service   *monitor.Service
	Scheduler *monitor.Scheduler
}

func NewMonitoringHandlers(service *monitor.Service, scheduler *monitor.Scheduler) *MonitoringHandlers {
	return &MonitoringHandlers{Service: service, Scheduler: scheduler}
}

// GetMonitoredCase returns cadence state for a case ("last checked at" etc.)
func (h *MonitoringHandlers) GetMonitoredCase(c echo.Context) error {
	mc, err := h.Service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Case is not monitored"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error loading monitoring state"})
	}
	return c.JSON(http.StatusOK, mc)
}

type enrollRequest struct {
	CheckFrequency int      `json:"check_frequency"`
	Sources        []string `json:"sources"`
}

// EnrollCase starts (or re-tunes) monitoring for a case
func (h *MonitoringHandlers) EnrollCase(c echo.Context) error {
	var req enrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	mc, err := h.Service.EnsureMonitored(c.Param("id"), req.CheckFrequency, req.Sources)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error enrolling case"})
	}
	return c.JSON(http.StatusOK, mc)
}

// PauseCase suspends monitoring without losing state
func (h *MonitoringHandlers) PauseCase(c echo.Context) error {
	return h.setStatus(c, h.Service.Pause)
}

// ResumeCase reactivates a paused case
func (h *MonitoringHandlers) ResumeCase(c echo.Context) error {
	return h.setStatus(c, h.Service.Resume)
}

func (h *MonitoringHandlers) setStatus(c echo.Context, fn func(string) error) error {
	if err := fn(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Case is not monitored"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error updating monitoring state"})
	}
	return c.NoContent(http.StatusNoContent)
}

// TriggerCheck runs the pipeline for one case right now (manual refresh)
func (h *MonitoringHandlers) TriggerCheck(c echo.Context) error {
	caseID := c.Param("id")
	if err := h.Scheduler.CheckSingleCase(c.Request().Context(), caseID); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportCaseActivity streams the case's acts as an xlsx report
func (h *MonitoringHandlers) ExportCaseActivity(c echo.Context) error {
	caseID := c.Param("id")

	f, err := services.BuildCaseActivityReport(db.DB, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Case not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error building report"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="actividad-%s.xlsx"`, caseID))
	c.Response().WriteHeader(http.StatusOK)

	return f.Write(c.Response().Writer)
}
