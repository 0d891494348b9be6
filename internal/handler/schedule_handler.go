package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/internal/service"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
	"github.com/campus-ops/room-allocation-api/pkg/response"
)

type scheduleService interface {
	Get(ctx context.Context, id string) (*models.Schedule, error)
	SetLock(ctx context.Context, id string, locked bool, actor *models.JWTClaims) (*models.Schedule, error)
	Export(ctx context.Context, id, format string) (*service.ExportResult, error)
	DownloadArchived(token string) (*service.ExportResult, error)
}

// ScheduleHandler exposes schedule lock and export endpoints.
type ScheduleHandler struct {
	service        scheduleService
	exportsEnabled bool
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService, exportsEnabled bool) *ScheduleHandler {
	return &ScheduleHandler{service: service, exportsEnabled: exportsEnabled}
}

// Get godoc
// @Summary Get schedule detail
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// SetLock godoc
// @Summary Lock or unlock a schedule for change requests
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.LockScheduleRequest true "Lock state"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/lock [put]
func (h *ScheduleHandler) SetLock(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.LockScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Locked == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "locked flag is required"))
		return
	}
	schedule, err := h.service.SetLock(c.Request.Context(), c.Param("id"), *req.Locked, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Export godoc
// @Summary Download the allocation table as CSV or PDF
// @Tags Schedules
// @Produce octet-stream
// @Param id path string true "Schedule ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /schedules/{id}/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.DownloadToken != "" {
		c.Header("X-Export-Token", result.DownloadToken)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// DownloadArchived godoc
// @Summary Re-download a previously generated export by signed token
// @Tags Schedules
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ScheduleHandler) DownloadArchived(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.DownloadArchived(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
