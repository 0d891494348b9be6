package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/engine"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
	"github.com/campus-ops/room-allocation-api/pkg/response"
)

type conflictService interface {
	CheckPlacement(ctx context.Context, scheduleID string, req dto.ConflictCheckRequest) (*engine.ConflictResult, error)
	SlotGrid(ctx context.Context, scheduleID string, q dto.SlotGridQuery) (map[int]engine.SlotStatus, error)
}

// ConflictHandler exposes the conflict engine over HTTP.
type ConflictHandler struct {
	service conflictService
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(service conflictService) *ConflictHandler {
	return &ConflictHandler{service: service}
}

// Check godoc
// @Summary Validate a candidate placement against a schedule
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ConflictCheckRequest true "Candidate placement"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/conflict-check [post]
func (h *ConflictHandler) Check(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid conflict check payload"))
		return
	}
	result, err := h.service.CheckPlacement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SlotGrid godoc
// @Summary Enumerate slot availability for one day
// @Tags Conflicts
// @Produce json
// @Param id path string true "Schedule ID"
// @Param day query string true "Weekday code"
// @Param room query string true "Room name"
// @Param building query string false "Building"
// @Param teacher_name query string false "Teacher name"
// @Param section query string false "Section"
// @Param duration_minutes query int false "Meeting duration in minutes"
// @Param exclude_id query int false "Allocation to exclude"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/slot-grid [get]
func (h *ConflictHandler) SlotGrid(c *gin.Context) {
	var q dto.SlotGridQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid slot grid query"))
		return
	}
	grid, err := h.service.SlotGrid(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
