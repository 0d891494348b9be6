package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
	"github.com/campus-ops/room-allocation-api/pkg/response"
)

type allocationService interface {
	Get(ctx context.Context, id int64) (*models.AllocationSlot, error)
	List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationSlot, error)
}

// AllocationHandler exposes read access to committed allocations.
type AllocationHandler struct {
	service allocationService
}

// NewAllocationHandler constructs the handler.
func NewAllocationHandler(service allocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// List godoc
// @Summary List allocations
// @Tags Allocations
// @Produce json
// @Param schedule_id query string false "Schedule ID"
// @Param room query string false "Room name"
// @Param building query string false "Building"
// @Param section query string false "Section"
// @Param teacher_name query string false "Teacher name"
// @Param day query string false "Stored day code"
// @Success 200 {object} response.Envelope
// @Router /allocations [get]
func (h *AllocationHandler) List(c *gin.Context) {
	filter := models.AllocationFilter{
		ScheduleID:  strings.TrimSpace(c.Query("schedule_id")),
		Room:        strings.TrimSpace(c.Query("room")),
		Building:    strings.TrimSpace(c.Query("building")),
		Section:     strings.TrimSpace(c.Query("section")),
		TeacherName: strings.TrimSpace(c.Query("teacher_name")),
		Day:         strings.TrimSpace(c.Query("day")),
	}
	allocations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocations, nil)
}

// Get godoc
// @Summary Get allocation detail
// @Tags Allocations
// @Produce json
// @Param id path int true "Allocation ID"
// @Success 200 {object} response.Envelope
// @Router /allocations/{id} [get]
func (h *AllocationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "allocation id must be an integer"))
		return
	}
	allocation, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocation, nil)
}
