package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/engine"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
	"github.com/campus-ops/room-allocation-api/pkg/response"
)

type reassignmentService interface {
	RankRooms(ctx context.Context, allocationID int64, query dto.RankRoomsQuery) ([]engine.RankedRoom, error)
	CheckTeacherMove(ctx context.Context, req dto.TeacherMoveCheckRequest) (*dto.TeacherMoveCheckResult, error)
}

// ReassignmentHandler exposes reassignment candidate ranking.
type ReassignmentHandler struct {
	service reassignmentService
}

// NewReassignmentHandler constructs the handler.
func NewReassignmentHandler(service reassignmentService) *ReassignmentHandler {
	return &ReassignmentHandler{service: service}
}

// RankRooms godoc
// @Summary Rank candidate rooms for moving an allocation
// @Tags Reassignment
// @Produce json
// @Param id path int true "Allocation ID"
// @Param sort query string false "Sort mode: compatibility, capacity, building, name"
// @Success 200 {object} response.Envelope
// @Router /allocations/{id}/reassignment-options [get]
func (h *ReassignmentHandler) RankRooms(c *gin.Context) {
	allocationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "allocation id must be an integer"))
		return
	}
	var query dto.RankRoomsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid ranking query"))
		return
	}
	ranked, err := h.service.RankRooms(c.Request.Context(), allocationID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranked, nil)
}

// CheckTeacherMove godoc
// @Summary Check whether a teacher is free to take an allocation
// @Tags Reassignment
// @Accept json
// @Produce json
// @Param payload body dto.TeacherMoveCheckRequest true "Proposed handover"
// @Success 200 {object} response.Envelope
// @Router /reassignment/teacher-check [post]
func (h *ReassignmentHandler) CheckTeacherMove(c *gin.Context) {
	var req dto.TeacherMoveCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher move payload"))
		return
	}
	result, err := h.service.CheckTeacherMove(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
