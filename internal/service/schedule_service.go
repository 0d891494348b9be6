package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/internal/repository"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
	"github.com/campus-ops/room-allocation-api/pkg/export"
	"github.com/campus-ops/room-allocation-api/pkg/storage"
)

type scheduleStore interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	SetLock(ctx context.Context, id string, locked bool, updatedAt time.Time) error
}

type scheduleAllocationReader interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error)
}

// ExportResult is a rendered allocation table ready for download. When
// archiving is configured, DownloadToken allows re-fetching the same
// file later without regenerating it.
type ExportResult struct {
	Content       []byte
	ContentType   string
	Filename      string
	DownloadToken string    `json:"download_token,omitempty"`
	TokenExpires  time.Time `json:"token_expires,omitempty"`
}

// ScheduleService manages the schedule-wide change-request lock and
// allocation table exports.
type ScheduleService struct {
	schedules   scheduleStore
	allocations scheduleAllocationReader
	cache       cacheInvalidator
	notifier    workflowNotifier
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	archive     *storage.LocalStorage
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
}

// NewScheduleService constructs the service. Archive and signer are
// optional; without them exports are generated on every request and
// DownloadToken stays empty.
func NewScheduleService(
	schedules scheduleStore,
	allocations scheduleAllocationReader,
	cache cacheInvalidator,
	notifier workflowNotifier,
	archive *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		schedules:   schedules,
		allocations: allocations,
		cache:       cache,
		notifier:    notifier,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		archive:     archive,
		signer:      signer,
		logger:      logger,
	}
}

// Get returns one schedule.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// SetLock flips the schedule lock and broadcasts the change to faculty.
func (s *ScheduleService) SetLock(ctx context.Context, id string, locked bool, actor *models.JWTClaims) (*models.Schedule, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := s.schedules.SetLock(ctx, id, locked, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule lock")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, repository.AllocationsKey(id)); err != nil {
			s.logger.Warn("failed to invalidate allocation cache", zap.String("schedule_id", id), zap.Error(err))
		}
	}

	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload schedule")
	}

	if s.notifier != nil {
		state := "unlocked"
		severity := models.NotificationSeverityInfo
		if locked {
			state = "locked"
			severity = models.NotificationSeverityWarning
		}
		s.notifier.Publish(&models.Notification{
			Title:      fmt.Sprintf("Schedule %s", state),
			Message:    fmt.Sprintf("The %s schedule is now %s for change requests", schedule.Term, state),
			Audience:   models.NotificationAudienceFaculty,
			Severity:   severity,
			Category:   "schedule_lock",
			ScheduleID: &schedule.ID,
		})
	}
	return schedule, nil
}

var exportHeaders = []string{"Course", "Section", "Teacher", "Room", "Building", "Day", "Time"}

// Export renders the schedule's allocation table as CSV or PDF.
func (s *ScheduleService) Export(ctx context.Context, id, format string) (*ExportResult, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allocations, err := s.allocations.ListBySchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(allocations))}
	for _, slot := range allocations {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course":   slot.CourseCode,
			"Section":  slot.Section,
			"Teacher":  slot.TeacherName,
			"Room":     slot.Room,
			"Building": slot.Building,
			"Day":      slot.ScheduleDay,
			"Time":     slot.ScheduleTime,
		})
	}

	var result *ExportResult
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		result = &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("schedule-%s.csv", schedule.ID),
		}
	case "pdf":
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Room Allocations - %s", schedule.Term))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		result = &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("schedule-%s.pdf", schedule.ID),
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	s.archiveExport(schedule.ID, result)
	return result, nil
}

// archiveExport keeps a copy of the rendered file on disk and attaches a
// signed re-download token. Failures are logged, never fatal to the
// request that produced the export.
func (s *ScheduleService) archiveExport(scheduleID string, result *ExportResult) {
	if s.archive == nil {
		return
	}
	relPath := filepath.Join(scheduleID, result.Filename)
	if _, err := s.archive.Save(relPath, result.Content); err != nil {
		s.logger.Warn("failed to archive export", zap.String("schedule_id", scheduleID), zap.Error(err))
		return
	}
	if s.signer == nil {
		return
	}
	token, expiresAt, err := s.signer.Generate(scheduleID, relPath)
	if err != nil {
		s.logger.Warn("failed to sign export token", zap.String("schedule_id", scheduleID), zap.Error(err))
		return
	}
	result.DownloadToken = token
	result.TokenExpires = expiresAt
}

// DownloadArchived validates a signed token and streams back the
// archived export it references.
func (s *ScheduleService) DownloadArchived(token string) (*ExportResult, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export archive is not configured")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid or expired download token")
	}
	file, err := s.archive.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archived export no longer available")
	}
	defer file.Close() //nolint:errcheck
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read archived export")
	}
	filename := filepath.Base(relPath)
	contentType := "text/csv"
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		contentType = "application/pdf"
	}
	return &ExportResult{Content: content, ContentType: contentType, Filename: filename}, nil
}
