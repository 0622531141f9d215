package timesheet

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/policy"
)

type Repository interface {
	Create(ctx context.Context, e *domain.TimesheetEntry) error
	GetByID(ctx context.Context, id int64) (*domain.TimesheetEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.TimesheetEntry, error)
	ListByUserOnDate(ctx context.Context, userID int64, day domain.Date) ([]domain.TimesheetEntry, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.TimesheetEntry, error)
	Update(ctx context.Context, e *domain.TimesheetEntry) error
	Delete(ctx context.Context, id int64) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ProjectReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
}

type AssignmentChecker interface {
	IsAssigned(ctx context.Context, userID, projectID int64) (bool, error)
}

type Service struct {
	repo        Repository
	users       UserReader
	projects    ProjectReader
	assignments AssignmentChecker
	publisher   events.Publisher
	now         func() time.Time
	logger      *slog.Logger
}

func NewService(repo Repository, users UserReader, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		now:    time.Now,
		logger: logger,
	}
}

// WithTargetChecks makes create and update verify that the project exists and
// that the owner is assigned to it. The server sets this; the remote client
// leaves the check to the server.
func (s *Service) WithTargetChecks(projects ProjectReader, assignments AssignmentChecker) *Service {
	s.projects = projects
	s.assignments = assignments
	return s
}

func (s *Service) WithPublisher(p events.Publisher) *Service {
	s.publisher = p
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create logs hours for the actor. The new entry is always PENDING.
func (s *Service) Create(ctx context.Context, actor domain.Actor, dto EntryDTO) (*domain.TimesheetEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, actor.ID, dto); err != nil {
		return nil, err
	}

	now := s.now()
	entry := &domain.TimesheetEntry{
		UserID:         actor.ID,
		WorkDate:       dto.WorkDate,
		ProjectID:      dto.ProjectID,
		ActivityType:   dto.ActivityType,
		HoursWorked:    dto.HoursWorked,
		Description:    dto.Description,
		ApprovalStatus: domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to create timesheet entry", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.logger.Info("timesheet entry created",
		"entry_id", entry.ID,
		"user_id", actor.ID,
		"work_date", entry.WorkDate.String(),
		"hours", entry.HoursWorked)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewTimesheetSubmittedEvent(entry.ID, entry.UserID, entry.HoursWorked)); err != nil {
			s.logger.Error("failed to publish timesheet submitted event", "error", err, "entry_id", entry.ID)
		}
	}
	return entry, nil
}

// Update re-reads the entry and applies patch only while the actor owns it
// and it is still pending.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, patch PatchDTO) (*domain.TimesheetEntry, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditTimesheet(current, actor) {
		s.logger.Warn("timesheet update denied",
			"entry_id", id,
			"actor_id", actor.ID,
			"owner_id", current.UserID,
			"status", string(current.ApprovalStatus))
		return nil, internal.ErrUnauthorizedAccess
	}

	merged := patch.Apply(current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, actor.ID, merged); err != nil {
		return nil, err
	}

	current.WorkDate = merged.WorkDate
	current.ProjectID = merged.ProjectID
	current.ActivityType = merged.ActivityType
	current.HoursWorked = merged.HoursWorked
	current.Description = merged.Description
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		s.logger.Error("failed to update timesheet entry", "error", err, "entry_id", id)
		return nil, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDeleteTimesheet(current, actor) {
		s.logger.Warn("timesheet delete denied", "entry_id", id, "actor_id", actor.ID)
		return internal.ErrUnauthorizedAccess
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete timesheet entry", "error", err, "entry_id", id)
		return err
	}
	s.logger.Info("timesheet entry deleted", "entry_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) ListForCurrentUser(ctx context.Context, actor domain.Actor) ([]domain.TimesheetEntry, error) {
	entries, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TimesheetEntry{}
	}
	return entries, nil
}

// ListForDate returns the actor's entries for one calendar day.
func (s *Service) ListForDate(ctx context.Context, actor domain.Actor, day domain.Date) ([]domain.TimesheetEntry, error) {
	if day.IsZero() {
		return nil, internal.NewValidationFieldError("date", "date is required", internal.ErrCodeRequired)
	}
	entries, err := s.repo.ListByUserOnDate(ctx, actor.ID, day)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TimesheetEntry{}
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.TimesheetEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID == actor.ID {
		return entry, nil
	}

	owner, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTimesheet(entry, actor, owner.DepartmentID) {
		return nil, internal.ErrUnauthorizedAccess
	}
	return entry, nil
}

// ListForDepartment returns every entry logged by members of departmentID.
func (s *Service) ListForDepartment(ctx context.Context, actor domain.Actor, departmentID int64) ([]domain.TimesheetEntry, error) {
	if !policy.CanManageDepartment(actor, departmentID) {
		return nil, internal.ErrUnauthorizedAccess
	}
	entries, err := s.repo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TimesheetEntry{}
	}
	return entries, nil
}

// StatsFor summarises the actor's own entries. Weeks start on Monday.
func (s *Service) StatsFor(ctx context.Context, actor domain.Actor) (*Stats, error) {
	entries, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return ComputeStats(entries, s.now()), nil
}

func ComputeStats(entries []domain.TimesheetEntry, now time.Time) *Stats {
	today := domain.DateOf(now)
	offset := (int(today.Weekday()) + 6) % 7
	weekStart := today.AddDate(0, 0, -offset)
	weekEnd := weekStart.AddDate(0, 0, 7)

	stats := &Stats{}
	for _, e := range entries {
		day := e.WorkDate.Time
		if !day.Before(weekStart) && day.Before(weekEnd) {
			stats.WeeklyHours += e.HoursWorked
		}
		if day.Year() == today.Year() && day.Month() == today.Month() {
			stats.MonthlyHours += e.HoursWorked
		}
		switch e.ApprovalStatus {
		case domain.StatusPending:
			stats.PendingCount++
		case domain.StatusApproved:
			stats.ApprovedCount++
		case domain.StatusRejected:
			stats.RejectedCount++
		}
	}
	return stats
}

func (s *Service) checkTarget(ctx context.Context, userID int64, dto EntryDTO) error {
	if dto.ProjectID == nil || s.projects == nil {
		return nil
	}

	p, err := s.projects.GetByID(ctx, *dto.ProjectID)
	if err != nil {
		return err
	}
	if s.assignments == nil {
		return nil
	}
	assigned, err := s.assignments.IsAssigned(ctx, userID, p.ID)
	if err != nil {
		return err
	}
	if !assigned {
		return internal.NewForbiddenError("You are not assigned to this project", internal.ErrCodeNotAssigned)
	}
	return nil
}
