package timesheet_test

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

type mockTimesheetRepository struct {
	entries     map[int64]*domain.TimesheetEntry
	nextID      int64
	createError error
	updates     int
}

func newMockTimesheetRepository() *mockTimesheetRepository {
	return &mockTimesheetRepository{entries: make(map[int64]*domain.TimesheetEntry), nextID: 1}
}

func (m *mockTimesheetRepository) Create(_ context.Context, e *domain.TimesheetEntry) error {
	if m.createError != nil {
		return m.createError
	}
	e.ID = m.nextID
	m.nextID++
	copied := *e
	m.entries[e.ID] = &copied
	return nil
}

func (m *mockTimesheetRepository) GetByID(_ context.Context, id int64) (*domain.TimesheetEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, internal.ErrTimesheetNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockTimesheetRepository) ListByUser(_ context.Context, userID int64) ([]domain.TimesheetEntry, error) {
	var out []domain.TimesheetEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockTimesheetRepository) ListByUserOnDate(ctx context.Context, userID int64, day domain.Date) ([]domain.TimesheetEntry, error) {
	all, _ := m.ListByUser(ctx, userID)
	var out []domain.TimesheetEntry
	for _, e := range all {
		if e.WorkDate.Equal(day.Time) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockTimesheetRepository) ListByDepartment(_ context.Context, _ int64) ([]domain.TimesheetEntry, error) {
	return nil, nil
}

func (m *mockTimesheetRepository) Update(_ context.Context, e *domain.TimesheetEntry) error {
	m.updates++
	copied := *e
	m.entries[e.ID] = &copied
	return nil
}

func (m *mockTimesheetRepository) Delete(_ context.Context, id int64) error {
	delete(m.entries, id)
	return nil
}

type mockUserReader struct {
	users map[int64]*domain.User
}

func (m *mockUserReader) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

type mockProjectReader struct {
	projects map[int64]*domain.Project
}

func (m *mockProjectReader) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, internal.ErrProjectNotFound
	}
	return p, nil
}

type mockAssignmentChecker struct {
	assigned map[[2]int64]bool
}

func (m *mockAssignmentChecker) IsAssigned(_ context.Context, userID, projectID int64) (bool, error) {
	return m.assigned[[2]int64{userID, projectID}], nil
}

func ptr(v int64) *int64       { return &v }
func hours(v float64) *float64 { return &v }
func text(v string) *string    { return &v }

var _ = Describe("TimesheetService", func() {
	var (
		ctx      context.Context
		repo     *mockTimesheetRepository
		service  *timesheet.Service
		employee domain.Actor
		other    domain.Actor
		manager  domain.Actor
		workDate domain.Date
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockTimesheetRepository()
		users := &mockUserReader{users: map[int64]*domain.User{
			5: {ID: 5, DepartmentID: ptr(1)},
			6: {ID: 6, DepartmentID: ptr(1)},
		}}
		service = timesheet.NewService(repo, users, logger).WithTargetChecks(
			&mockProjectReader{projects: map[int64]*domain.Project{7: {ID: 7, DepartmentID: 1}, 8: {ID: 8, DepartmentID: 1}}},
			&mockAssignmentChecker{assigned: map[[2]int64]bool{{5, 7}: true}},
		)

		employee = domain.Actor{ID: 5, Role: domain.RoleEmployee, DepartmentID: ptr(1)}
		other = domain.Actor{ID: 6, Role: domain.RoleEmployee, DepartmentID: ptr(1)}
		manager = domain.Actor{ID: 3, Role: domain.RoleManager, DepartmentID: ptr(1)}
		workDate = domain.NewDate(2025, time.November, 10)
	})

	Describe("Create", func() {
		It("should round-trip through ListForCurrentUser as a pending entry", func() {
			input := timesheet.EntryDTO{WorkDate: workDate, ProjectID: ptr(7), HoursWorked: 8, Description: "api work"}
			created, err := service.Create(ctx, employee, input)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.ApprovalStatus).To(Equal(domain.StatusPending))

			entries, err := service.ListForCurrentUser(ctx, employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			got := entries[0]
			Expect(got.ID).To(Equal(created.ID))
			Expect(got.UserID).To(Equal(employee.ID))
			Expect(got.WorkDate).To(Equal(input.WorkDate))
			Expect(*got.ProjectID).To(Equal(int64(7)))
			Expect(got.HoursWorked).To(Equal(8.0))
			Expect(got.Description).To(Equal("api work"))
			Expect(got.ApprovalStatus).To(Equal(domain.StatusPending))
		})

		It("should accept an internal activity without a project", func() {
			created, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ActivityType: "Training", HoursWorked: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ActivityType).To(Equal(domain.ActivityTraining))
			Expect(created.ProjectID).To(BeNil())
		})

		DescribeTable("should report the first unmet constraint",
			func(dto timesheet.EntryDTO, field string, code internal.ErrorCode) {
				_, err := service.Create(ctx, employee, dto)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				fe, _ := appErr.FieldError()
				Expect(fe.Field).To(Equal(field))
				Expect(fe.Code).To(Equal(string(code)))
				Expect(repo.entries).To(BeEmpty())
			},
			Entry("missing date before anything else", timesheet.EntryDTO{HoursWorked: 0}, "workDate", internal.ErrCodeRequired),
			Entry("no target", timesheet.EntryDTO{WorkDate: domain.NewDate(2025, 1, 1), HoursWorked: 8}, "projectId", internal.ErrCodeInvalidTarget),
			Entry("both targets", timesheet.EntryDTO{WorkDate: domain.NewDate(2025, 1, 1), ProjectID: ptr(7), ActivityType: "other", HoursWorked: 8}, "projectId", internal.ErrCodeInvalidTarget),
			Entry("non positive project", timesheet.EntryDTO{WorkDate: domain.NewDate(2025, 1, 1), ProjectID: ptr(0), HoursWorked: 8}, "projectId", internal.ErrCodeInvalidTarget),
			Entry("unknown activity", timesheet.EntryDTO{WorkDate: domain.NewDate(2025, 1, 1), ActivityType: "lunch", HoursWorked: 1}, "activityType", internal.ErrCodeInvalidTarget),
			Entry("zero hours", timesheet.EntryDTO{WorkDate: domain.NewDate(2025, 1, 1), ProjectID: ptr(7)}, "hoursWorked", internal.ErrCodeInvalidHours),
			Entry("more than a day", timesheet.EntryDTO{WorkDate: domain.NewDate(2025, 1, 1), ProjectID: ptr(7), HoursWorked: 25}, "hoursWorked", internal.ErrCodeInvalidHours),
		)

		It("should refuse a project the user is not assigned to", func() {
			_, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ProjectID: ptr(8), HoursWorked: 1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotAssigned))
		})

		It("should report an unknown project", func() {
			_, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ProjectID: ptr(99), HoursWorked: 1})
			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})
	})

	Describe("Update", func() {
		var id int64

		BeforeEach(func() {
			created, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ProjectID: ptr(7), HoursWorked: 8})
			Expect(err).NotTo(HaveOccurred())
			id = created.ID
		})

		It("should let the owner edit a pending entry", func() {
			updated, err := service.Update(ctx, employee, id, timesheet.PatchDTO{HoursWorked: hours(4)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.HoursWorked).To(Equal(4.0))
			Expect(*updated.ProjectID).To(Equal(int64(7)))
		})

		It("should swap the target when an activity replaces the project", func() {
			updated, err := service.Update(ctx, employee, id, timesheet.PatchDTO{ActivityType: text("other")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ProjectID).To(BeNil())
			Expect(updated.ActivityType).To(Equal(domain.ActivityOther))
		})

		It("should deny anyone but the owner", func() {
			_, err := service.Update(ctx, other, id, timesheet.PatchDTO{HoursWorked: hours(4)})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))

			_, err = service.Update(ctx, manager, id, timesheet.PatchDTO{HoursWorked: hours(4)})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("should check the stored status rather than the caller's copy", func() {
			repo.entries[id].ApprovalStatus = domain.StatusApproved

			_, err := service.Update(ctx, employee, id, timesheet.PatchDTO{HoursWorked: hours(4)})
			Expect(internal.HasType(err, internal.ErrorTypeForbidden)).To(BeTrue())
			Expect(repo.entries[id].HoursWorked).To(Equal(8.0))
			Expect(repo.updates).To(BeZero())
		})

		It("should re-validate the merged entry", func() {
			_, err := service.Update(ctx, employee, id, timesheet.PatchDTO{HoursWorked: hours(-1)})
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should follow the same gate as update", func() {
			created, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ActivityType: "other", HoursWorked: 1})
			Expect(err).NotTo(HaveOccurred())

			repo.entries[created.ID].ApprovalStatus = domain.StatusRejected
			Expect(service.Delete(ctx, employee, created.ID)).To(MatchError(internal.ErrUnauthorizedAccess))

			repo.entries[created.ID].ApprovalStatus = domain.StatusPending
			Expect(service.Delete(ctx, other, created.ID)).To(MatchError(internal.ErrUnauthorizedAccess))
			Expect(service.Delete(ctx, employee, created.ID)).To(Succeed())
			Expect(repo.entries).To(BeEmpty())
		})

		It("should report a missing entry", func() {
			Expect(service.Delete(ctx, employee, 42)).To(MatchError(internal.ErrTimesheetNotFound))
		})
	})

	Describe("ListForDate", func() {
		It("should return only the actor's entries of that day", func() {
			_, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ActivityType: "training", HoursWorked: 2})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: domain.NewDate(2025, time.November, 11), ActivityType: "other", HoursWorked: 3})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, other, timesheet.EntryDTO{WorkDate: workDate, ActivityType: "other", HoursWorked: 4})
			Expect(err).NotTo(HaveOccurred())

			entries, err := service.ListForDate(ctx, employee, workDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].HoursWorked).To(Equal(2.0))
		})

		It("should give an empty list for a day without entries", func() {
			entries, err := service.ListForDate(ctx, employee, workDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).NotTo(BeNil())
			Expect(entries).To(BeEmpty())
		})

		It("should require a date", func() {
			_, err := service.ListForDate(ctx, employee, domain.Date{})
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("should let the department manager read a member's entry", func() {
			created, err := service.Create(ctx, employee, timesheet.EntryDTO{WorkDate: workDate, ActivityType: "other", HoursWorked: 1})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(ctx, manager, created.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Get(ctx, other, created.ID)
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("ComputeStats", func() {
		It("should bucket hours by Monday-based week and calendar month", func() {
			// Wednesday 2025-11-12
			now := time.Date(2025, time.November, 12, 15, 0, 0, 0, time.UTC)
			entries := []domain.TimesheetEntry{
				{WorkDate: domain.NewDate(2025, time.November, 10), HoursWorked: 8, ApprovalStatus: domain.StatusApproved},
				{WorkDate: domain.NewDate(2025, time.November, 16), HoursWorked: 2, ApprovalStatus: domain.StatusPending},
				{WorkDate: domain.NewDate(2025, time.November, 9), HoursWorked: 3, ApprovalStatus: domain.StatusRejected},
				{WorkDate: domain.NewDate(2025, time.October, 31), HoursWorked: 5, ApprovalStatus: domain.StatusPending},
			}

			stats := timesheet.ComputeStats(entries, now)
			Expect(stats.WeeklyHours).To(Equal(10.0))
			Expect(stats.MonthlyHours).To(Equal(13.0))
			Expect(stats.PendingCount).To(Equal(2))
			Expect(stats.ApprovedCount).To(Equal(1))
			Expect(stats.RejectedCount).To(Equal(1))
		})

		It("should treat Sunday as the end of the week", func() {
			now := time.Date(2025, time.November, 16, 9, 0, 0, 0, time.UTC)
			entries := []domain.TimesheetEntry{
				{WorkDate: domain.NewDate(2025, time.November, 10), HoursWorked: 1},
				{WorkDate: domain.NewDate(2025, time.November, 17), HoursWorked: 4},
			}
			Expect(timesheet.ComputeStats(entries, now).WeeklyHours).To(Equal(1.0))
		})
	})
})
