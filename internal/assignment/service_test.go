package assignment_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/assignment"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/project"
)

type pairKey struct{ projectID, userID int64 }

type mockAssignmentRepository struct {
	pairs  map[pairKey]*domain.ProjectAssignment
	order  []pairKey
	nextID int64
}

func newMockAssignmentRepository() *mockAssignmentRepository {
	return &mockAssignmentRepository{pairs: make(map[pairKey]*domain.ProjectAssignment), nextID: 1}
}

func (m *mockAssignmentRepository) Create(_ context.Context, a *domain.ProjectAssignment) error {
	k := pairKey{a.ProjectID, a.UserID}
	if _, ok := m.pairs[k]; ok {
		return internal.ErrDuplicateAssign
	}
	a.ID = m.nextID
	m.nextID++
	copied := *a
	m.pairs[k] = &copied
	m.order = append(m.order, k)
	return nil
}

func (m *mockAssignmentRepository) Get(_ context.Context, projectID, userID int64) (*domain.ProjectAssignment, error) {
	a, ok := m.pairs[pairKey{projectID, userID}]
	if !ok {
		return nil, internal.ErrAssignmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAssignmentRepository) UpdateRole(_ context.Context, projectID, userID int64, role domain.ProjectRole) error {
	a, ok := m.pairs[pairKey{projectID, userID}]
	if !ok {
		return internal.ErrAssignmentNotFound
	}
	a.RoleInProject = role
	return nil
}

func (m *mockAssignmentRepository) Delete(_ context.Context, projectID, userID int64) (bool, error) {
	k := pairKey{projectID, userID}
	if _, ok := m.pairs[k]; !ok {
		return false, nil
	}
	delete(m.pairs, k)
	return true, nil
}

func (m *mockAssignmentRepository) filter(match func(pairKey) bool) []domain.ProjectAssignment {
	var out []domain.ProjectAssignment
	for _, k := range m.order {
		if a, ok := m.pairs[k]; ok && match(k) {
			out = append(out, *a)
		}
	}
	return out
}

func (m *mockAssignmentRepository) ListForUser(_ context.Context, userID int64) ([]domain.ProjectAssignment, error) {
	return m.filter(func(k pairKey) bool { return k.userID == userID }), nil
}

func (m *mockAssignmentRepository) ListForProject(_ context.Context, projectID int64) ([]domain.ProjectAssignment, error) {
	return m.filter(func(k pairKey) bool { return k.projectID == projectID }), nil
}

type mockProjectReader struct {
	projects map[int64]domain.Project
}

func (m *mockProjectReader) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, internal.ErrProjectNotFound
	}
	return &p, nil
}

func (m *mockProjectReader) List(_ context.Context, filter project.ListFilter) ([]domain.Project, error) {
	var out []domain.Project
	for _, id := range filter.IDs {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("AssignmentService", func() {
	var (
		ctx       context.Context
		repo      *mockAssignmentRepository
		publisher *recordingPublisher
		service   *assignment.Service

		manager  domain.Actor
		outsider domain.Actor
		employee domain.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockAssignmentRepository()
		publisher = &recordingPublisher{}
		projects := &mockProjectReader{projects: map[int64]domain.Project{
			7: {ID: 7, Name: "Payroll", DepartmentID: 1},
			8: {ID: 8, Name: "Billing", DepartmentID: 1},
		}}
		users := &mockUserReader{users: map[int64]*domain.User{
			20: {ID: 20, Name: "Dev", Email: "dev@mail.com", DepartmentID: ptr(1)},
			21: {ID: 21, Name: "QA", Email: "qa@mail.com", DepartmentID: ptr(1)},
			30: {ID: 30, Name: "Other", DepartmentID: ptr(2)},
		}}
		service = assignment.NewService(repo, projects, users, publisher, logger)

		manager = domain.Actor{ID: 3, Role: domain.RoleManager, DepartmentID: ptr(1)}
		outsider = domain.Actor{ID: 4, Role: domain.RoleManager, DepartmentID: ptr(2)}
		employee = domain.Actor{ID: 20, Role: domain.RoleEmployee, DepartmentID: ptr(1)}
	})

	Describe("Assign", func() {
		It("should create the pairing and publish an event", func() {
			a, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "developer"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.RoleInProject).To(Equal(domain.ProjectRoleDeveloper))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeAssignmentCreated))
		})

		It("should reject a second assign of the same pair even with another role", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "DEVELOPER"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "LEAD"})
			Expect(err).To(MatchError(internal.ErrDuplicateAssign))

			stored, _ := repo.Get(ctx, 7, 20)
			Expect(stored.RoleInProject).To(Equal(domain.ProjectRoleDeveloper))
		})

		It("should allow re-assigning after an unassign", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "DEVELOPER"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Unassign(ctx, manager, 7, 20)).To(Succeed())

			_, err = service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "LEAD"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should require authority over the project's department", func() {
			_, err := service.Assign(ctx, outsider, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "TESTER"})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))

			_, err = service.Assign(ctx, employee, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "TESTER"})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("should refuse users from another department", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 30, RoleInProject: "TESTER"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			field, _ := appErr.FieldError()
			Expect(field.Field).To(Equal("userId"))
		})

		It("should refuse an unknown project role", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "ARCHITECT"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			field, _ := appErr.FieldError()
			Expect(field.Field).To(Equal("roleInProject"))
			Expect(field.Code).To(Equal(string(internal.ErrCodeInvalidRole)))
		})
	})

	Describe("UpdateRole", func() {
		It("should change the role of an existing pairing", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "DEVELOPER"})
			Expect(err).NotTo(HaveOccurred())

			a, err := service.UpdateRole(ctx, manager, 7, 20, assignment.UpdateRoleDTO{RoleInProject: "LEAD"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.RoleInProject).To(Equal(domain.ProjectRoleLead))
		})

		It("should not create a missing pairing", func() {
			_, err := service.UpdateRole(ctx, manager, 7, 20, assignment.UpdateRoleDTO{RoleInProject: "LEAD"})
			Expect(err).To(MatchError(internal.ErrAssignmentNotFound))
		})
	})

	Describe("Unassign", func() {
		It("should succeed for an absent pairing without publishing", func() {
			Expect(service.Unassign(ctx, manager, 7, 21)).To(Succeed())
			Expect(publisher.events).To(BeEmpty())
		})
	})

	Describe("AssignedProjectsFor", func() {
		It("should always include exactly the two internal activities", func() {
			projects, err := service.AssignedProjectsFor(ctx, employee, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(2))

			_, err = service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "DEVELOPER"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Assign(ctx, manager, 8, assignment.AssignDTO{UserID: 20, RoleInProject: "TESTER"})
			Expect(err).NotTo(HaveOccurred())

			projects, err = service.AssignedProjectsFor(ctx, employee, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(4))

			var synthetic []string
			for _, p := range projects {
				if p.IsSynthetic() {
					synthetic = append(synthetic, p.ActivityType)
				}
			}
			Expect(synthetic).To(ConsistOf(domain.ActivityTraining, domain.ActivityOther))
		})

		It("should hide another employee's projects", func() {
			_, err := service.AssignedProjectsFor(ctx, employee, 21)
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("AssignMany", func() {
		It("should keep successful assignments when others fail", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 21, RoleInProject: "TESTER"})
			Expect(err).NotTo(HaveOccurred())

			results, err := service.AssignMany(ctx, manager, 7, assignment.BatchAssignDTO{Assignments: []assignment.AssignDTO{
				{UserID: 20, RoleInProject: "DEVELOPER"},
				{UserID: 21, RoleInProject: "LEAD"},
				{UserID: 30, RoleInProject: "TESTER"},
				{UserID: 99, RoleInProject: "TESTER"},
			}})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(4))

			Expect(results[0].OK()).To(BeTrue())
			Expect(results[0].Assignment.UserID).To(Equal(int64(20)))
			Expect(results[1].Error.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(results[2].Error.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(results[3].Error.Type).To(Equal(internal.ErrorTypeNotFound))

			_, err = repo.Get(ctx, 7, 20)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject an empty batch", func() {
			_, err := service.AssignMany(ctx, manager, 7, assignment.BatchAssignDTO{})
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("ListForProject", func() {
		It("should join the assignee profile", func() {
			_, err := service.Assign(ctx, manager, 7, assignment.AssignDTO{UserID: 20, RoleInProject: "DEVELOPER"})
			Expect(err).NotTo(HaveOccurred())

			users, err := service.ListForProject(ctx, manager, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Name).To(Equal("Dev"))
			Expect(users[0].RoleInProject).To(Equal(domain.ProjectRoleDeveloper))
		})
	})
})
