package policy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/policy"
)

func ptr(v int64) *int64 { return &v }

var _ = Describe("Policy", func() {
	var (
		employee domain.Actor
		manager  domain.Actor
		admin    domain.Actor
	)

	BeforeEach(func() {
		employee = domain.Actor{ID: 10, Role: domain.RoleEmployee, DepartmentID: ptr(1)}
		manager = domain.Actor{ID: 3, Role: domain.RoleManager, DepartmentID: ptr(1)}
		admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	})

	Describe("CanViewAllUsers", func() {
		It("should only allow admins", func() {
			Expect(policy.CanViewAllUsers(domain.RoleAdmin)).To(BeTrue())
			Expect(policy.CanViewAllUsers(domain.RoleManager)).To(BeFalse())
			Expect(policy.CanViewAllUsers(domain.RoleEmployee)).To(BeFalse())
		})
	})

	Describe("CanManageDepartment", func() {
		It("should allow admin for any department", func() {
			Expect(policy.CanManageDepartment(admin, 42)).To(BeTrue())
		})

		It("should allow a manager only for their own department", func() {
			Expect(policy.CanManageDepartment(manager, 1)).To(BeTrue())
			Expect(policy.CanManageDepartment(manager, 2)).To(BeFalse())
		})

		It("should deny a manager without a department", func() {
			manager.DepartmentID = nil
			Expect(policy.CanManageDepartment(manager, 1)).To(BeFalse())
		})

		It("should deny employees", func() {
			Expect(policy.CanManageDepartment(employee, 1)).To(BeFalse())
		})
	})

	Describe("CanEditTimesheet and CanDeleteTimesheet", func() {
		DescribeTable("non pending entries are never editable",
			func(status domain.ApprovalStatus, actor func() domain.Actor) {
				entry := &domain.TimesheetEntry{ID: 5, UserID: 10, ApprovalStatus: status}
				Expect(policy.CanEditTimesheet(entry, actor())).To(BeFalse())
				Expect(policy.CanDeleteTimesheet(entry, actor())).To(BeFalse())
			},
			Entry("approved, owner", domain.StatusApproved, func() domain.Actor { return employee }),
			Entry("rejected, owner", domain.StatusRejected, func() domain.Actor { return employee }),
			Entry("approved, manager", domain.StatusApproved, func() domain.Actor { return manager }),
			Entry("rejected, admin", domain.StatusRejected, func() domain.Actor { return admin }),
		)

		It("should allow the owner of a pending entry", func() {
			entry := &domain.TimesheetEntry{ID: 5, UserID: 10, ApprovalStatus: domain.StatusPending}
			Expect(policy.CanEditTimesheet(entry, employee)).To(BeTrue())
			Expect(policy.CanDeleteTimesheet(entry, employee)).To(BeTrue())
		})

		It("should deny anyone else on a pending entry", func() {
			entry := &domain.TimesheetEntry{ID: 5, UserID: 10, ApprovalStatus: domain.StatusPending}
			Expect(policy.CanEditTimesheet(entry, manager)).To(BeFalse())
			Expect(policy.CanEditTimesheet(entry, admin)).To(BeFalse())
		})

		It("should return false for a nil entry", func() {
			Expect(policy.CanEditTimesheet(nil, employee)).To(BeFalse())
		})
	})

	Describe("CanTransitionApproval", func() {
		var entry *domain.TimesheetEntry

		BeforeEach(func() {
			entry = &domain.TimesheetEntry{ID: 5, UserID: 10, ApprovalStatus: domain.StatusPending}
		})

		It("should allow a manager of the owner's department", func() {
			Expect(policy.CanTransitionApproval(entry, manager, ptr(1))).To(BeTrue())
		})

		It("should deny a manager of another department", func() {
			Expect(policy.CanTransitionApproval(entry, manager, ptr(2))).To(BeFalse())
		})

		It("should deny when the owner has no department", func() {
			Expect(policy.CanTransitionApproval(entry, manager, nil)).To(BeFalse())
		})

		It("should deny admins and employees", func() {
			Expect(policy.CanTransitionApproval(entry, admin, ptr(1))).To(BeFalse())
			Expect(policy.CanTransitionApproval(entry, employee, ptr(1))).To(BeFalse())
		})

		It("should deny a manager their own entry", func() {
			entry.UserID = manager.ID
			Expect(policy.IsOwnEntry(entry, manager)).To(BeTrue())
			Expect(policy.CanTransitionApproval(entry, manager, ptr(1))).To(BeFalse())
		})

		It("should deny terminal entries", func() {
			entry.ApprovalStatus = domain.StatusApproved
			Expect(policy.CanTransitionApproval(entry, manager, ptr(1))).To(BeFalse())
			Expect(policy.HasApprovalAuthority(manager, ptr(1))).To(BeTrue())
		})
	})

	Describe("VisibleProjectsFor", func() {
		var projects []domain.Project

		BeforeEach(func() {
			projects = []domain.Project{
				{ID: 7, Name: "Payroll", DepartmentID: 1},
				{ID: 8, Name: "Portal", DepartmentID: 1},
				{ID: 9, Name: "Warehouse", DepartmentID: 2},
			}
		})

		It("should give admins every project", func() {
			Expect(policy.VisibleProjectsFor(admin, projects, nil)).To(HaveLen(3))
		})

		It("should give managers their department's projects", func() {
			visible := policy.VisibleProjectsFor(manager, projects, nil)
			Expect(visible).To(HaveLen(2))
			for _, p := range visible {
				Expect(p.DepartmentID).To(Equal(int64(1)))
			}
		})

		It("should give employees assigned projects plus two synthetic activities", func() {
			assignments := []domain.ProjectAssignment{
				{UserID: 10, ProjectID: 9, RoleInProject: domain.ProjectRoleTester},
				{UserID: 11, ProjectID: 7, RoleInProject: domain.ProjectRoleLead},
			}
			visible := policy.VisibleProjectsFor(employee, projects, assignments)
			Expect(visible).To(HaveLen(3))
			Expect(visible[0].ID).To(Equal(int64(9)))

			synthetic := 0
			for _, p := range visible {
				if p.IsSynthetic() {
					synthetic++
				}
			}
			Expect(synthetic).To(Equal(2))
		})
	})

	Describe("CanViewUser", func() {
		It("should scope managers to their department", func() {
			Expect(policy.CanViewUser(manager, &domain.User{ID: 10, DepartmentID: ptr(1)})).To(BeTrue())
			Expect(policy.CanViewUser(manager, &domain.User{ID: 11, DepartmentID: ptr(2)})).To(BeFalse())
		})

		It("should let everyone view themselves", func() {
			Expect(policy.CanViewUser(employee, &domain.User{ID: 10})).To(BeTrue())
			Expect(policy.CanViewUser(employee, &domain.User{ID: 11})).To(BeFalse())
		})
	})
})
