package domain_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

var _ = Describe("Role", func() {
	DescribeTable("ParseRole",
		func(raw string, expected domain.Role) {
			Expect(domain.ParseRole(raw)).To(Equal(expected))
		},
		Entry("authority admin", "ROLE_ADMIN", domain.RoleAdmin),
		Entry("lower manager", "manager", domain.RoleManager),
		Entry("mixed case", "Role_Manager", domain.RoleManager),
		Entry("employee", "ROLE_EMPLOYEE", domain.RoleEmployee),
		Entry("unknown", "auditor", domain.RoleEmployee),
		Entry("empty", "", domain.RoleEmployee),
	)

	It("should reject unknown roles in strict lookup", func() {
		_, ok := domain.LookupRole("auditor")
		Expect(ok).To(BeFalse())

		role, ok := domain.LookupRole("ROLE_MANAGER")
		Expect(ok).To(BeTrue())
		Expect(role).To(Equal(domain.RoleManager))
	})

	It("should encode as its lower case name", func() {
		data, err := json.Marshal(domain.RoleManager)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`"manager"`))
		Expect(domain.RoleAdmin.Authority()).To(Equal("ROLE_ADMIN"))
	})
})

var _ = Describe("ApprovalStatus", func() {
	It("should only allow PENDING to move into a terminal state", func() {
		Expect(domain.StatusPending.CanTransitionTo(domain.StatusApproved)).To(BeTrue())
		Expect(domain.StatusPending.CanTransitionTo(domain.StatusRejected)).To(BeTrue())
		Expect(domain.StatusPending.CanTransitionTo(domain.StatusPending)).To(BeFalse())
		Expect(domain.StatusApproved.CanTransitionTo(domain.StatusRejected)).To(BeFalse())
		Expect(domain.StatusRejected.CanTransitionTo(domain.StatusApproved)).To(BeFalse())
	})

	It("should stamp the actioning manager on transition", func() {
		entry := &domain.TimesheetEntry{ApprovalStatus: domain.StatusPending}
		at := time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC)

		Expect(entry.Transition(domain.StatusApproved, "ok", 3, at)).To(BeTrue())
		Expect(entry.ApprovalStatus).To(Equal(domain.StatusApproved))
		Expect(*entry.ActionedBy).To(Equal(int64(3)))

		Expect(entry.Transition(domain.StatusRejected, "", 3, at)).To(BeFalse())
		Expect(entry.ApprovalStatus).To(Equal(domain.StatusApproved))
	})
})

var _ = Describe("Date", func() {
	It("should encode as a calendar day", func() {
		data, err := json.Marshal(domain.NewDate(2025, time.November, 10))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`"2025-11-10"`))
	})

	It("should accept full timestamps", func() {
		var d domain.Date
		Expect(json.Unmarshal([]byte(`"2025-11-10T15:04:05Z"`), &d)).To(Succeed())
		Expect(d.String()).To(Equal("2025-11-10"))
	})

	It("should decode null as the zero date", func() {
		var d domain.Date
		Expect(json.Unmarshal([]byte(`null`), &d)).To(Succeed())
		Expect(d.IsZero()).To(BeTrue())
	})
})

var _ = Describe("SyntheticProjects", func() {
	It("should expose training and other", func() {
		projects := domain.SyntheticProjects()
		Expect(projects).To(HaveLen(2))
		Expect(projects[0].ActivityType).To(Equal(domain.ActivityTraining))
		Expect(projects[1].ActivityType).To(Equal(domain.ActivityOther))

		projects[0].Name = "mutated"
		p, ok := domain.SyntheticProject(domain.ActivityTraining)
		Expect(ok).To(BeTrue())
		Expect(p.Name).To(Equal("Training & Development"))
	})
})
