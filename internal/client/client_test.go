package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{"success": true, "message": "", "data": data}
}

func errorEnvelope(t internal.ErrorType, code internal.ErrorCode, message string) map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"message": message,
		"error":   map[string]interface{}{"type": t, "code": code, "message": message},
	}
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	Expect(ok).To(BeTrue())
	conn, _, err := hj.Hijack()
	Expect(err).NotTo(HaveOccurred())
	_ = conn.Close()
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		mux    *http.ServeMux
		c      *client.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		c = client.New(client.Options{
			BaseURL:    server.URL + "/api/v1",
			Timeout:    time.Second,
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
			Logger:     logger,
		}).WithToken(func() string { return "a.b.c" })
	})

	AfterEach(func() {
		server.Close()
	})

	It("should send the bearer token and unwrap the envelope", func() {
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer a.b.c"))
			writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 5, "email": "e@mail.com", "role": "manager"}))
		})

		u, err := client.NewUserRepository(c).Me(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.ID).To(Equal(int64(5)))
		Expect(u.Role).To(Equal(domain.RoleManager))
	})

	It("should accept a bare array", func() {
		mux.HandleFunc("/api/v1/timesheets", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]interface{}{
				{"id": 1, "userId": 5, "workDate": "2025-11-10", "hoursWorked": 8, "approvalStatus": "PENDING"},
			})
		})

		entries, err := client.NewTimesheetRepository(c).ListByUser(ctx, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].WorkDate.String()).To(Equal("2025-11-10"))
	})

	It("should ask for a single day by query", func() {
		mux.HandleFunc("/api/v1/timesheets", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Get("date")).To(Equal("2025-11-10"))
			writeJSON(w, http.StatusOK, envelope([]map[string]interface{}{
				{"id": 3, "userId": 5, "workDate": "2025-11-10", "hoursWorked": 2, "approvalStatus": "PENDING"},
			}))
		})

		entries, err := client.NewTimesheetRepository(c).ListByUserOnDate(ctx, 5, domain.NewDate(2025, time.November, 10))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].ID).To(Equal(int64(3)))
	})

	It("should rebuild known error types", func() {
		mux.HandleFunc("/api/v1/timesheets/9", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorEnvelope(internal.ErrorTypeNotFound, internal.ErrCodeTimesheetNotFound, "Timesheet entry not found"))
		})

		_, err := client.NewTimesheetRepository(c).GetByID(ctx, 9)
		Expect(err).To(MatchError(internal.ErrTimesheetNotFound))
	})

	It("should keep field details of a validation error", func() {
		mux.HandleFunc("/api/v1/timesheets", func(w http.ResponseWriter, r *http.Request) {
			appErr := internal.NewValidationFieldError("hoursWorked", "hoursWorked must not exceed 24", internal.ErrCodeInvalidHours)
			status, body := appErr.ToHTTPResponse()
			writeJSON(w, status, body)
		})

		err := client.NewTimesheetRepository(c).Create(ctx, &domain.TimesheetEntry{HoursWorked: 30})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		field, ok := appErr.FieldError()
		Expect(ok).To(BeTrue())
		Expect(field.Field).To(Equal("hoursWorked"))
	})

	It("should turn unknown failures into a remote error with the server message", func() {
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "database is down"})
		})

		_, err := client.NewUserRepository(c).Me(ctx)
		Expect(internal.HasType(err, internal.ErrorTypeRemote)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("database is down"))
	})

	It("should report an unreadable body as a remote error", func() {
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"success":true,"data":`))
		})

		_, err := client.NewUserRepository(c).Me(ctx)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeMalformedPayload))
	})

	Context("when a successful reply carries no data", func() {
		BeforeEach(func() {
			mux.HandleFunc("/api/v1/timesheets", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, envelope(nil))
			})
		})

		It("should refuse to report a created entry", func() {
			entry := &domain.TimesheetEntry{UserID: 5, HoursWorked: 2, ActivityType: "training"}
			err := client.NewTimesheetRepository(c).Create(ctx, entry)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeRemote))
			Expect(appErr.Code).To(Equal(internal.ErrCodeMalformedPayload))
			Expect(entry.ID).To(BeZero())
		})

		It("should read a list as empty", func() {
			entries, err := client.NewTimesheetRepository(c).ListByUser(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	It("should refuse an empty body where a resource is expected", func() {
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		_, err := client.NewUserRepository(c).Me(ctx)
		Expect(internal.HasType(err, internal.ErrorTypeRemote)).To(BeTrue())
	})

	It("should report a deadline as a retryable timeout", func() {
		slow := client.New(client.Options{BaseURL: server.URL + "/api/v1", Timeout: 20 * time.Millisecond, Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))})
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-r.Context().Done():
			}
		})

		_, err := client.NewUserRepository(slow).Me(ctx)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeNetworkTimeout))
		Expect(appErr.Retryable()).To(BeTrue())
	})

	It("should retry reads after a dropped connection", func() {
		var hits int32
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&hits, 1) == 1 {
				dropConnection(w)
				return
			}
			writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 5}))
		})

		u, err := client.NewUserRepository(c).Me(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.ID).To(Equal(int64(5)))
		Expect(atomic.LoadInt32(&hits)).To(Equal(int32(2)))
	})

	It("should never retry writes", func() {
		var hits int32
		mux.HandleFunc("/api/v1/timesheets", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			dropConnection(w)
		})

		err := client.NewTimesheetRepository(c).Create(ctx, &domain.TimesheetEntry{HoursWorked: 2, ActivityType: "training"})
		Expect(internal.HasType(err, internal.ErrorTypeNetwork)).To(BeTrue())
		Expect(atomic.LoadInt32(&hits)).To(Equal(int32(1)))
	})

	It("should not retry a server refusal", func() {
		var hits int32
		mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			writeJSON(w, http.StatusForbidden, errorEnvelope(internal.ErrorTypeForbidden, internal.ErrCodeUnauthorizedAccess, "nope"))
		})

		_, err := client.NewUserRepository(c).Me(ctx)
		Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		Expect(atomic.LoadInt32(&hits)).To(Equal(int32(1)))
	})

	Describe("Login", func() {
		It("should extract the token from the envelope", func() {
			mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body["email"]).To(Equal("e@mail.com"))
				writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"token": "x.y.z"}))
			})

			token, err := c.Login(ctx, "e@mail.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("x.y.z"))
		})

		It("should surface wrong credentials", func() {
			mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, errorEnvelope(internal.ErrorTypeUnauthorized, internal.ErrCodeInvalidCredentials, "Invalid email or password"))
			})

			_, err := c.Login(ctx, "e@mail.com", "wrong")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("should refuse a reply without a token", func() {
			mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"user": map[string]int{"id": 1}}))
			})

			_, err := c.Login(ctx, "e@mail.com", "secret")
			Expect(internal.HasType(err, internal.ErrorTypeRemote)).To(BeTrue())
		})
	})

	Describe("running the services remotely", func() {
		var (
			logger  *slog.Logger
			manager domain.Actor
		)

		BeforeEach(func() {
			logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			dept := int64(2)
			manager = domain.Actor{ID: 3, Role: domain.RoleManager, DepartmentID: &dept}

			mux.HandleFunc("/api/v1/users/5", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 5, "role": "employee", "departmentId": 2, "active": true}))
			})
		})

		It("should report a race lost on the server as an invalid transition", func() {
			mux.HandleFunc("/api/v1/timesheets/11", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 11, "userId": 5, "workDate": "2025-11-10", "hoursWorked": 8, "approvalStatus": "PENDING"}))
			})
			mux.HandleFunc("/api/v1/approvals/11/status", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPut))
				status, body := internal.ErrConcurrentChange.ToHTTPResponse()
				writeJSON(w, status, body)
			})

			svc := approval.NewService(client.NewApprovalRepository(c), client.NewUserRepository(c), nil, nil, logger)
			_, err := svc.Approve(ctx, manager, 11, "")
			Expect(internal.HasType(err, internal.ErrorTypeInvalidTransition)).To(BeTrue())
			Expect(errors.Is(err, internal.ErrConcurrentChange)).To(BeTrue())
		})

		It("should refuse locally before calling the server for a terminal entry", func() {
			var puts int32
			mux.HandleFunc("/api/v1/timesheets/12", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 12, "userId": 5, "workDate": "2025-11-10", "hoursWorked": 8, "approvalStatus": "APPROVED"}))
			})
			mux.HandleFunc("/api/v1/approvals/12/status", func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&puts, 1)
			})

			svc := approval.NewService(client.NewApprovalRepository(c), client.NewUserRepository(c), nil, nil, logger)
			_, err := svc.Reject(ctx, manager, 12, "late")
			Expect(err).To(MatchError(internal.ErrNotPending))
			Expect(atomic.LoadInt32(&puts)).To(BeZero())
		})

		It("should send an update built from the merged entry", func() {
			employee := domain.Actor{ID: 5, Role: domain.RoleEmployee}
			mux.HandleFunc("/api/v1/timesheets/13", func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 13, "userId": 5, "workDate": "2025-11-10", "activityType": "training", "hoursWorked": 8, "approvalStatus": "PENDING"}))
					return
				}
				var patch map[string]interface{}
				Expect(json.NewDecoder(r.Body).Decode(&patch)).To(Succeed())
				Expect(patch["hoursWorked"]).To(Equal(6.0))
				Expect(patch["activityType"]).To(Equal("training"))
				Expect(patch).NotTo(HaveKey("projectId"))
				writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 13, "userId": 5, "workDate": "2025-11-10", "activityType": "training", "hoursWorked": 6, "approvalStatus": "PENDING"}))
			})

			svc := timesheet.NewService(client.NewTimesheetRepository(c), client.NewUserRepository(c), logger)
			six := 6.0
			updated, err := svc.Update(ctx, employee, 13, timesheet.PatchDTO{HoursWorked: &six})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.HoursWorked).To(Equal(6.0))
		})
	})

	It("should build query paths without a trailing slash", func() {
		trailing := client.New(client.Options{BaseURL: server.URL + "/api/v1/"})
		mux.HandleFunc("/api/v1/departments", func(w http.ResponseWriter, r *http.Request) {
			Expect(strings.HasPrefix(r.URL.Path, "/api/v1/departments")).To(BeTrue())
			writeJSON(w, http.StatusOK, envelope([]map[string]interface{}{{"id": 1, "name": "Sales"}}))
		})

		list, err := client.NewDepartmentRepository(trailing).List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
	})

	It("should refuse hours on an unassigned project before posting", func() {
		var posts int32
		mux.HandleFunc("/api/v1/projects/7", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"id": 7, "name": "Apollo", "departmentId": 1, "status": "ACTIVE"}))
		})
		mux.HandleFunc("/api/v1/users/5/assignments", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, envelope([]map[string]interface{}{{"projectId": 9, "userId": 5, "roleInProject": "DEVELOPER"}}))
		})
		mux.HandleFunc("/api/v1/timesheets", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&posts, 1)
		})

		svc := timesheet.NewService(client.NewTimesheetRepository(c), client.NewUserRepository(c), slog.Default()).
			WithTargetChecks(client.NewProjectRepository(c), client.NewAssignmentRepository(c))
		project := int64(7)
		_, err := svc.Create(ctx, domain.Actor{ID: 5, Role: domain.RoleEmployee}, timesheet.EntryDTO{
			WorkDate:    domain.NewDate(2025, time.November, 10),
			ProjectID:   &project,
			HoursWorked: 4,
		})
		Expect(internal.HasType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		Expect(atomic.LoadInt32(&posts)).To(BeZero())
	})
})
