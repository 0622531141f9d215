package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/app"
	"github.com/frahmantamala/timesheet-management/internal/approval"
	departmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/department"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	"github.com/frahmantamala/timesheet-management/internal/core/datamodel/sqlitetest"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

const password = "secret-password"

type emptyScopes struct{}

func (emptyScopes) Scope(context.Context, int64) (*approval.Scope, error) {
	return &approval.Scope{}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("App", func() {
	var (
		db        *gorm.DB
		server    *httptest.Server
		bus       interface{ Drain(context.Context) error }
		projectID int64
	)

	seedUser := func(email, role string, departmentID *int64) int64 {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		u := userDatamodel.User{
			Email:        email,
			Name:         email,
			PasswordHash: string(hash),
			Role:         role,
			DepartmentID: departmentID,
			IsActive:     true,
		}
		Expect(db.Create(&u).Error).To(Succeed())
		return u.ID
	}

	call := func(method, path, token string, body interface{}) (int, envelope) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req, err := http.NewRequest(method, server.URL+path, reader)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var env envelope
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		if len(raw) > 0 && raw[0] == '{' {
			Expect(json.Unmarshal(raw, &env)).To(Succeed())
		}
		return resp.StatusCode, env
	}

	login := func(email string) string {
		status, env := call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": email, "password": password,
		})
		Expect(status).To(Equal(http.StatusOK))
		var out struct {
			Token string `json:"token"`
		}
		Expect(json.Unmarshal(env.Data, &out)).To(Succeed())
		Expect(out.Token).NotTo(BeEmpty())
		return out.Token
	}

	BeforeEach(func() {
		var err error
		db, err = sqlitetest.Open()
		Expect(err).NotTo(HaveOccurred())

		dept := departmentDatamodel.Department{Name: "Engineering"}
		Expect(db.Create(&dept).Error).To(Succeed())
		managerID := seedUser("manager@example.com", "manager", &dept.ID)
		seedUser("employee@example.com", "employee", &dept.ID)
		seedUser("admin@example.com", "admin", nil)
		Expect(db.Model(&dept).Update("manager_id", managerID).Error).To(Succeed())

		p := projectDatamodel.Project{
			Name:         "Apollo",
			StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			DepartmentID: dept.ID,
			Status:       "ACTIVE",
		}
		Expect(db.Create(&p).Error).To(Succeed())
		projectID = p.ID

		cfg := &internal.Config{
			Server:   internal.ServerConfig{AllowedOrigins: "*", LoginRatePerSec: 100, LoginBurst: 100},
			Database: internal.DatabaseConfig{Source: "sqlite"},
			Security: internal.SecurityConfig{JWTSecret: "an-integration-test-secret-of-32-chars", BCryptCost: bcrypt.MinCost},
			Observability: internal.ObservabilityConfig{
				Metrics: internal.MetricsConfig{Enabled: true},
			},
		}
		cfg.ApplyDefaults()

		a, err := app.New(context.Background(), app.Deps{
			Config: cfg,
			DB:     db,
			Scopes: emptyScopes{},
			Logger: logger.Discard(),
		})
		Expect(err).NotTo(HaveOccurred())
		bus = a.Bus
		server = httptest.NewServer(a.Router)
	})

	AfterEach(func() {
		server.Close()
		Expect(bus.Drain(context.Background())).To(Succeed())
		Expect(sqlitetest.Close(db)).To(Succeed())
	})

	It("reports health and serves the API document", func() {
		status, _ := call(http.MethodGet, "/api/v1/health", "", nil)
		Expect(status).To(Equal(http.StatusOK))

		resp, err := http.Get(server.URL + "/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		resp, err = http.Get(server.URL + "/metrics")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("rejects protected routes without a token", func() {
		status, _ := call(http.MethodGet, "/api/v1/timesheets", "", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("runs an entry from submission to approval and locks it", func() {
		employee := login("employee@example.com")
		manager := login("manager@example.com")

		status, env := call(http.MethodPost, "/api/v1/timesheets", employee, map[string]interface{}{
			"workDate":     "2024-03-04",
			"activityType": "training",
			"hoursWorked":  6,
		})
		Expect(status).To(Equal(http.StatusCreated))
		var entry struct {
			ID             int64  `json:"id"`
			ApprovalStatus string `json:"approvalStatus"`
		}
		Expect(json.Unmarshal(env.Data, &entry)).To(Succeed())
		Expect(entry.ApprovalStatus).To(Equal("PENDING"))

		status, _ = call(http.MethodPut, fmt.Sprintf("/api/v1/approvals/%d/status", entry.ID), employee,
			map[string]string{"status": "APPROVED"})
		Expect(status).To(Equal(http.StatusForbidden))

		status, env = call(http.MethodPut, fmt.Sprintf("/api/v1/approvals/%d/status", entry.ID), manager,
			map[string]string{"status": "APPROVED", "remarks": "ok"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(env.Data, &entry)).To(Succeed())
		Expect(entry.ApprovalStatus).To(Equal("APPROVED"))

		status, env = call(http.MethodPut, fmt.Sprintf("/api/v1/approvals/%d/status", entry.ID), manager,
			map[string]string{"status": "REJECTED"})
		Expect(status).To(Equal(http.StatusConflict))
		Expect(env.Error.Type).To(Equal(string(internal.ErrorTypeInvalidTransition)))

		status, _ = call(http.MethodPut, fmt.Sprintf("/api/v1/timesheets/%d", entry.ID), employee,
			map[string]interface{}{"hoursWorked": 2})
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("lists the caller's entries of one day", func() {
		employee := login("employee@example.com")
		for _, day := range []string{"2024-03-04", "2024-03-04", "2024-03-05"} {
			status, _ := call(http.MethodPost, "/api/v1/timesheets", employee, map[string]interface{}{
				"workDate": day, "activityType": "other", "hoursWorked": 1,
			})
			Expect(status).To(Equal(http.StatusCreated))
		}

		status, env := call(http.MethodGet, "/api/v1/timesheets?date=2024-03-04", employee, nil)
		Expect(status).To(Equal(http.StatusOK))
		var entries []struct {
			WorkDate string `json:"workDate"`
		}
		Expect(json.Unmarshal(env.Data, &entries)).To(Succeed())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].WorkDate).To(Equal("2024-03-04"))

		status, env = call(http.MethodGet, "/api/v1/timesheets?date=04-03-2024", employee, nil)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Type).To(Equal(string(internal.ErrorTypeValidation)))
	})

	It("does not let a manager decide on their own entry", func() {
		manager := login("manager@example.com")

		status, env := call(http.MethodPost, "/api/v1/timesheets", manager, map[string]interface{}{
			"workDate": "2024-03-04", "activityType": "training", "hoursWorked": 2,
		})
		Expect(status).To(Equal(http.StatusCreated))
		var entry struct {
			ID int64 `json:"id"`
		}
		Expect(json.Unmarshal(env.Data, &entry)).To(Succeed())

		status, _ = call(http.MethodPut, fmt.Sprintf("/api/v1/approvals/%d/status", entry.ID), manager,
			map[string]string{"status": "APPROVED"})
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("refuses hours on a project the user is not assigned to", func() {
		employee := login("employee@example.com")

		status, env := call(http.MethodPost, "/api/v1/timesheets", employee, map[string]interface{}{
			"workDate":    "2024-03-04",
			"projectId":   projectID,
			"hoursWorked": 4,
		})
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeNotAssigned)))
	})

	It("deletes a project only after the proposal is committed", func() {
		admin := login("admin@example.com")

		status, env := call(http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", projectID), admin, nil)
		Expect(status).To(Equal(http.StatusAccepted))
		var token struct {
			Token string `json:"token"`
		}
		Expect(json.Unmarshal(env.Data, &token)).To(Succeed())

		status, _ = call(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", projectID), admin, nil)
		Expect(status).To(Equal(http.StatusOK))

		status, _ = call(http.MethodPost, "/api/v1/confirmations/"+token.Token, admin, nil)
		Expect(status).To(Equal(http.StatusOK))

		status, _ = call(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", projectID), admin, nil)
		Expect(status).To(Equal(http.StatusNotFound))

		status, _ = call(http.MethodPost, "/api/v1/confirmations/"+token.Token, admin, nil)
		Expect(status).To(Equal(http.StatusNotFound))
	})
})
