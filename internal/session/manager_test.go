package session_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/session"
)

func signToken(claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("client-side-never-verifies"))
	Expect(err).NotTo(HaveOccurred())
	return token
}

type mockAuthenticator struct {
	token string
	err   error
	calls int
}

func (m *mockAuthenticator) Login(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.token, m.err
}

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		now      time.Time
		store    *session.FileStore
		auth     *mockAuthenticator
		profile  *domain.User
		profErr  error
		seenTok  string
		manager  *session.Manager
		validTok string
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
		store = session.NewFileStore(filepath.Join(GinkgoT().TempDir(), "session.json"))

		dept := int64(2)
		profile = &domain.User{ID: 3, Email: "m@mail.com", Name: "Mia", Role: domain.RoleManager, DepartmentID: &dept, Active: true}
		profErr = nil
		seenTok = ""

		validTok = signToken(jwt.MapClaims{"sub": "m@mail.com", "role": "MANAGER", "userId": 3, "exp": now.Add(time.Hour).Unix()})
		auth = &mockAuthenticator{token: validTok}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		manager = session.NewManager(store, auth, func(_ context.Context, token string) (*domain.User, error) {
			seenTok = token
			return profile, profErr
		}, logger).WithClock(func() time.Time { return now })
	})

	Describe("Login", func() {
		It("should persist the token and profile as one session", func() {
			sess, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(seenTok).To(Equal(validTok))
			Expect(sess.Role).To(Equal(domain.RoleManager))
			Expect(sess.ExpiresAt.Unix()).To(Equal(now.Add(time.Hour).Unix()))

			stored, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Token).To(Equal(validTok))
			Expect(stored.User.ID).To(Equal(int64(3)))

			actor, err := manager.Actor()
			Expect(err).NotTo(HaveOccurred())
			Expect(actor.ID).To(Equal(int64(3)))
			Expect(*actor.DepartmentID).To(Equal(int64(2)))
			Expect(manager.Token()).To(Equal(validTok))
		})

		It("should take the role from the token rather than the profile", func() {
			auth.token = signToken(jwt.MapClaims{"sub": "m@mail.com", "role": "employee", "id": 3, "exp": now.Add(time.Hour).Unix()})

			sess, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Actor().Role).To(Equal(domain.RoleEmployee))
		})

		It("should store nothing when the server refuses", func() {
			auth.err = internal.ErrInvalidCredentials

			_, err := manager.Login(ctx, "m@mail.com", "wrong")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			stored, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeNil())
		})

		It("should refuse an undecodable token", func() {
			auth.token = "not-a-token"

			_, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("should refuse a token without an expiry", func() {
			auth.token = signToken(jwt.MapClaims{"sub": "m@mail.com", "role": "MANAGER", "userId": 3})

			_, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("should store nothing when the profile cannot be fetched", func() {
			profErr = internal.NewNetworkError("Could not reach the server", errors.New("boom"))

			_, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(internal.HasType(err, internal.ErrorTypeNetwork)).To(BeTrue())

			stored, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeNil())
			_, ok := manager.Current()
			Expect(ok).To(BeFalse())
		})

		It("should refuse a profile of another user", func() {
			profile.ID = 99

			_, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("Restore", func() {
		It("should resume a live session", func() {
			_, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).NotTo(HaveOccurred())

			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			fresh := session.NewManager(store, auth, nil, logger).WithClock(func() time.Time { return now.Add(30 * time.Minute) })
			sess, err := fresh.Restore(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.User.Email).To(Equal("m@mail.com"))
			Expect(fresh.Token()).To(Equal(validTok))
		})

		It("should clear an expired session", func() {
			_, err := manager.Login(ctx, "m@mail.com", "secret")
			Expect(err).NotTo(HaveOccurred())

			now = now.Add(2 * time.Hour)
			_, ok := manager.Current()
			Expect(ok).To(BeFalse())
			Expect(manager.Token()).To(BeEmpty())

			sess, err := manager.Restore(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess).To(BeNil())

			stored, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeNil())
		})

		It("should clear an unreadable session", func() {
			Expect(os.WriteFile(store.Path(), []byte("garbage"), 0o600)).To(Succeed())

			sess, err := manager.Restore(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess).To(BeNil())
			_, statErr := os.Stat(store.Path())
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	It("should forget the session on logout", func() {
		_, err := manager.Login(ctx, "m@mail.com", "secret")
		Expect(err).NotTo(HaveOccurred())

		Expect(manager.Logout(ctx)).To(Succeed())
		_, err = manager.Actor()
		Expect(err).To(HaveOccurred())

		stored, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(BeNil())
	})
})
