package session_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/session"
)

var _ = Describe("FileStore", func() {
	var (
		ctx   context.Context
		dir   string
		store *session.FileStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		store = session.NewFileStore(filepath.Join(dir, "nested", "session.json"))
	})

	It("should report no session when nothing was saved", func() {
		sess, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sess).To(BeNil())
	})

	It("should round trip the credential together with the profile", func() {
		dept := int64(2)
		saved := &session.Session{
			Token:     "a.b.c",
			User:      domain.User{ID: 3, Email: "m@mail.com", Role: domain.RoleManager, DepartmentID: &dept, Active: true},
			Role:      domain.RoleManager,
			ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		Expect(store.Save(ctx, saved)).To(Succeed())

		loaded, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Token).To(Equal("a.b.c"))
		Expect(*loaded.User.DepartmentID).To(Equal(int64(2)))
		Expect(loaded.Actor().Role).To(Equal(domain.RoleManager))
	})

	It("should leave only the session file behind, readable by the owner", func() {
		Expect(store.Save(ctx, &session.Session{Token: "a.b.c"})).To(Succeed())
		Expect(store.Save(ctx, &session.Session{Token: "d.e.f"})).To(Succeed())

		entries, err := os.ReadDir(filepath.Dir(store.Path()))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))

		info, err := os.Stat(store.Path())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

		loaded, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Token).To(Equal("d.e.f"))
	})

	It("should flag an unreadable document", func() {
		Expect(os.MkdirAll(filepath.Dir(store.Path()), 0o700)).To(Succeed())
		Expect(os.WriteFile(store.Path(), []byte(`{"token":`), 0o600)).To(Succeed())

		_, err := store.Load(ctx)
		Expect(err).To(MatchError(session.ErrCorrupt))
	})

	It("should clear idempotently", func() {
		Expect(store.Save(ctx, &session.Session{Token: "a.b.c"})).To(Succeed())
		Expect(store.Clear(ctx)).To(Succeed())
		Expect(store.Clear(ctx)).To(Succeed())

		sess, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sess).To(BeNil())
	})
})
