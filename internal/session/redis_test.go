package session_test

import (
	"context"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/timesheet-management/internal/session"
)

var _ = Describe("RedisStore", func() {
	var (
		ctx    context.Context
		client *redis.Client
		store  *session.RedisStore
	)

	BeforeEach(func() {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			Skip("REDIS_ADDR not set")
		}
		ctx = context.Background()
		client = redis.NewClient(&redis.Options{Addr: addr})
		store = session.NewRedisStore(client, "timesheet:session:test")
	})

	AfterEach(func() {
		if client != nil {
			Expect(store.Clear(ctx)).To(Succeed())
			Expect(client.Close()).To(Succeed())
		}
	})

	It("should keep the session until the token expires", func() {
		Expect(store.Save(ctx, &session.Session{Token: "a.b.c", ExpiresAt: time.Now().Add(time.Minute)})).To(Succeed())

		loaded, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Token).To(Equal("a.b.c"))

		ttl, err := client.TTL(ctx, "timesheet:session:test").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(ttl).To(BeNumerically(">", 0))
	})

	It("should refuse to save an expired session", func() {
		Expect(store.Save(ctx, &session.Session{Token: "a.b.c", ExpiresAt: time.Now().Add(-time.Minute)})).NotTo(Succeed())
	})
})
