package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	It("should deliver to every subscriber of the event type", func() {
		var calls int32
		handler := func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}
		bus.Subscribe(events.EventTypeTimesheetApproved, handler)
		bus.Subscribe(events.EventTypeTimesheetApproved, handler)
		bus.Subscribe(events.EventTypeTimesheetRejected, handler)

		evt := events.NewTimesheetTransitionedEvent(1, 2, 3, "APPROVED", "ok")
		Expect(bus.Publish(context.Background(), evt)).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(bus.Drain(ctx)).To(Succeed())
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(2)))
	})

	It("should run handlers after the publishing context is cancelled", func() {
		done := make(chan error, 1)
		bus.Subscribe(events.EventTypeAssignmentCreated, func(ctx context.Context, e events.Event) error {
			done <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewAssignmentChangedEvent(events.EventTypeAssignmentCreated, 1, 2, "LEAD", 3))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})

	It("should surface handler errors from PublishSync", func() {
		bus.Subscribe(events.EventTypeTimesheetSubmitted, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})

		err := bus.PublishSync(context.Background(), events.NewTimesheetSubmittedEvent(1, 2, 8))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("should name the event type after the decision", func() {
		Expect(events.NewTimesheetTransitionedEvent(1, 2, 3, "APPROVED", "").EventType()).To(Equal(events.EventTypeTimesheetApproved))
		Expect(events.NewTimesheetTransitionedEvent(1, 2, 3, "REJECTED", "").EventType()).To(Equal(events.EventTypeTimesheetRejected))
	})
})
