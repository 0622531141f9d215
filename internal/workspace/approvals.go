package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type ApprovalService interface {
	PendingFor(ctx context.Context, actor domain.Actor) ([]domain.TimesheetEntry, error)
	Approve(ctx context.Context, actor domain.Actor, id int64, remarks string) (*domain.TimesheetEntry, error)
	Reject(ctx context.Context, actor domain.Actor, id int64, remarks string) (*domain.TimesheetEntry, error)
}

// Approvals is a manager's queue of entries awaiting a decision.
type Approvals struct {
	svc    ApprovalService
	guard  *client.Guard
	actor  domain.Actor
	logger *slog.Logger

	mu      sync.RWMutex
	pending []domain.TimesheetEntry
}

func NewApprovals(svc ApprovalService, guard *client.Guard, actor domain.Actor, logger *slog.Logger) *Approvals {
	return &Approvals{svc: svc, guard: guard, actor: actor, logger: logger}
}

func (w *Approvals) key() string {
	return fmt.Sprintf("approvals:%d", w.actor.ID)
}

func (w *Approvals) Refresh(ctx context.Context) ([]domain.TimesheetEntry, error) {
	ticket := w.guard.Begin(w.key())
	list, err := w.svc.PendingFor(ctx, w.actor)
	if err != nil {
		return nil, err
	}
	if !w.guard.Current(ticket) {
		return nil, ErrSuperseded
	}

	w.mu.Lock()
	w.pending = list
	w.mu.Unlock()
	return w.Pending(), nil
}

func (w *Approvals) Pending() []domain.TimesheetEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.TimesheetEntry, len(w.pending))
	copy(out, w.pending)
	return out
}

func (w *Approvals) Approve(ctx context.Context, id int64, remarks string) (*domain.TimesheetEntry, error) {
	return w.decide(id, func() (*domain.TimesheetEntry, error) {
		return w.svc.Approve(ctx, w.actor, id, remarks)
	})
}

func (w *Approvals) Reject(ctx context.Context, id int64, remarks string) (*domain.TimesheetEntry, error) {
	return w.decide(id, func() (*domain.TimesheetEntry, error) {
		return w.svc.Reject(ctx, w.actor, id, remarks)
	})
}

// decide drops the entry from the queue once the server says it is no longer
// pending, whoever decided it.
func (w *Approvals) decide(id int64, call func() (*domain.TimesheetEntry, error)) (*domain.TimesheetEntry, error) {
	entry, err := call()
	if err != nil {
		if internal.HasType(err, internal.ErrorTypeInvalidTransition) || internal.HasType(err, internal.ErrorTypeNotFound) {
			w.logger.Info("dropping entry decided elsewhere", "entry_id", id, "error", err)
			w.remove(id)
		}
		return nil, err
	}
	w.remove(id)
	return entry, nil
}

func (w *Approvals) remove(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.pending[:0]
	for _, e := range w.pending {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	w.pending = kept
}
