// Package workspace holds the command line client's view of remote state. It
// is a read-through cache: every mutation goes to the server first and the
// cache is replaced from the server's answer, never written back.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// ErrSuperseded is returned when a newer request for the same view, or
// closing the view, made a completed response irrelevant.
var ErrSuperseded = errors.New("workspace: response superseded")

type TimesheetService interface {
	Create(ctx context.Context, actor domain.Actor, dto timesheet.EntryDTO) (*domain.TimesheetEntry, error)
	Update(ctx context.Context, actor domain.Actor, id int64, patch timesheet.PatchDTO) (*domain.TimesheetEntry, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
	ListForCurrentUser(ctx context.Context, actor domain.Actor) ([]domain.TimesheetEntry, error)
}

type Timesheets struct {
	svc    TimesheetService
	guard  *client.Guard
	actor  domain.Actor
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[int64]domain.TimesheetEntry
	loaded  bool
}

func NewTimesheets(svc TimesheetService, guard *client.Guard, actor domain.Actor, logger *slog.Logger) *Timesheets {
	return &Timesheets{
		svc:     svc,
		guard:   guard,
		actor:   actor,
		logger:  logger,
		entries: make(map[int64]domain.TimesheetEntry),
	}
}

func (w *Timesheets) key() string {
	return fmt.Sprintf("timesheets:%d", w.actor.ID)
}

// Entries serves the cached list, loading it on first use.
func (w *Timesheets) Entries(ctx context.Context) ([]domain.TimesheetEntry, error) {
	w.mu.RLock()
	loaded := w.loaded
	w.mu.RUnlock()
	if !loaded {
		return w.Refresh(ctx)
	}
	return w.snapshot(), nil
}

// Refresh replaces the cache with the server's list.
func (w *Timesheets) Refresh(ctx context.Context) ([]domain.TimesheetEntry, error) {
	ticket := w.guard.Begin(w.key())
	list, err := w.svc.ListForCurrentUser(ctx, w.actor)
	if err != nil {
		return nil, err
	}
	if !w.guard.Current(ticket) {
		w.logger.Debug("discarding stale timesheet list", "user_id", w.actor.ID)
		return nil, ErrSuperseded
	}

	w.mu.Lock()
	w.entries = make(map[int64]domain.TimesheetEntry, len(list))
	for _, e := range list {
		w.entries[e.ID] = e
	}
	w.loaded = true
	w.mu.Unlock()
	return w.snapshot(), nil
}

func (w *Timesheets) Create(ctx context.Context, dto timesheet.EntryDTO) (*domain.TimesheetEntry, error) {
	created, err := w.svc.Create(ctx, w.actor, dto)
	if err != nil {
		return nil, err
	}
	w.put(*created)
	return created, nil
}

func (w *Timesheets) Update(ctx context.Context, id int64, patch timesheet.PatchDTO) (*domain.TimesheetEntry, error) {
	updated, err := w.svc.Update(ctx, w.actor, id, patch)
	if err != nil {
		w.evictIfGone(id, err)
		return nil, err
	}
	w.put(*updated)
	return updated, nil
}

func (w *Timesheets) Delete(ctx context.Context, id int64) error {
	if err := w.svc.Delete(ctx, w.actor, id); err != nil {
		w.evictIfGone(id, err)
		return err
	}
	w.mu.Lock()
	delete(w.entries, id)
	w.mu.Unlock()
	return nil
}

// Close drops the cache; responses still in flight are discarded.
func (w *Timesheets) Close() {
	w.guard.Close(w.key())
	w.mu.Lock()
	w.entries = make(map[int64]domain.TimesheetEntry)
	w.loaded = false
	w.mu.Unlock()
}

func (w *Timesheets) put(e domain.TimesheetEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded {
		w.entries[e.ID] = e
	}
}

func (w *Timesheets) evictIfGone(id int64, err error) {
	if !errors.Is(err, internal.ErrTimesheetNotFound) {
		return
	}
	w.mu.Lock()
	delete(w.entries, id)
	w.mu.Unlock()
}

// snapshot is ordered newest work date first, then by id.
func (w *Timesheets) snapshot() []domain.TimesheetEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]domain.TimesheetEntry, 0, len(w.entries))
	for _, e := range w.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WorkDate.Time.Equal(out[j].WorkDate.Time) {
			return out[i].WorkDate.Time.After(out[j].WorkDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
