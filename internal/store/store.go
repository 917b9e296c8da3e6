// Package store keeps an in-memory snapshot of the certificates table and
// mediates every change to it.
//
// The snapshot is never patched locally: each successful mutation is
// followed by a full reload, so what a view renders is always the table as
// the last successful Select returned it.
package store

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/notify"
	"github.com/Zachkp/portfolio/internal/table"
)

// Outcome tags the result of a store operation.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	// Declined means the user did not confirm and no call was made.
	Declined
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Declined:
		return "declined"
	default:
		return "unknown"
	}
}

// Result is what every operation returns instead of an error. Err holds
// the cause of a Failed outcome; it has already been logged and notified.
type Result struct {
	Outcome Outcome
	Err     error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Outcome == Succeeded }

// Confirmer asks the user a yes/no question before a destructive call.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

var (
	AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	NeverConfirm  Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this certificate?"

// Messages surfaced through the notification sink.
const (
	msgFetchFailed  = "Failed to fetch certificates"
	msgSaveFailed   = "Failed to save certificate"
	msgDeleteFailed = "Failed to delete certificate"
	msgAdded        = "Certificate added successfully"
	msgUpdated      = "Certificate updated successfully"
	msgDeleted      = "Certificate deleted successfully"
)

// Config wires a Store to its collaborators.
type Config struct {
	Table   table.Table
	Sink    notify.Sink
	Logger  *slog.Logger
	Metrics *Metrics
	// QuietLoad keeps load failures out of the sink; they are still logged.
	// The public listing uses it.
	QuietLoad bool
}

// Store owns one snapshot of the certificates table. It is safe for
// concurrent use; table calls are made without holding the lock.
type Store struct {
	table     table.Table
	sink      notify.Sink
	logger    *slog.Logger
	metrics   *Metrics
	quietLoad bool

	mu          sync.Mutex
	records     []certificate.Record
	loaded      bool
	pending     int
	issued      uint64
	appliedLoad uint64
}

// New creates a store with an empty snapshot. Nothing is fetched until
// Load is called.
func New(cfg Config) *Store {
	s := &Store{
		table:     cfg.Table,
		sink:      cfg.Sink,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		quietLoad: cfg.QuietLoad,
		records:   []certificate.Record{},
	}
	if s.sink == nil {
		s.sink = notify.Discard
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s
}

// Load replaces the snapshot with the current table contents. On failure
// the previous snapshot is kept.
func (s *Store) Load(ctx context.Context) Result {
	s.mu.Lock()
	s.pending++
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	records, err := s.table.Select(ctx)

	s.mu.Lock()
	s.pending--
	if err == nil {
		s.replace(seq, records)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Error fetching certificates", "error", err)
		if !s.quietLoad {
			s.fail(msgFetchFailed)
		}
		s.metrics.observe(opLoad, Failed)
		return Result{Outcome: Failed, Err: err}
	}
	s.metrics.observe(opLoad, Succeeded)
	return Result{Outcome: Succeeded}
}

// replace swaps in a fresh snapshot unless a later load already landed.
// Callers hold s.mu.
func (s *Store) replace(seq uint64, records []certificate.Record) {
	if seq < s.appliedLoad {
		return
	}
	s.appliedLoad = seq
	if records == nil {
		records = []certificate.Record{}
	}
	s.records = records
	s.loaded = true
	s.metrics.snapshot(len(records))
}

// Create inserts a new row and reloads. Identical fields create identical
// but distinct rows.
func (s *Store) Create(ctx context.Context, fields certificate.Fields) Result {
	rec, err := s.table.Insert(ctx, fields)
	if err != nil {
		s.logger.Error("Error saving certificate", "error", err)
		s.fail(msgSaveFailed)
		s.metrics.observe(opCreate, Failed)
		return Result{Outcome: Failed, Err: err}
	}
	s.logger.Info("Certificate created", "id", rec.ID)
	s.succeed(msgAdded)
	s.metrics.observe(opCreate, Succeeded)
	s.Load(ctx)
	return Result{Outcome: Succeeded}
}

// Update replaces every mutable field of the row with the given id and
// reloads.
func (s *Store) Update(ctx context.Context, id string, fields certificate.Fields) Result {
	if err := s.table.Update(ctx, id, fields); err != nil {
		s.logger.Error("Error saving certificate", "id", id, "error", err)
		s.fail(msgSaveFailed)
		s.metrics.observe(opUpdate, Failed)
		return Result{Outcome: Failed, Err: err}
	}
	s.logger.Info("Certificate updated", "id", id)
	s.succeed(msgUpdated)
	s.metrics.observe(opUpdate, Succeeded)
	s.Load(ctx)
	return Result{Outcome: Succeeded}
}

// Delete asks c for confirmation and, if given, removes the row and
// reloads. A declined delete makes no table call.
func (s *Store) Delete(ctx context.Context, id string, c Confirmer) Result {
	if c == nil || !c.Confirm(ctx, DeletePrompt) {
		s.metrics.observe(opDelete, Declined)
		return Result{Outcome: Declined}
	}
	if err := s.table.Delete(ctx, id); err != nil {
		s.logger.Error("Error deleting certificate", "id", id, "error", err)
		s.fail(msgDeleteFailed)
		s.metrics.observe(opDelete, Failed)
		return Result{Outcome: Failed, Err: err}
	}
	s.logger.Info("Certificate deleted", "id", id)
	s.succeed(msgDeleted)
	s.metrics.observe(opDelete, Succeeded)
	s.Load(ctx)
	return Result{Outcome: Succeeded}
}

// Snapshot returns a copy of the records from the last successful load,
// newest first.
func (s *Store) Snapshot() []certificate.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]certificate.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Find returns the snapshot record with the given id.
func (s *Store) Find(id string) (certificate.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return certificate.Record{}, false
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Loaded reports whether any load has succeeded yet.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Store) succeed(description string) {
	s.sink.Notify(notify.Notification{
		Title:       "Success",
		Description: description,
		Severity:    notify.SeverityInfo,
	})
}

func (s *Store) fail(description string) {
	s.sink.Notify(notify.Notification{
		Title:       "Error",
		Description: description,
		Severity:    notify.SeverityDestructive,
	})
}
