package records

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/service/reporting"
	"github.com/mamadbah2/meuestoque/internal/service/status"
)

// ErrClosed is returned by operations on a store that has been torn down.
var ErrClosed = errors.New("record store closed")

// Gateway is the remote record API the store reads and writes through. A non-nil
// error is expected to carry a *models.ErrorReport.
type Gateway interface {
	List(ctx context.Context) ([]models.Record, error)
	Create(ctx context.Context, fields models.RecordFields) (models.Record, error)
	Update(ctx context.Context, id string, fields models.RecordFields) (models.Record, error)
	Remove(ctx context.Context, id string) error
}

// SessionEnder ends the session when the server rejects the credential.
type SessionEnder interface {
	Logout(reason string)
}

// Store is the last-known-good snapshot of the server's records. Mutations are
// never patched in locally: each successful write is followed by a full reload.
type Store struct {
	gateway Gateway
	session SessionEnder
	board   *status.Board
	engine  *reporting.Engine
	logger  *zap.Logger

	// opMu serializes write-then-reload sequences so a reload never overlaps a write.
	opMu sync.Mutex

	mu         sync.RWMutex
	records    []models.Record
	loaded     bool
	generation uint64
	closed     bool
	listeners  []func([]models.Record)
}

// NewStore wires a record store. session and board may be nil.
func NewStore(gateway Gateway, session SessionEnder, board *status.Board, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		gateway: gateway,
		session: session,
		board:   board,
		engine:  reporting.NewEngine(),
		logger:  logger,
	}
}

// Refresh replaces the snapshot with the server's list. On failure the previous
// snapshot stays visible, except for an unauthorized failure which clears it and
// ends the session.
func (s *Store) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.reload(ctx, "refresh")
}

// Create adds a record on the server and reloads the snapshot.
func (s *Store) Create(ctx context.Context, fields models.RecordFields) (models.Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.isClosed() {
		return models.Record{}, ErrClosed
	}

	created, err := s.gateway.Create(ctx, fields)
	if err != nil {
		return models.Record{}, s.mutationFailed("create", err)
	}

	s.logger.Info("record created", zap.String("id", created.ID), zap.String("name", created.Name))
	s.reloadAfterWrite(ctx, "create")
	return created, nil
}

// Update changes a record on the server and reloads the snapshot.
func (s *Store) Update(ctx context.Context, id string, fields models.RecordFields) (models.Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.isClosed() {
		return models.Record{}, ErrClosed
	}

	updated, err := s.gateway.Update(ctx, id, fields)
	if err != nil {
		return models.Record{}, s.mutationFailed("update", err)
	}

	s.logger.Info("record updated", zap.String("id", id))
	s.reloadAfterWrite(ctx, "update")
	return updated, nil
}

// Remove deletes a record on the server and reloads the snapshot.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.isClosed() {
		return ErrClosed
	}

	if err := s.gateway.Remove(ctx, id); err != nil {
		return s.mutationFailed("remove", err)
	}

	s.logger.Info("record removed", zap.String("id", id))
	s.reloadAfterWrite(ctx, "remove")
	return nil
}

// reloadAfterWrite runs the mandatory reload. Its failure is surfaced on the board;
// the write itself already succeeded.
func (s *Store) reloadAfterWrite(ctx context.Context, operation string) {
	if err := s.reload(ctx, operation); err != nil && !errors.Is(err, ErrClosed) {
		s.logger.Warn("reload after write failed", zap.String("operation", operation), zap.Error(err))
	}
}

func (s *Store) reload(ctx context.Context, operation string) error {
	s.mu.RLock()
	gen, closed := s.generation, s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	list, err := s.gateway.List(ctx)
	if err != nil {
		report := models.AsErrorReport(err)
		if report.Kind == models.ErrorUnauthorized {
			s.escalate(report)
		} else {
			s.logger.Warn("refresh failed, keeping previous snapshot",
				zap.String("operation", operation),
				zap.String("kind", string(report.Kind)))
		}
		if !s.isClosed() {
			s.board.Report(operation, report)
		}
		return report
	}

	if !s.apply(gen, list) {
		s.logger.Debug("discarding refresh result for a torn down snapshot", zap.String("operation", operation))
	}
	return nil
}

func (s *Store) mutationFailed(operation string, err error) error {
	report := models.AsErrorReport(err)
	if report.Kind == models.ErrorUnauthorized {
		s.escalate(report)
	}
	s.logger.Info("record write rejected",
		zap.String("operation", operation),
		zap.String("kind", string(report.Kind)),
		zap.Int("status", report.Status()))
	return report
}

func (s *Store) escalate(report *models.ErrorReport) {
	s.Clear()
	if s.session != nil {
		s.session.Logout(report.Message)
	}
}

// apply installs list as the snapshot unless the store was cleared or closed since
// gen was read. Duplicate ids keep their first occurrence.
func (s *Store) apply(gen uint64, list []models.Record) bool {
	seen := make(map[string]struct{}, len(list))
	unique := make([]models.Record, 0, len(list))
	for _, r := range list {
		if _, dup := seen[r.ID]; dup {
			s.logger.Warn("server returned duplicate record id", zap.String("id", r.ID))
			continue
		}
		seen[r.ID] = struct{}{}
		unique = append(unique, r)
	}

	s.mu.Lock()
	if s.closed || s.generation != gen {
		s.mu.Unlock()
		return false
	}
	s.records = unique
	s.loaded = true
	s.generation++
	listeners := append([]func([]models.Record){}, s.listeners...)
	s.mu.Unlock()

	s.notify(listeners, unique)
	return true
}

// Clear drops the snapshot. In-flight reloads started before the clear are discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = nil
	s.loaded = false
	s.generation++
	listeners := append([]func([]models.Record){}, s.listeners...)
	s.mu.Unlock()

	s.notify(listeners, nil)
}

// Close tears the store down. Results of calls still in flight are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
	s.listeners = nil
}

// OnChange registers fn to run with the new snapshot after every change.
func (s *Store) OnChange(fn func([]models.Record)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(listeners []func([]models.Record), records []models.Record) {
	for _, fn := range listeners {
		fn(cloneRecords(records))
	}
}

// Snapshot returns a copy of the current records.
func (s *Store) Snapshot() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// Loaded reports whether a list has been fetched since the last clear.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Find returns the record with the given id.
func (s *Store) Find(id string) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

// Aggregates recomputes the statistics of the current snapshot.
func (s *Store) Aggregates() models.AggregateSnapshot {
	s.mu.RLock()
	loaded := s.loaded
	records := cloneRecords(s.records)
	s.mu.RUnlock()

	if !loaded {
		return models.NotLoadedAggregate()
	}
	return s.engine.Compute(records)
}

// Search filters the snapshot by text without modifying it.
func (s *Store) Search(text string) []models.Record {
	return Filter(s.Snapshot(), text)
}

// Grouped returns the filtered snapshot grouped by category.
func (s *Store) Grouped(text string) []Group {
	return GroupByCategory(s.Search(text))
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func cloneRecords(records []models.Record) []models.Record {
	if records == nil {
		return nil
	}
	out := make([]models.Record, len(records))
	copy(out, records)
	return out
}
