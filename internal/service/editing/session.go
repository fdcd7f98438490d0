package editing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/service/status"
)

var (
	// ErrSubmitInFlight is returned while a previous submission has not finished.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrNotEditing is returned when submitting without an active draft.
	ErrNotEditing = errors.New("no edit in progress")
	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("edit session closed")
)

// Writer persists a draft. Implementations reload their snapshot after a
// successful write.
type Writer interface {
	Create(ctx context.Context, fields models.RecordFields) (models.Record, error)
	Update(ctx context.Context, id string, fields models.RecordFields) (models.Record, error)
}

// Session tracks the in-progress create or edit draft and its submission.
type Session struct {
	writer Writer
	board  *status.Board
	logger *zap.Logger

	mu         sync.Mutex
	state      models.EditState
	targetID   string
	draft      models.Draft
	submitting bool
	closed     bool
	// attempt changes whenever the draft is replaced, so a late result can tell
	// it no longer belongs to the current draft.
	attempt uint64
}

// NewSession creates an idle edit session. board may be nil.
func NewSession(writer Writer, board *status.Board, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{writer: writer, board: board, logger: logger, state: models.EditIdle}
}

// BeginCreate starts a blank draft for a new record.
func (s *Session) BeginCreate() error {
	return s.begin("", models.Draft{})
}

// BeginEdit starts a draft populated from an existing record.
func (s *Session) BeginEdit(record models.Record) error {
	if record.ID == "" {
		return models.NewErrorReport(models.ErrorValidation, "record has no id")
	}
	return s.begin(record.ID, models.DraftFromRecord(record))
}

func (s *Session) begin(targetID string, draft models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.submitting {
		return ErrSubmitInFlight
	}

	s.state = models.EditEditing
	s.targetID = targetID
	s.draft = draft
	s.attempt++
	s.board.Clear()
	return nil
}

// SetField parses raw into the named draft field. Editing while idle starts a
// new create draft. An unparsable value leaves the field as it was.
func (s *Session) SetField(field models.DraftField, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	if s.state == models.EditIdle {
		s.state = models.EditEditing
		s.targetID = ""
		s.draft = models.Draft{}
		s.attempt++
	}

	value := strings.TrimSpace(raw)
	switch field {
	case models.FieldName:
		s.draft.Name = &value
	case models.FieldCategory:
		s.draft.Category = &value
	case models.FieldUnitPrice:
		price, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
		if err != nil || price < 0 {
			return models.NewErrorReport(models.ErrorValidation, fmt.Sprintf("price must be a non-negative number, got %q", raw))
		}
		s.draft.UnitPrice = &price
	case models.FieldQuantity:
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 0 {
			return models.NewErrorReport(models.ErrorValidation, fmt.Sprintf("quantity must be a non-negative whole number, got %q", raw))
		}
		s.draft.Quantity = &qty
	default:
		return models.NewErrorReport(models.ErrorValidation, fmt.Sprintf("unknown field %q", field))
	}

	s.board.Clear()
	return nil
}

// Cancel drops the draft and returns to idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.board.Clear()
}

// Submit validates the draft and writes it: an update when editing an existing
// record, a create otherwise. On success the session returns to idle; on failure
// it stays in editing with the draft untouched and the report is returned.
func (s *Session) Submit(ctx context.Context) (models.Record, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Record{}, ErrClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return models.Record{}, ErrSubmitInFlight
	}
	if s.state != models.EditEditing {
		s.mu.Unlock()
		return models.Record{}, ErrNotEditing
	}
	if report := validateDraft(s.draft); report != nil {
		s.board.Report("submit", report)
		s.mu.Unlock()
		return models.Record{}, report
	}

	s.submitting = true
	attempt := s.attempt
	targetID := s.targetID
	fields := s.draft.Fields()
	s.board.Clear()
	s.mu.Unlock()

	var (
		saved models.Record
		err   error
	)
	if targetID != "" {
		saved, err = s.writer.Update(ctx, targetID, fields)
	} else {
		saved, err = s.writer.Create(ctx, fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	if s.closed || s.attempt != attempt {
		s.logger.Debug("discarding submit result for a replaced draft")
		return saved, err
	}

	if err != nil {
		report := models.AsErrorReport(err)
		s.board.Report("submit", report)
		s.logger.Info("submit failed, keeping draft", zap.String("kind", string(report.Kind)))
		return models.Record{}, report
	}

	s.reset()
	return saved, nil
}

func (s *Session) reset() {
	s.state = models.EditIdle
	s.targetID = ""
	s.draft = models.Draft{}
	s.attempt++
}

// Close tears the session down; results still in flight are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.reset()
}

// State returns the lifecycle state.
func (s *Session) State() models.EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TargetID is the id of the record being edited, empty for a create.
func (s *Session) TargetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetID
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Submitting reports whether a submission is in flight; the submit action should
// be disabled while it is.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}
