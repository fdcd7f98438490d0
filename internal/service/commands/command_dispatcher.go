package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/service/editing"
	"github.com/mamadbah2/meuestoque/internal/service/records"
	"github.com/mamadbah2/meuestoque/internal/service/reporting"
	"github.com/mamadbah2/meuestoque/internal/service/session"
	"github.com/mamadbah2/meuestoque/internal/service/status"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const logoutRequested = "logged out by user"

var fieldAliases = map[string]models.DraftField{
	"name":       models.FieldName,
	"nome":       models.FieldName,
	"price":      models.FieldUnitPrice,
	"preco":      models.FieldUnitPrice,
	"preço":      models.FieldUnitPrice,
	"category":   models.FieldCategory,
	"categoria":  models.FieldCategory,
	"quantity":   models.FieldQuantity,
	"qty":        models.FieldQuantity,
	"quantidade": models.FieldQuantity,
}

const helpText = `Commands:
  login <login> <password>            start a session
  register <login> <password> [role]  create a user
  logout                              end the session
  list [text] | search <text>         records grouped by category
  stats                               stock summary
  refresh                             reload records from the server
  new | edit <id>                     start a draft
  set <field> <value>                 fields: name, price, category, quantity
  submit | cancel                     save or drop the draft
  delete <id> then confirm            remove a record
  status                              session, draft and last message`

// Dispatcher executes parsed text intents against the core services.
type Dispatcher interface {
	Handle(ctx context.Context, cmd models.Command) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	session *session.Manager
	store   *records.Store
	editor  *editing.Session
	board   *status.Board
	logger  *zap.Logger

	mu            sync.Mutex
	pendingDelete *models.Record
}

// NewService constructs a command dispatcher.
func NewService(sess *session.Manager, store *records.Store, editor *editing.Session, board *status.Board, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		session: sess,
		store:   store,
		editor:  editor,
		board:   board,
		logger:  logger,
	}
}

// Handle runs cmd and returns the text to show the user.
func (s *Service) Handle(ctx context.Context, cmd models.Command) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.Int("args", len(cmd.Args)))

	switch cmd.Type {
	case models.CommandHelp:
		return helpText, nil
	case models.CommandLogin:
		return s.login(ctx, cmd)
	case models.CommandRegister:
		return s.register(ctx, cmd)
	case models.CommandLogout:
		s.disarmDelete()
		s.editor.Cancel()
		s.session.Logout(logoutRequested)
		return "Logged out.", nil
	case models.CommandStatus:
		return s.status(), nil
	}

	if err := s.requireSession(); err != nil {
		return "", err
	}

	switch cmd.Type {
	case models.CommandRefresh:
		if err := s.store.Refresh(ctx); err != nil {
			return "", err
		}
		return fmt.Sprintf("Loaded %d records.", len(s.store.Snapshot())), nil
	case models.CommandList:
		return s.list(ctx, strings.Join(cmd.Args, " "))
	case models.CommandSearch:
		if len(cmd.Args) == 0 {
			return "", ErrInvalidArguments
		}
		return s.list(ctx, strings.Join(cmd.Args, " "))
	case models.CommandStats:
		if err := s.ensureLoaded(ctx); err != nil {
			return "", err
		}
		return reporting.Summary(s.store.Aggregates()), nil
	case models.CommandNew:
		if err := s.editor.BeginCreate(); err != nil {
			return "", err
		}
		return "New record draft started. Use set <field> <value>, then submit.", nil
	case models.CommandEdit:
		return s.edit(cmd)
	case models.CommandSet:
		return s.set(cmd)
	case models.CommandSubmit:
		return s.submit(ctx)
	case models.CommandCancel:
		s.disarmDelete()
		s.editor.Cancel()
		return "Draft discarded.", nil
	case models.CommandDelete:
		return s.armDelete(cmd)
	case models.CommandConfirm:
		return s.confirmDelete(ctx)
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) login(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) != 2 {
		return "", ErrInvalidArguments
	}
	if _, err := s.session.Login(ctx, models.Credentials{Login: cmd.Args[0], Password: cmd.Args[1]}); err != nil {
		return "", err
	}

	if err := s.store.Refresh(ctx); err != nil {
		// The session is valid even if the first load failed; the board keeps the reason.
		return "Logged in, but records could not be loaded.", nil
	}
	return fmt.Sprintf("Logged in. %d records loaded.", len(s.store.Snapshot())), nil
}

func (s *Service) register(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 || len(cmd.Args) > 3 {
		return "", ErrInvalidArguments
	}
	reg := models.Registration{Login: cmd.Args[0], Password: cmd.Args[1], Role: "USER"}
	if len(cmd.Args) == 3 {
		reg.Role = strings.ToUpper(cmd.Args[2])
	}
	if err := s.session.Register(ctx, reg); err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s registered. You can log in now.", reg.Login), nil
}

func (s *Service) requireSession() error {
	if s.session.Session().Authenticated() {
		return nil
	}
	message := "log in first"
	if reason := s.session.LogoutReason(); reason != "" {
		message = fmt.Sprintf("session ended (%s); log in again", reason)
	}
	return models.NewErrorReport(models.ErrorUnauthorized, message)
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.store.Loaded() {
		return nil
	}
	return s.store.Refresh(ctx)
}

func (s *Service) list(ctx context.Context, text string) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}

	groups := s.store.Grouped(text)
	if len(groups) == 0 {
		if strings.TrimSpace(text) != "" {
			return fmt.Sprintf("No records match %q.", text), nil
		}
		return "No records yet.", nil
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d)", g.Category, len(g.Records))
		for _, r := range g.Records {
			fmt.Fprintf(&b, "\n  #%s %s: %d x %.2f", r.ID, r.Name, r.Quantity, r.UnitPrice)
			if r.Quantity < reporting.LowStockThreshold {
				b.WriteString(" [low]")
			}
		}
	}
	return b.String(), nil
}

func (s *Service) edit(cmd models.Command) (string, error) {
	if len(cmd.Args) != 1 {
		return "", ErrInvalidArguments
	}
	record, ok := s.store.Find(cmd.Args[0])
	if !ok {
		return "", models.NewErrorReport(models.ErrorValidation, fmt.Sprintf("no record with id %s", cmd.Args[0]))
	}
	if err := s.editor.BeginEdit(record); err != nil {
		return "", err
	}
	return fmt.Sprintf("Editing #%s %s.", record.ID, record.Name), nil
}

func (s *Service) set(cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", ErrInvalidArguments
	}
	field, ok := fieldAliases[strings.ToLower(cmd.Args[0])]
	if !ok {
		return "", ErrInvalidArguments
	}
	value := strings.Join(cmd.Args[1:], " ")
	if err := s.editor.SetField(field, value); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s set to %s.", field, value), nil
}

func (s *Service) submit(ctx context.Context) (string, error) {
	saved, err := s.editor.Submit(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved #%s %s.", saved.ID, saved.Name), nil
}

func (s *Service) armDelete(cmd models.Command) (string, error) {
	if len(cmd.Args) != 1 {
		return "", ErrInvalidArguments
	}
	record, ok := s.store.Find(cmd.Args[0])
	if !ok {
		return "", models.NewErrorReport(models.ErrorValidation, fmt.Sprintf("no record with id %s", cmd.Args[0]))
	}

	s.mu.Lock()
	s.pendingDelete = &record
	s.mu.Unlock()
	return fmt.Sprintf("Delete #%s %s? Type confirm to proceed or cancel to keep it.", record.ID, record.Name), nil
}

func (s *Service) confirmDelete(ctx context.Context) (string, error) {
	s.mu.Lock()
	target := s.pendingDelete
	s.pendingDelete = nil
	s.mu.Unlock()

	if target == nil {
		return "", ErrInvalidArguments
	}
	if err := s.store.Remove(ctx, target.ID); err != nil {
		s.board.Report("delete", models.AsErrorReport(err))
		return "", err
	}
	return fmt.Sprintf("Deleted #%s %s.", target.ID, target.Name), nil
}

func (s *Service) disarmDelete() {
	s.mu.Lock()
	s.pendingDelete = nil
	s.mu.Unlock()
}

func (s *Service) status() string {
	var b strings.Builder
	if s.session.Session().Authenticated() {
		b.WriteString("Session: logged in")
	} else {
		b.WriteString("Session: logged out")
		if reason := s.session.LogoutReason(); reason != "" {
			fmt.Fprintf(&b, " (%s)", reason)
		}
	}

	switch {
	case s.editor.Submitting():
		b.WriteString("\nDraft: saving...")
	case s.editor.State() == models.EditEditing:
		b.WriteString("\nDraft: " + describeDraft(s.editor.TargetID(), s.editor.Draft()))
	default:
		b.WriteString("\nDraft: none")
	}

	if notice, ok := s.board.Current(); ok {
		fmt.Fprintf(&b, "\n%s: %s", strings.ToUpper(string(notice.Level)), notice.Message)
	}
	return b.String()
}

func describeDraft(targetID string, d models.Draft) string {
	mode := "new record"
	if targetID != "" {
		mode = "editing #" + targetID
	}
	parts := []string{
		"name=" + optional(d.Name, func(v string) string { return v }),
		"price=" + optional(d.UnitPrice, func(v float64) string { return fmt.Sprintf("%.2f", v) }),
		"category=" + optional(d.Category, func(v string) string { return v }),
		"quantity=" + optional(d.Quantity, func(v int) string { return fmt.Sprint(v) }),
	}
	return mode + " (" + strings.Join(parts, ", ") + ")"
}

func optional[T any](v *T, format func(T) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}
