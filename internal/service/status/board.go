package status

import (
	"sync"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

// Board holds the single active notice. Posting replaces whatever was shown before.
type Board struct {
	mu     sync.RWMutex
	notice *models.Notice
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Post makes notice the active one.
func (b *Board) Post(notice models.Notice) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = &notice
}

// Report posts a gateway failure for operation. Network failures are warnings since
// the previous data stays visible; everything else is an error.
func (b *Board) Report(operation string, report *models.ErrorReport) {
	if report == nil {
		return
	}
	level := models.NoticeError
	if report.Kind == models.ErrorNetworkUnavailable {
		level = models.NoticeWarning
	}
	b.Post(models.Notice{Level: level, Operation: operation, Message: report.Message, Report: report})
}

// Clear removes the active notice.
func (b *Board) Clear() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = nil
}

// Current returns the active notice, if any.
func (b *Board) Current() (models.Notice, bool) {
	if b == nil {
		return models.Notice{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.notice == nil {
		return models.Notice{}, false
	}
	return *b.notice, true
}
