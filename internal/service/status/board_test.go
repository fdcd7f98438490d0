package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

func TestBoard_KeepsOnlyLatestNotice(t *testing.T) {
	board := NewBoard()

	_, ok := board.Current()
	assert.False(t, ok)

	board.Report("refresh", models.NewErrorReport(models.ErrorNetworkUnavailable, "offline"))
	board.Report("submit", models.NewErrorReport(models.ErrorConflict, "Produto já cadastrado").WithStatus(409))

	notice, ok := board.Current()
	require.True(t, ok)
	assert.Equal(t, "submit", notice.Operation)
	assert.Equal(t, models.NoticeError, notice.Level)
	assert.Equal(t, "Produto já cadastrado", notice.Message)

	board.Clear()
	_, ok = board.Current()
	assert.False(t, ok)
}

func TestBoard_NetworkFailureIsWarning(t *testing.T) {
	board := NewBoard()
	board.Report("refresh", models.NewErrorReport(models.ErrorNetworkUnavailable, "offline"))

	notice, ok := board.Current()
	require.True(t, ok)
	assert.Equal(t, models.NoticeWarning, notice.Level)
}

func TestBoard_NilSafe(t *testing.T) {
	var board *Board
	board.Post(models.Notice{Message: "x"})
	board.Clear()
	_, ok := board.Current()
	assert.False(t, ok)
}
