package statemachine

import (
	"errors"
	"testing"

	"smartpyme-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_Table(t *testing.T) {
	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.StatusPending:    {models.StatusConfirmed, models.StatusReady, models.StatusCancelled},
		models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusReady, models.StatusCancelled},
		models.StatusReady:      {models.StatusCompleted},
		models.StatusShipped:    {models.StatusCompleted},
	}

	for _, from := range models.AllStatuses {
		for _, to := range models.AllStatuses {
			want := false
			for _, n := range allowed[from] {
				if n == to {
					want = true
				}
			}
			err := CanTransition(from, to)
			if want {
				assert.NoError(t, err, "%s → %s should be allowed", from, to)
			} else {
				assert.Error(t, err, "%s → %s should be rejected", from, to)
			}
		}
	}
}

func TestCanTransition_ErrorNamesEdge(t *testing.T) {
	err := CanTransition(models.StatusConfirmed, models.StatusShipped)
	require.Error(t, err)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, models.StatusConfirmed, te.From)
	assert.Equal(t, models.StatusShipped, te.To)
	assert.Contains(t, err.Error(), "confirmed → shipped")
	assert.Contains(t, err.Error(), "in_progress, cancelled")
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusReady))
	assert.Contains(t, CanTransition(models.StatusCompleted, models.StatusPending).Error(), "none (terminal state)")
}

func TestNoTransitionReturnsToPending(t *testing.T) {
	for _, tr := range GetAllTransitions() {
		assert.NotEqual(t, models.StatusPending, tr.To)
	}
}

func TestValidTransitionsFrom_ReturnsCopy(t *testing.T) {
	nexts := ValidTransitionsFrom(models.StatusPending)
	nexts[0] = models.StatusCompleted
	assert.Equal(t, models.StatusConfirmed, ValidTransitionsFrom(models.StatusPending)[0])
}
