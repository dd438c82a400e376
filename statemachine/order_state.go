package statemachine

import (
	"fmt"
	"strings"

	"smartpyme-api/models"
)

// Transition is one allowed edge of the order lifecycle
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// transitions is the authoritative state machine definition. There are no back-edges.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusReady, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusReady, models.StatusCancelled},
	models.StatusReady:      {models.StatusCompleted},
	models.StatusShipped:    {models.StatusCompleted},
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
}

// Build a lookup set for O(1) validation
var transitionSet = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for from, nexts := range transitions {
		for _, to := range nexts {
			m[Transition{From: from, To: to}] = true
		}
	}
	return m
}()

// TransitionError names the edge that was rejected
type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s → %s is not allowed. Valid transitions from %s are: %s",
		e.From, e.To, e.From, describeValidFrom(e.From))
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := transitions[status]
	out := make([]models.OrderStatus, len(nexts))
	copy(out, nexts)
	return out
}

// CanTransition checks whether an order may move from one state to another
func CanTransition(from, to models.OrderStatus) error {
	if transitionSet[Transition{From: from, To: to}] {
		return nil
	}
	return &TransitionError{From: from, To: to}
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.OrderStatus) bool {
	return len(transitions[status]) == 0
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation, in lifecycle order
func GetAllTransitions() []Transition {
	var all []Transition
	for _, from := range models.AllStatuses {
		for _, to := range transitions[from] {
			all = append(all, Transition{From: from, To: to})
		}
	}
	return all
}
