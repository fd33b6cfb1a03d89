package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTransitionNotAllowed возвращается при переходе, которого нет в таблице переходов
	ErrTransitionNotAllowed = errors.New("domain: transition not allowed")

	// ErrNoShowTooEarly возвращается при попытке отметить неявку до начала брони
	ErrNoShowTooEarly = errors.New("domain: no-show before booked start time")

	// ErrRescheduleOnly возвращается при прямом переходе в RESCHEDULED
	ErrRescheduleOnly = errors.New("domain: RESCHEDULED is reachable only via reschedule")
)

var transitions = map[BookingState][]BookingState{
	StateDraft:      {StatePending},
	StatePending:    {StateConfirmed, StateCancelled},
	StateConfirmed:  {StateInProgress, StateCancelled, StateNoShow, StateRescheduled},
	StateInProgress: {StateCompleted, StateNoShow},
}

// IsValid returns true for a known state
func (s BookingState) IsValid() bool {
	switch s {
	case StateDraft, StatePending, StateConfirmed, StateInProgress,
		StateCompleted, StateCancelled, StateNoShow, StateRescheduled:
		return true
	}
	return false
}

// OccupiesTime returns true if a booking in this state blocks its hours
func (s BookingState) OccupiesTime() bool {
	for _, st := range OccupyingStates {
		if s == st {
			return true
		}
	}
	return false
}

// ReleasesTime returns true if entering this state frees the booked hours
func (s BookingState) ReleasesTime() bool {
	for _, st := range ReleasingStates {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the state has no outgoing transitions
func (s BookingState) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// AllowedTargets returns the states reachable from s in one step
func (s BookingState) AllowedTargets() []BookingState {
	targets := transitions[s]
	out := make([]BookingState, len(targets))
	copy(out, targets)
	return out
}

// CanTransition checks the transition table only
func CanTransition(from, to BookingState) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a transition of b to target at moment now.
// viaReschedule must be true only for the reschedule operation.
func ValidateTransition(b *Booking, target BookingState, now time.Time, loc *time.Location, viaReschedule bool) error {
	if !CanTransition(b.State, target) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, b.State, target)
	}

	if target == StateRescheduled && !viaReschedule {
		return fmt.Errorf("%w: booking id=%d", ErrRescheduleOnly, b.ID)
	}

	if target == StateNoShow && now.Before(b.StartsAt(loc)) {
		return fmt.Errorf("%w: booking id=%d starts at %s", ErrNoShowTooEarly, b.ID, b.StartsAt(loc).Format(time.RFC3339))
	}

	return nil
}

// IsTransitionError returns true for any lifecycle rule violation
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrTransitionNotAllowed) ||
		errors.Is(err, ErrNoShowTooEarly) ||
		errors.Is(err, ErrRescheduleOnly)
}

// ErrNotDraft возвращается при инициализации уже сохранённого бронирования
var ErrNotDraft = errors.New("domain: booking is not a draft")

// Initialize moves a draft into PENDING and returns the first history entry
func Initialize(b *Booking, actor Actor, at time.Time) (StateTransition, error) {
	if b.State != "" && b.State != StateDraft {
		return StateTransition{}, fmt.Errorf("%w: state %s", ErrNotDraft, b.State)
	}
	b.State = StatePending
	return StateTransition{
		BookingID: b.ID,
		From:      StateDraft,
		To:        StatePending,
		Actor:     actor,
		ChangedAt: at,
	}, nil
}
