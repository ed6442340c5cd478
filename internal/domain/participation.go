package domain

import (
	"errors"
	"time"
)

type ParticipationStatus string

const (
	ParticipationDraft     ParticipationStatus = "Draft"
	ParticipationPending   ParticipationStatus = "Pending"
	ParticipationApproved  ParticipationStatus = "Approved"
	ParticipationRejected  ParticipationStatus = "Rejected"
	ParticipationPresent   ParticipationStatus = "Present"
	ParticipationAbsent    ParticipationStatus = "Absent"
	ParticipationCancelled ParticipationStatus = "Cancelled"
)

type ParticipationAction string

const (
	ActionSubmit      ParticipationAction = "submit"
	ActionApprove     ParticipationAction = "approve"
	ActionReject      ParticipationAction = "reject"
	ActionMarkPresent ParticipationAction = "mark_present"
	ActionMarkAbsent  ParticipationAction = "mark_absent"
	ActionCancel      ParticipationAction = "cancel"
)

var (
	// ErrInvalidState rejects a transition the current status does not permit.
	ErrInvalidState = errors.New("action is not allowed in the current state")
	// ErrActorNotAllowed rejects a transition attempted by the wrong role.
	ErrActorNotAllowed = errors.New("actor role is not allowed to perform this action")
	// ErrUnknownAction rejects an action outside the transition table.
	ErrUnknownAction = errors.New("unknown action")
)

// IneligibleError rejects a registration attempt with a human-readable
// reason (activity not open, window closed, already registered, capacity
// full). Never retried automatically.
type IneligibleError struct {
	Reason string
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

// Participation is one student's enrollment record in one activity. It is
// never hard-deleted; cancellation is a status transition.
type Participation struct {
	ID            uint                `json:"id"`
	ActivityID    uint                `json:"activity_id"`
	StudentID     uint                `json:"student_id"`
	Status        ParticipationStatus `json:"status"`
	TrainingPoint int                 `json:"training_point"`
	Note          string              `json:"note"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Active participations count against activity capacity and block a second
// registration for the same activity.
func (p *Participation) Active() bool {
	return p.Status != ParticipationRejected && p.Status != ParticipationCancelled
}

type participationTransition struct {
	from []ParticipationStatus
	to   ParticipationStatus
	role string
}

var participationTransitions = map[ParticipationAction]participationTransition{
	ActionSubmit: {
		from: []ParticipationStatus{ParticipationDraft},
		to:   ParticipationPending,
		role: RoleStudent,
	},
	ActionApprove: {
		from: []ParticipationStatus{ParticipationPending},
		to:   ParticipationApproved,
		role: RoleOrganizer,
	},
	ActionReject: {
		from: []ParticipationStatus{ParticipationPending},
		to:   ParticipationRejected,
		role: RoleOrganizer,
	},
	ActionMarkPresent: {
		from: []ParticipationStatus{ParticipationApproved},
		to:   ParticipationPresent,
		role: RoleOrganizer,
	},
	ActionMarkAbsent: {
		from: []ParticipationStatus{ParticipationApproved},
		to:   ParticipationAbsent,
		role: RoleOrganizer,
	},
	ActionCancel: {
		from: []ParticipationStatus{ParticipationDraft, ParticipationPending},
		to:   ParticipationCancelled,
		role: RoleStudent,
	},
}

// NextParticipationStatus is the single guarded-transition function for the
// participation lifecycle. It returns the status the action leads to, or
// ErrActorNotAllowed / ErrInvalidState when the guard fails. Attendance
// actions carry one more guard the caller owns: the parent activity must be
// Completed, which this function cannot see.
func NextParticipationStatus(current ParticipationStatus, action ParticipationAction, actorRole string) (ParticipationStatus, error) {
	transition, ok := participationTransitions[action]
	if !ok {
		return "", ErrUnknownAction
	}

	if transition.role != actorRole {
		return "", ErrActorNotAllowed
	}

	for _, from := range transition.from {
		if from == current {
			return transition.to, nil
		}
	}

	return "", ErrInvalidState
}
