package domain

import "time"

type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "Pending"
	ComplaintApproved ComplaintStatus = "Approved"
	ComplaintRejected ComplaintStatus = "Rejected"
)

// Complaint is a student dispute over an awarded training point. The
// resolving response text is the audit trail for any point override; there
// is no separate point-history table.
type Complaint struct {
	ID              uint            `json:"id"`
	ParticipationID uint            `json:"participation_id"`
	Description     string          `json:"description"`
	Status          ComplaintStatus `json:"status"`
	Response        string          `json:"response"`
	NewPoint        *int            `json:"new_point,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (c *Complaint) Resolved() bool {
	return c.Status != ComplaintPending
}

// NextComplaintStatus guards the complaint workflow: Pending may move to
// Approved or Rejected, both terminal, and only an organizer may resolve.
func NextComplaintStatus(current ComplaintStatus, target ComplaintStatus, actorRole string) (ComplaintStatus, error) {
	if target != ComplaintApproved && target != ComplaintRejected {
		return "", ErrUnknownAction
	}

	if actorRole != RoleOrganizer {
		return "", ErrActorNotAllowed
	}

	if current != ComplaintPending {
		return "", ErrInvalidState
	}

	return target, nil
}
