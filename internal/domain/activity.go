package domain

import "time"

type ActivityStatus string

const (
	ActivityDraft     ActivityStatus = "Draft"
	ActivityPublished ActivityStatus = "Published"
	ActivityCompleted ActivityStatus = "Completed"
)

// Activity is an organizer-run event students can register for.
// Capacity is nil for unlimited activities.
type Activity struct {
	ID                uint             `json:"id"`
	OrganizerID       uint             `json:"organizer_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Location          string           `json:"location"`
	Category          ActivityCategory `json:"category"`
	Capacity          *int             `json:"capacity"`
	RegistrationStart time.Time        `json:"registration_start"`
	RegistrationEnd   time.Time        `json:"registration_end"`
	EventStart        time.Time        `json:"event_start"`
	EventEnd          time.Time        `json:"event_end"`
	Status            ActivityStatus   `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Eligibility is the read-only result of the registration eligibility check.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// RegistrationOpen reports whether a student may still begin registration.
// The window is only enforced here, at registration time; existing drafts
// are not expired when it closes.
func (a *Activity) RegistrationOpen(now time.Time) bool {
	return a.Status == ActivityPublished && !now.After(a.RegistrationEnd)
}
