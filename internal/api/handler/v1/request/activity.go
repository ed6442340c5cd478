package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"student-activity-api/internal/domain"
)

var (
	errRegistrationWindowInverted = errors.New("registration_end must be after registration_start")
	errEventWindowInverted        = errors.New("event_end must be after event_start")
	errRegistrationAfterEvent     = errors.New("registration_end must not be after event_start")
	errInvalidCapacity            = errors.New("capacity must be a positive number")
)

type CreateActivityRequest struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	Category          string    `json:"category"`
	Capacity          *int      `json:"capacity"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`
	EventStart        time.Time `json:"event_start"`
	EventEnd          time.Time `json:"event_end"`
}

func (req *CreateActivityRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Category, validation.Required, validation.In(
			string(domain.CategoryAcademic),
			string(domain.CategoryVolunteer),
			string(domain.CategorySports),
			string(domain.CategoryArts),
			string(domain.CategoryOther),
		)),
		validation.Field(&req.RegistrationStart, validation.Required),
		validation.Field(&req.RegistrationEnd, validation.Required),
		validation.Field(&req.EventStart, validation.Required),
		validation.Field(&req.EventEnd, validation.Required),
	)
	if err != nil {
		return err
	}

	if req.Capacity != nil && *req.Capacity <= 0 {
		return errInvalidCapacity
	}

	if !req.RegistrationEnd.After(req.RegistrationStart) {
		return errRegistrationWindowInverted
	}
	if !req.EventEnd.After(req.EventStart) {
		return errEventWindowInverted
	}
	if req.RegistrationEnd.After(req.EventStart) {
		return errRegistrationAfterEvent
	}

	return nil
}

func (req *CreateActivityRequest) ToDomain() domain.Activity {
	return domain.Activity{
		Name:              req.Name,
		Description:       req.Description,
		Location:          req.Location,
		Category:          domain.ActivityCategory(req.Category),
		Capacity:          req.Capacity,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		EventStart:        req.EventStart,
		EventEnd:          req.EventEnd,
	}
}
