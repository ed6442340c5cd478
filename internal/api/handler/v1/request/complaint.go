package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"student-activity-api/internal/domain"
)

type CreateComplaintRequest struct {
	ParticipationID uint   `json:"participation_id"`
	Description     string `json:"description"`
}

func (req *CreateComplaintRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ParticipationID, validation.Required),
		validation.Field(&req.Description, validation.Required, validation.Length(5, 2000)),
	)
}

type ResolveComplaintRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
	NewPoint *int   `json:"new_point"`
}

func (req *ResolveComplaintRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.ComplaintApproved),
			string(domain.ComplaintRejected),
		)),
		validation.Field(&req.Response, validation.Required, validation.Length(2, 2000)),
	)
	if err != nil {
		return err
	}

	if req.NewPoint != nil {
		return validation.Validate(*req.NewPoint,
			validation.Min(domain.MinTrainingPoint),
			validation.Max(domain.MaxTrainingPoint),
		)
	}

	return nil
}
