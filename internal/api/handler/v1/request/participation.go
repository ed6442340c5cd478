package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"student-activity-api/internal/domain"
)

type CreateParticipationRequest struct {
	ActivityID uint   `json:"activity_id"`
	Note       string `json:"note"`
}

func (req *CreateParticipationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ActivityID, validation.Required),
		validation.Field(&req.Note, validation.Length(0, 500)),
	)
}

type BulkReviewRequest struct {
	ParticipationIDs []uint `json:"participation_ids"`
	Action           string `json:"action"`
}

func (req *BulkReviewRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ParticipationIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&req.Action, validation.Required, validation.In(
			string(domain.ActionApprove),
			string(domain.ActionReject),
		)),
	)
}

type AttendanceRequest struct {
	ParticipationIDs []uint `json:"participation_ids"`
	Action           string `json:"action"`
}

func (req *AttendanceRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ParticipationIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&req.Action, validation.Required, validation.In(
			string(domain.ActionMarkPresent),
			string(domain.ActionMarkAbsent),
		)),
	)
}
