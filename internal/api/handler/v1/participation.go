package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"student-activity-api/internal/api/handler/v1/request"
	"student-activity-api/internal/api/handler/v1/response"
	"student-activity-api/internal/domain"
	"student-activity-api/internal/service"
)

type ParticipationService interface {
	CheckEligibility(ctx context.Context, studentID, activityID uint) (domain.Eligibility, error)
	Register(ctx context.Context, studentID, activityID uint, note string) (domain.Participation, error)
	Submit(ctx context.Context, actor domain.User, participationID uint) (domain.Participation, error)
	Cancel(ctx context.Context, actor domain.User, participationID uint) (domain.Participation, error)
	BulkReview(ctx context.Context, actor domain.User, activityID uint, ids []uint, action domain.ParticipationAction) (service.BulkReviewResult, error)
	ConfirmAttendance(ctx context.Context, actor domain.User, activityID uint, ids []uint, action domain.ParticipationAction) (service.AttendanceResult, error)
	ListRegistrations(ctx context.Context, organizerID, activityID uint) ([]domain.Participation, error)
	ListMine(ctx context.Context, studentID uint) ([]domain.Participation, error)
}

type ParticipationHandler struct {
	svc  ParticipationService
	uSvc UserService
}

func NewParticipationHandler(svc ParticipationService, uSvc UserService) *ParticipationHandler {
	return &ParticipationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func participationIDFromPath(ctx *gin.Context) (uint, *response.Err) {
	rawID := ctx.Param("participationID")
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid participation ID %q", rawID))
	}

	return uint(id), nil
}

// HandleCreateParticipation godoc
// @Summary      Register for an activity
// @Description  Creates a Draft participation when the student is eligible and a seat is available.
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateParticipationRequest  true "request body"
// @Success      201      {object}  domain.Participation
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /participations [post]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleCreateParticipation(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleStudent {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not a student", user.ID)))

		return
	}

	var req request.CreateParticipationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	participation, err := h.svc.Register(ctx.Request.Context(), user.ID, req.ActivityID, req.Note)
	if err != nil {
		var ineligible *domain.IneligibleError
		if errors.As(err, &ineligible) {
			response.RenderErr(ctx, response.ErrBadRequest(ineligible))

			return
		}

		err = fmt.Errorf("v1.HandleCreateParticipation -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, participation)
}

// HandleSubmitParticipation godoc
// @Summary      Submit a Draft participation for review
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /participations/{participationID}/submit [post]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleSubmitParticipation(ctx *gin.Context) {
	h.studentTransition(ctx, "v1.HandleSubmitParticipation", h.svc.Submit)
}

// HandleCancelParticipation godoc
// @Summary      Cancel a Draft or Pending participation
// @Description  Cancellation is a status change; the record is kept.
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /participations/{participationID} [delete]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleCancelParticipation(ctx *gin.Context) {
	h.studentTransition(ctx, "v1.HandleCancelParticipation", h.svc.Cancel)
}

func (h *ParticipationHandler) studentTransition(ctx *gin.Context, op string, transition func(ctx context.Context, actor domain.User, participationID uint) (domain.Participation, error)) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participationID, respErr := participationIDFromPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participation, err := transition(ctx.Request.Context(), user, participationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParticipationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation", "ID", participationID))
		case errors.Is(err, service.ErrNotParticipationOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrActorNotAllowed):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("%v -> %w", op, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, participation)
}

// HandleListMyParticipations godoc
// @Summary      List the authenticated student's participations
// @Tags         participations
// @Produce      json
// @Success      200      {array}   domain.Participation
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /participations [get]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleListMyParticipations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participations, err := h.svc.ListMine(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyParticipations -> h.svc.ListMine -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, participations)
}

// HandleListRegistrations godoc
// @Summary      List pending registrations for an activity
// @Description  Returns submitted registrations awaiting review. Organizer only.
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true "activity ID"
// @Success      200         {array}   domain.Participation
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/registrations [get]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleListRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	activityID, respErr := activityIDFromPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participations, err := h.svc.ListRegistrations(ctx.Request.Context(), user.ID, activityID)
	if err != nil {
		if errors.Is(err, service.ErrNotActivityOwner) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))

			return
		}

		err = fmt.Errorf("v1.HandleListRegistrations -> h.svc.ListRegistrations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, participations)
}

// HandleBulkReview godoc
// @Summary      Approve or reject pending registrations in bulk
// @Description  Rows not in Pending are skipped; the response reports requested vs updated counts.
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        activityID  path      int                       true "activity ID"
// @Param        request     body      request.BulkReviewRequest true "request body"
// @Success      200         {object}  service.BulkReviewResult
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/registrations [patch]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleBulkReview(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	activityID, respErr := activityIDFromPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.BulkReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.svc.BulkReview(ctx.Request.Context(), user, activityID, req.ParticipationIDs, domain.ParticipationAction(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotActivityOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrActorNotAllowed):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleBulkReview -> h.svc.BulkReview -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleConfirmAttendance godoc
// @Summary      Mark approved participations Present or Absent in bulk
// @Description  Allowed only after the activity is Completed. Present rows receive the category's training point.
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        activityID  path      int                       true "activity ID"
// @Param        request     body      request.AttendanceRequest true "request body"
// @Success      200         {object}  service.AttendanceResult
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/attendance [patch]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleConfirmAttendance(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	activityID, respErr := activityIDFromPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.AttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.svc.ConfirmAttendance(ctx.Request.Context(), user, activityID, req.ParticipationIDs, domain.ParticipationAction(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			response.RenderErr(ctx, response.ErrNotFound("activity", "ID", activityID))
		case errors.Is(err, service.ErrNotActivityOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrActorNotAllowed):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleConfirmAttendance -> h.svc.ConfirmAttendance -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, result)
}
