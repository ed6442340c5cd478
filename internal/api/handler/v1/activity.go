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

type ActivityService interface {
	CreateActivity(ctx context.Context, activity domain.Activity, organizerID uint) (domain.Activity, error)
	GetActivity(ctx context.Context, id uint) (domain.Activity, error)
	ListPublished(ctx context.Context) ([]domain.Activity, error)
	Publish(ctx context.Context, activityID, organizerID uint) error
	Complete(ctx context.Context, activityID, organizerID uint) error
	Alternatives(ctx context.Context, activityID uint) ([]domain.Activity, error)
}

type ActivityHandler struct {
	svc  ActivityService
	pSvc ParticipationService
	uSvc UserService
}

func NewActivityHandler(svc ActivityService, pSvc ParticipationService, uSvc UserService) *ActivityHandler {
	return &ActivityHandler{
		svc:  svc,
		pSvc: pSvc,
		uSvc: uSvc,
	}
}

func activityIDFromPath(ctx *gin.Context) (uint, *response.Err) {
	rawID := ctx.Param("activityID")
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid activity ID %q", rawID))
	}

	return uint(id), nil
}

// HandleCreateActivity godoc
// @Summary      Create a new activity
// @Description  Creates a Draft activity. Only organizers may create activities.
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateActivityRequest  true "request body"
// @Success      201      {object}  domain.Activity
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /activities [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleCreateActivity(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleOrganizer {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an organizer", user.ID)))

		return
	}

	var req request.CreateActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	activity, err := h.svc.CreateActivity(ctx.Request.Context(), req.ToDomain(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateActivity -> h.svc.CreateActivity -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, activity)
}

// HandleListActivities godoc
// @Summary      List published activities
// @Tags         activities
// @Produce      json
// @Success      200      {array}   domain.Activity
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /activities [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleListActivities(ctx *gin.Context) {
	activities, err := h.svc.ListPublished(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListActivities -> h.svc.ListPublished -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, activities)
}

// HandleGetActivity godoc
// @Summary      Get an activity by ID
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID} [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleGetActivity(ctx *gin.Context) {
	activityID, respErr := activityIDFromPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	activity, err := h.svc.GetActivity(ctx.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("activity", "ID", activityID))

			return
		}

		err = fmt.Errorf("v1.HandleGetActivity -> h.svc.GetActivity -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, activity)
}

// HandlePublishActivity godoc
// @Summary      Publish a Draft activity
// @Description  Moves the activity from Draft to Published, opening registration.
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/publish [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandlePublishActivity(ctx *gin.Context) {
	h.moveActivityStatus(ctx, "v1.HandlePublishActivity", h.svc.Publish)
}

// HandleCompleteActivity godoc
// @Summary      Complete a Published activity
// @Description  Moves the activity from Published to Completed, enabling attendance confirmation.
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/complete [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleCompleteActivity(ctx *gin.Context) {
	h.moveActivityStatus(ctx, "v1.HandleCompleteActivity", h.svc.Complete)
}

func (h *ActivityHandler) moveActivityStatus(ctx *gin.Context, op string, move func(ctx context.Context, activityID, organizerID uint) error) {
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

	if err := move(ctx.Request.Context(), activityID, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			response.RenderErr(ctx, response.ErrNotFound("activity", "ID", activityID))
		case errors.Is(err, service.ErrNotActivityOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, domain.ErrInvalidState):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("%v -> %w", op, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	activity, err := h.svc.GetActivity(ctx.Request.Context(), activityID)
	if err != nil {
		err = fmt.Errorf("%v -> h.svc.GetActivity -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, activity)
}

// HandleCheckEligibility godoc
// @Summary      Check registration eligibility for an activity
// @Description  Read-only check; never creates a participation.
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true "activity ID"
// @Success      200         {object}  domain.Eligibility
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/eligibility [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleCheckEligibility(ctx *gin.Context) {
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

	eligibility, err := h.pSvc.CheckEligibility(ctx.Request.Context(), user.ID, activityID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCheckEligibility -> h.pSvc.CheckEligibility -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, eligibility)
}

// HandleListAlternatives godoc
// @Summary      List published activities in the same category
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true "activity ID"
// @Success      200         {array}   domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/alternatives [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleListAlternatives(ctx *gin.Context) {
	activityID, respErr := activityIDFromPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	alternatives, err := h.svc.Alternatives(ctx.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("activity", "ID", activityID))

			return
		}

		err = fmt.Errorf("v1.HandleListAlternatives -> h.svc.Alternatives -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, alternatives)
}
