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

type ComplaintService interface {
	Submit(ctx context.Context, studentID, participationID uint, description string) (domain.Complaint, error)
	Resolve(ctx context.Context, actor domain.User, complaintID uint, target domain.ComplaintStatus, response string, newPoint *int) (domain.Complaint, error)
	ListByParticipation(ctx context.Context, studentID, participationID uint) ([]domain.Complaint, error)
}

type ComplaintHandler struct {
	svc  ComplaintService
	uSvc UserService
}

func NewComplaintHandler(svc ComplaintService, uSvc UserService) *ComplaintHandler {
	return &ComplaintHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateComplaint godoc
// @Summary      File a complaint about an awarded training point
// @Description  The student must own the participation. An identical pending complaint is rejected as a duplicate.
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateComplaintRequest  true "request body"
// @Success      201      {object}  domain.Complaint
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /complaints [post]
// @Security     BearerAuth
func (h *ComplaintHandler) HandleCreateComplaint(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleStudent {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not a student", user.ID)))

		return
	}

	var req request.CreateComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	complaint, err := h.svc.Submit(ctx.Request.Context(), user.ID, req.ParticipationID, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParticipationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation", "ID", req.ParticipationID))
		case errors.Is(err, service.ErrNotParticipationOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrDuplicateComplaint):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCreateComplaint -> h.svc.Submit -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, complaint)
}

// HandleResolveComplaint godoc
// @Summary      Resolve a pending complaint
// @Description  Approval requires new_point and overwrites the participation's training point. Organizer of the activity only.
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Param        complaintID  path      int                              true "complaint ID"
// @Param        request      body      request.ResolveComplaintRequest  true "request body"
// @Success      200          {object}  domain.Complaint
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /complaints/{complaintID} [patch]
// @Security     BearerAuth
func (h *ComplaintHandler) HandleResolveComplaint(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	rawID := ctx.Param("complaintID")
	complaintID, err := strconv.Atoi(rawID)
	if err != nil || complaintID <= 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid complaint ID %q", rawID)))

		return
	}

	var req request.ResolveComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	complaint, err := h.svc.Resolve(ctx.Request.Context(), user, uint(complaintID), domain.ComplaintStatus(req.Status), req.Response, req.NewPoint)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrComplaintNotFound):
			response.RenderErr(ctx, response.ErrNotFound("complaint", "ID", complaintID))
		case errors.Is(err, service.ErrNotActivityOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, domain.ErrInvalidState),
			errors.Is(err, domain.ErrActorNotAllowed),
			errors.Is(err, service.ErrMissingNewPoint),
			errors.Is(err, service.ErrPointOutOfRange):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleResolveComplaint -> h.svc.Resolve -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, complaint)
}

// HandleListComplaints godoc
// @Summary      List complaints for a participation
// @Tags         complaints
// @Produce      json
// @Param        participationID  query     int  true "participation ID"
// @Success      200              {array}   domain.Complaint
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /complaints [get]
// @Security     BearerAuth
func (h *ComplaintHandler) HandleListComplaints(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	rawID := ctx.Query("participationID")
	participationID, err := strconv.Atoi(rawID)
	if err != nil || participationID <= 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid participation ID %q", rawID)))

		return
	}

	complaints, err := h.svc.ListByParticipation(ctx.Request.Context(), user.ID, uint(participationID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParticipationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation", "ID", participationID))
		case errors.Is(err, service.ErrNotParticipationOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleListComplaints -> h.svc.ListByParticipation -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, complaints)
}
