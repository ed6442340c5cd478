package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-activity-api/internal/api/middleware"
	"student-activity-api/internal/domain"
	"student-activity-api/internal/service"
)

type fakeUserService struct {
	user domain.User
}

func (f *fakeUserService) GetUser(_ context.Context, id uint) (domain.User, error) {
	if id != f.user.ID {
		return domain.User{}, service.ErrUserNotFound
	}

	return f.user, nil
}

type fakeParticipationService struct {
	eligibility domain.Eligibility

	participation domain.Participation
	err           error

	reviewResult     service.BulkReviewResult
	attendanceResult service.AttendanceResult
}

func (f *fakeParticipationService) CheckEligibility(_ context.Context, _, _ uint) (domain.Eligibility, error) {
	return f.eligibility, f.err
}

func (f *fakeParticipationService) Register(_ context.Context, _, _ uint, _ string) (domain.Participation, error) {
	return f.participation, f.err
}

func (f *fakeParticipationService) Submit(_ context.Context, _ domain.User, _ uint) (domain.Participation, error) {
	return f.participation, f.err
}

func (f *fakeParticipationService) Cancel(_ context.Context, _ domain.User, _ uint) (domain.Participation, error) {
	return f.participation, f.err
}

func (f *fakeParticipationService) BulkReview(_ context.Context, _ domain.User, _ uint, _ []uint, _ domain.ParticipationAction) (service.BulkReviewResult, error) {
	return f.reviewResult, f.err
}

func (f *fakeParticipationService) ConfirmAttendance(_ context.Context, _ domain.User, _ uint, _ []uint, _ domain.ParticipationAction) (service.AttendanceResult, error) {
	return f.attendanceResult, f.err
}

func (f *fakeParticipationService) ListRegistrations(_ context.Context, _, _ uint) ([]domain.Participation, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []domain.Participation{f.participation}, nil
}

func (f *fakeParticipationService) ListMine(_ context.Context, _ uint) ([]domain.Participation, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []domain.Participation{f.participation}, nil
}

func authenticatedAs(userID uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUserID, userID)
		ctx.Next()
	}
}

func newParticipationRouter(svc *fakeParticipationService, user domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewParticipationHandler(svc, &fakeUserService{user: user})

	router := gin.New()
	group := router.Group("/api/v1", authenticatedAs(user.ID))
	group.POST("/participations", handler.HandleCreateParticipation)
	group.POST("/participations/:participationID/submit", handler.HandleSubmitParticipation)
	group.DELETE("/participations/:participationID", handler.HandleCancelParticipation)
	group.PATCH("/activities/:activityID/registrations", handler.HandleBulkReview)
	group.PATCH("/activities/:activityID/attendance", handler.HandleConfirmAttendance)

	return router
}

func student() domain.User {
	return domain.User{ID: 2, Email: "student@campus.edu", Name: "Student", Role: domain.RoleStudent}
}

func organizer() domain.User {
	return domain.User{ID: 1, Email: "organizer@campus.edu", Name: "Organizer", Role: domain.RoleOrganizer}
}

func TestHandleCreateParticipation(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeParticipationService{
			participation: domain.Participation{ID: 1, ActivityID: 10, StudentID: 2, Status: domain.ParticipationDraft},
		}
		router := newParticipationRouter(svc, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations", strings.NewReader(`{"activity_id":10}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusCreated, resp.Code)

		var got domain.Participation
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, domain.ParticipationDraft, got.Status)
	})

	t.Run("ineligible returns 400 with the reason", func(t *testing.T) {
		svc := &fakeParticipationService{
			err: &domain.IneligibleError{Reason: "activity capacity is full"},
		}
		router := newParticipationRouter(svc, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations", strings.NewReader(`{"activity_id":10}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "activity capacity is full")
	})

	t.Run("missing activity_id fails validation", func(t *testing.T) {
		router := newParticipationRouter(&fakeParticipationService{}, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations", strings.NewReader(`{"note":"hi"}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("organizer is forbidden", func(t *testing.T) {
		router := newParticipationRouter(&fakeParticipationService{}, organizer())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations", strings.NewReader(`{"activity_id":10}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestHandleSubmitParticipation(t *testing.T) {
	t.Run("submitted", func(t *testing.T) {
		svc := &fakeParticipationService{
			participation: domain.Participation{ID: 1, Status: domain.ParticipationPending},
		}
		router := newParticipationRouter(svc, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations/1/submit", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("invalid state returns 400", func(t *testing.T) {
		svc := &fakeParticipationService{err: domain.ErrInvalidState}
		router := newParticipationRouter(svc, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations/1/submit", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("someone else's participation returns 403", func(t *testing.T) {
		svc := &fakeParticipationService{err: service.ErrNotParticipationOwner}
		router := newParticipationRouter(svc, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations/1/submit", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("unknown participation returns 404", func(t *testing.T) {
		svc := &fakeParticipationService{err: service.ErrParticipationNotFound}
		router := newParticipationRouter(svc, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/participations/999/submit", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestHandleBulkReview(t *testing.T) {
	t.Run("reports requested and updated counts", func(t *testing.T) {
		svc := &fakeParticipationService{
			reviewResult: service.BulkReviewResult{RequestedCount: 3, UpdatedCount: 2},
		}
		router := newParticipationRouter(svc, organizer())

		body := `{"participation_ids":[1,2,3],"action":"approve"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/activities/10/registrations", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)

		var got service.BulkReviewResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, 3, got.RequestedCount)
		assert.Equal(t, int64(2), got.UpdatedCount)
	})

	t.Run("unknown action fails validation", func(t *testing.T) {
		router := newParticipationRouter(&fakeParticipationService{}, organizer())

		body := `{"participation_ids":[1],"action":"promote"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/activities/10/registrations", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("non-owner returns 403", func(t *testing.T) {
		svc := &fakeParticipationService{err: service.ErrNotActivityOwner}
		router := newParticipationRouter(svc, organizer())

		body := `{"participation_ids":[1],"action":"reject"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/activities/10/registrations", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestHandleConfirmAttendance(t *testing.T) {
	t.Run("reports the point awarded", func(t *testing.T) {
		svc := &fakeParticipationService{
			attendanceResult: service.AttendanceResult{RequestedCount: 2, UpdatedCount: 2, PointAwarded: 7},
		}
		router := newParticipationRouter(svc, organizer())

		body := `{"participation_ids":[1,2],"action":"mark_present"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/activities/10/attendance", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)

		var got service.AttendanceResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, 7, got.PointAwarded)
	})

	t.Run("attendance before completion returns 400", func(t *testing.T) {
		svc := &fakeParticipationService{err: domain.ErrInvalidState}
		router := newParticipationRouter(svc, organizer())

		body := `{"participation_ids":[1],"action":"mark_absent"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/activities/10/attendance", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown activity returns 404", func(t *testing.T) {
		svc := &fakeParticipationService{err: service.ErrActivityNotFound}
		router := newParticipationRouter(svc, organizer())

		body := `{"participation_ids":[1],"action":"mark_present"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/activities/999/attendance", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}
