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

	"student-activity-api/internal/domain"
	"student-activity-api/internal/service"
)

type fakeComplaintService struct {
	complaint domain.Complaint
	err       error
}

func (f *fakeComplaintService) Submit(_ context.Context, _, _ uint, _ string) (domain.Complaint, error) {
	return f.complaint, f.err
}

func (f *fakeComplaintService) Resolve(_ context.Context, _ domain.User, _ uint, _ domain.ComplaintStatus, _ string, _ *int) (domain.Complaint, error) {
	return f.complaint, f.err
}

func (f *fakeComplaintService) ListByParticipation(_ context.Context, _, _ uint) ([]domain.Complaint, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []domain.Complaint{f.complaint}, nil
}

func newComplaintRouter(svc *fakeComplaintService, user domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewComplaintHandler(svc, &fakeUserService{user: user})

	router := gin.New()
	group := router.Group("/api/v1", authenticatedAs(user.ID))
	group.GET("/complaints", handler.HandleListComplaints)
	group.POST("/complaints", handler.HandleCreateComplaint)
	group.PATCH("/complaints/:complaintID", handler.HandleResolveComplaint)

	return router
}

func TestHandleCreateComplaint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeComplaintService{
			complaint: domain.Complaint{ID: 5, ParticipationID: 1, Status: domain.ComplaintPending},
		}
		router := newComplaintRouter(svc, student())

		body := `{"participation_id":1,"description":"the awarded point does not match my attendance"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusCreated, resp.Code)

		var got domain.Complaint
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, domain.ComplaintPending, got.Status)
	})

	t.Run("duplicate returns 409", func(t *testing.T) {
		svc := &fakeComplaintService{err: service.ErrDuplicateComplaint}
		router := newComplaintRouter(svc, student())

		body := `{"participation_id":1,"description":"the awarded point does not match my attendance"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("missing description fails validation", func(t *testing.T) {
		router := newComplaintRouter(&fakeComplaintService{}, student())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(`{"participation_id":1}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("someone else's participation returns 403", func(t *testing.T) {
		svc := &fakeComplaintService{err: service.ErrNotParticipationOwner}
		router := newComplaintRouter(svc, student())

		body := `{"participation_id":1,"description":"the awarded point does not match my attendance"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("organizer is forbidden", func(t *testing.T) {
		router := newComplaintRouter(&fakeComplaintService{}, organizer())

		body := `{"participation_id":1,"description":"the awarded point does not match my attendance"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestHandleResolveComplaint(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		newPoint := 10
		svc := &fakeComplaintService{
			complaint: domain.Complaint{
				ID:       5,
				Status:   domain.ComplaintApproved,
				Response: "attendance log confirms presence",
				NewPoint: &newPoint,
			},
		}
		router := newComplaintRouter(svc, organizer())

		body := `{"status":"Approved","response":"attendance log confirms presence","new_point":10}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/5", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)

		var got domain.Complaint
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, domain.ComplaintApproved, got.Status)
		require.NotNil(t, got.NewPoint)
		assert.Equal(t, 10, *got.NewPoint)
	})

	t.Run("invalid target status fails validation", func(t *testing.T) {
		router := newComplaintRouter(&fakeComplaintService{}, organizer())

		body := `{"status":"Pending","response":"cannot go back"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/5", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("approval without new_point returns 400", func(t *testing.T) {
		svc := &fakeComplaintService{err: service.ErrMissingNewPoint}
		router := newComplaintRouter(svc, organizer())

		body := `{"status":"Approved","response":"missing the point"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/5", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("already resolved returns 400", func(t *testing.T) {
		svc := &fakeComplaintService{err: domain.ErrInvalidState}
		router := newComplaintRouter(svc, organizer())

		body := `{"status":"Rejected","response":"second attempt"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/5", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("not the activity's organizer returns 403", func(t *testing.T) {
		svc := &fakeComplaintService{err: service.ErrNotActivityOwner}
		router := newComplaintRouter(svc, organizer())

		body := `{"status":"Rejected","response":"not yours"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/5", strings.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestHandleListComplaints(t *testing.T) {
	svc := &fakeComplaintService{
		complaint: domain.Complaint{ID: 5, ParticipationID: 1, Status: domain.ComplaintPending},
	}
	router := newComplaintRouter(svc, student())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/complaints?participationID=1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var got []domain.Complaint
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, uint(5), got[0].ID)
}
