package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"student-activity-api/internal/domain"
	"student-activity-api/internal/repository"
)

var (
	ErrParticipationNotFound = repository.ErrParticipationNotFound
	ErrCapacityFull          = repository.ErrCapacityFull
	ErrAlreadyRegistered     = repository.ErrAlreadyRegistered

	// ErrNotParticipationOwner rejects a student action on someone else's
	// participation.
	ErrNotParticipationOwner = errors.New("user does not own this participation")
)

type ParticipationRepository interface {
	Create(ctx context.Context, participation domain.Participation) (domain.Participation, error)
	FindByID(ctx context.Context, id uint) (domain.Participation, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Participation, error)
	FindByStudent(ctx context.Context, studentID uint) ([]domain.Participation, error)
	FindPendingByActivity(ctx context.Context, activityID uint) ([]domain.Participation, error)
	HasActive(ctx context.Context, activityID, studentID uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.ParticipationStatus) (bool, error)
	BulkUpdateStatus(ctx context.Context, activityID uint, ids []uint, from, to domain.ParticipationStatus) (int64, error)
	BulkConfirmAttendance(ctx context.Context, activityID uint, ids []uint, to domain.ParticipationStatus, point int) (int64, error)
	SumPointsByStudent(ctx context.Context, studentID uint) (int, error)
}

// BulkReviewResult reports requested vs actually-updated counts; UIs display
// "updated N of M", so the two must not be conflated.
type BulkReviewResult struct {
	RequestedCount int   `json:"requested_count"`
	UpdatedCount   int64 `json:"updated_count"`
}

type AttendanceResult struct {
	RequestedCount int   `json:"requested_count"`
	UpdatedCount   int64 `json:"updated_count"`
	PointAwarded   int   `json:"point_awarded"`
}

type ParticipationService struct {
	repo         ParticipationRepository
	activityRepo ActivityRepository
	notifier     NotificationDispatcher
}

func NewParticipationService(repo ParticipationRepository, activityRepo ActivityRepository, notifier NotificationDispatcher) *ParticipationService {
	return &ParticipationService{
		repo:         repo,
		activityRepo: activityRepo,
		notifier:     notifier,
	}
}

// CheckEligibility runs the read-only registration gate: the activity must
// be Published with an open registration window, and the student must not
// already hold an active participation. The checks run in that order so the
// reason text distinguishes an invalid/expired activity from a repeat
// registration.
func (s *ParticipationService) CheckEligibility(ctx context.Context, studentID, activityID uint) (domain.Eligibility, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return domain.Eligibility{Reason: "activity does not exist or is not open for registration"}, nil
		}

		return domain.Eligibility{}, fmt.Errorf("s.activityRepo.FindByID -> %w", err)
	}

	if activity.Status != domain.ActivityPublished {
		return domain.Eligibility{Reason: "activity does not exist or is not open for registration"}, nil
	}

	if !activity.RegistrationOpen(time.Now()) {
		return domain.Eligibility{Reason: "registration window has closed"}, nil
	}

	active, err := s.repo.HasActive(ctx, activityID, studentID)
	if err != nil {
		return domain.Eligibility{}, fmt.Errorf("s.repo.HasActive -> %w", err)
	}
	if active {
		return domain.Eligibility{Reason: "already registered for this activity"}, nil
	}

	return domain.Eligibility{Eligible: true}, nil
}

// Register creates a Draft participation. Capacity is enforced inside the
// repository's locked insert, so two concurrent registrations cannot both
// take the last seat.
func (s *ParticipationService) Register(ctx context.Context, studentID, activityID uint, note string) (domain.Participation, error) {
	eligibility, err := s.CheckEligibility(ctx, studentID, activityID)
	if err != nil {
		return domain.Participation{}, err
	}
	if !eligibility.Eligible {
		return domain.Participation{}, &domain.IneligibleError{Reason: eligibility.Reason}
	}

	created, err := s.repo.Create(ctx, domain.Participation{
		ActivityID: activityID,
		StudentID:  studentID,
		Status:     domain.ParticipationDraft,
		Note:       note,
	})
	if err != nil {
		if errors.Is(err, ErrCapacityFull) {
			return domain.Participation{}, &domain.IneligibleError{Reason: "activity capacity is full"}
		}
		if errors.Is(err, ErrAlreadyRegistered) {
			return domain.Participation{}, &domain.IneligibleError{Reason: "already registered for this activity"}
		}

		return domain.Participation{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ParticipationService) Submit(ctx context.Context, actor domain.User, participationID uint) (domain.Participation, error) {
	return s.studentTransition(ctx, actor, participationID, domain.ActionSubmit)
}

func (s *ParticipationService) Cancel(ctx context.Context, actor domain.User, participationID uint) (domain.Participation, error) {
	return s.studentTransition(ctx, actor, participationID, domain.ActionCancel)
}

func (s *ParticipationService) studentTransition(ctx context.Context, actor domain.User, participationID uint, action domain.ParticipationAction) (domain.Participation, error) {
	participation, err := s.repo.FindByID(ctx, participationID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if participation.StudentID != actor.ID {
		return domain.Participation{}, ErrNotParticipationOwner
	}

	next, err := domain.NextParticipationStatus(participation.Status, action, actor.Role)
	if err != nil {
		return domain.Participation{}, err
	}

	// The update re-checks the current status, so a concurrent transition
	// surfaces as an invalid state instead of a lost write.
	updated, err := s.repo.UpdateStatus(ctx, participationID, participation.Status, next)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}
	if !updated {
		return domain.Participation{}, domain.ErrInvalidState
	}

	participation.Status = next

	return participation, nil
}

// BulkReview approves or rejects the given participations for an activity
// the organizer owns. Rows not in Pending are excluded from the update set
// rather than failing the batch; the result reports how many actually moved.
func (s *ParticipationService) BulkReview(ctx context.Context, actor domain.User, activityID uint, ids []uint, action domain.ParticipationAction) (BulkReviewResult, error) {
	if err := s.requireOwner(ctx, activityID, actor.ID); err != nil {
		return BulkReviewResult{}, err
	}

	target, err := domain.NextParticipationStatus(domain.ParticipationPending, action, actor.Role)
	if err != nil {
		return BulkReviewResult{}, err
	}

	affected, err := s.repo.BulkUpdateStatus(ctx, activityID, ids, domain.ParticipationPending, target)
	if err != nil {
		return BulkReviewResult{}, fmt.Errorf("s.repo.BulkUpdateStatus -> %w", err)
	}

	go s.notifyStudents(ids, target, "Registration reviewed",
		fmt.Sprintf("Your registration has been %v.", target))

	return BulkReviewResult{
		RequestedCount: len(ids),
		UpdatedCount:   affected,
	}, nil
}

// ConfirmAttendance marks Approved participations Present or Absent once the
// activity is Completed. Present rows receive the category default point in
// the same statement; Absent rows are reset to zero.
func (s *ParticipationService) ConfirmAttendance(ctx context.Context, actor domain.User, activityID uint, ids []uint, action domain.ParticipationAction) (AttendanceResult, error) {
	// Existence first, so a missing activity is a not-found and never an
	// ownership failure.
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("s.activityRepo.FindByID -> %w", err)
	}

	if err = s.requireOwner(ctx, activityID, actor.ID); err != nil {
		return AttendanceResult{}, err
	}

	if activity.Status != domain.ActivityCompleted {
		return AttendanceResult{}, domain.ErrInvalidState
	}

	target, err := domain.NextParticipationStatus(domain.ParticipationApproved, action, actor.Role)
	if err != nil {
		return AttendanceResult{}, err
	}

	point := 0
	if target == domain.ParticipationPresent {
		point = domain.TrainingPointFor(activity.Category)
	}

	affected, err := s.repo.BulkConfirmAttendance(ctx, activityID, ids, target, point)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("s.repo.BulkConfirmAttendance -> %w", err)
	}

	go s.notifyStudents(ids, target, "Attendance confirmed",
		fmt.Sprintf("Your attendance has been recorded as %v.", target))

	return AttendanceResult{
		RequestedCount: len(ids),
		UpdatedCount:   affected,
		PointAwarded:   point,
	}, nil
}

// ListRegistrations returns the organizer's actionable registrations for an
// activity: Pending only, never unsubmitted Drafts.
func (s *ParticipationService) ListRegistrations(ctx context.Context, organizerID, activityID uint) ([]domain.Participation, error) {
	if err := s.requireOwner(ctx, activityID, organizerID); err != nil {
		return nil, err
	}

	participations, err := s.repo.FindPendingByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPendingByActivity -> %w", err)
	}

	return participations, nil
}

func (s *ParticipationService) ListMine(ctx context.Context, studentID uint) ([]domain.Participation, error) {
	participations, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStudent -> %w", err)
	}

	return participations, nil
}

func (s *ParticipationService) TotalPoints(ctx context.Context, studentID uint) (int, error) {
	total, err := s.repo.SumPointsByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.SumPointsByStudent -> %w", err)
	}

	return total, nil
}

func (s *ParticipationService) requireOwner(ctx context.Context, activityID, organizerID uint) error {
	owned, err := s.activityRepo.IsOwnedBy(ctx, activityID, organizerID)
	if err != nil {
		return fmt.Errorf("s.activityRepo.IsOwnedBy -> %w", err)
	}
	if !owned {
		return ErrNotActivityOwner
	}

	return nil
}

// notifyStudents fans a notification out to the students whose rows reached
// the target status. Runs detached from the request.
func (s *ParticipationService) notifyStudents(ids []uint, status domain.ParticipationStatus, title, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	participations, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return
	}

	for _, p := range participations {
		if p.Status != status {
			continue
		}

		s.notifier.Dispatch(ctx, domain.Notification{
			ToUserID: p.StudentID,
			Title:    title,
			Message:  message,
		})
	}
}
