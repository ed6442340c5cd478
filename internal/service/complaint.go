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
	ErrComplaintNotFound  = repository.ErrComplaintNotFound
	ErrDuplicateComplaint = repository.ErrDuplicateComplaint

	// ErrPointOutOfRange rejects an approved override outside the 0-100
	// policy bounds.
	ErrPointOutOfRange = errors.New("new_point must be between 0 and 100")
	// ErrMissingNewPoint rejects an approval without the replacement point.
	ErrMissingNewPoint = errors.New("new_point is required when approving a complaint")
)

type ComplaintRepository interface {
	Create(ctx context.Context, complaint domain.Complaint) (domain.Complaint, error)
	FindByID(ctx context.Context, id uint) (domain.Complaint, error)
	FindByParticipation(ctx context.Context, participationID uint) ([]domain.Complaint, error)
	Resolve(ctx context.Context, id uint, status domain.ComplaintStatus, response string, newPoint *int) (domain.Complaint, error)
}

type ComplaintService struct {
	repo              ComplaintRepository
	participationRepo ParticipationRepository
	activityRepo      ActivityRepository
	notifier          NotificationDispatcher
}

func NewComplaintService(repo ComplaintRepository, participationRepo ParticipationRepository, activityRepo ActivityRepository, notifier NotificationDispatcher) *ComplaintService {
	return &ComplaintService{
		repo:              repo,
		participationRepo: participationRepo,
		activityRepo:      activityRepo,
		notifier:          notifier,
	}
}

// Submit files a dispute over an awarded point, for a participation the
// student owns. An identical pending complaint is a conflict, not a repeat.
func (s *ComplaintService) Submit(ctx context.Context, studentID, participationID uint, description string) (domain.Complaint, error) {
	participation, err := s.participationRepo.FindByID(ctx, participationID)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("s.participationRepo.FindByID -> %w", err)
	}

	if participation.StudentID != studentID {
		return domain.Complaint{}, ErrNotParticipationOwner
	}

	created, err := s.repo.Create(ctx, domain.Complaint{
		ParticipationID: participationID,
		Description:     description,
		Status:          domain.ComplaintPending,
	})
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Resolve finalizes a complaint. Ownership of the activity behind the
// participation is re-verified here on every call; the acting user always
// comes from the authenticated session. Approval overwrites the
// participation's training point with newPoint atomically with the status
// change, and the response text is the audit trail for the override.
func (s *ComplaintService) Resolve(ctx context.Context, actor domain.User, complaintID uint, target domain.ComplaintStatus, response string, newPoint *int) (domain.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	participation, err := s.participationRepo.FindByID(ctx, complaint.ParticipationID)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("s.participationRepo.FindByID -> %w", err)
	}

	owned, err := s.activityRepo.IsOwnedBy(ctx, participation.ActivityID, actor.ID)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("s.activityRepo.IsOwnedBy -> %w", err)
	}
	if !owned {
		return domain.Complaint{}, ErrNotActivityOwner
	}

	if _, err = domain.NextComplaintStatus(complaint.Status, target, actor.Role); err != nil {
		return domain.Complaint{}, err
	}

	if target == domain.ComplaintApproved {
		if newPoint == nil {
			return domain.Complaint{}, ErrMissingNewPoint
		}
		if *newPoint < domain.MinTrainingPoint || *newPoint > domain.MaxTrainingPoint {
			return domain.Complaint{}, ErrPointOutOfRange
		}
	} else {
		newPoint = nil
	}

	resolved, err := s.repo.Resolve(ctx, complaintID, target, response, newPoint)
	if err != nil {
		if errors.Is(err, repository.ErrComplaintResolved) {
			return domain.Complaint{}, domain.ErrInvalidState
		}

		return domain.Complaint{}, fmt.Errorf("s.repo.Resolve -> %w", err)
	}

	go s.notifyStudent(participation.StudentID, resolved)

	return resolved, nil
}

func (s *ComplaintService) ListByParticipation(ctx context.Context, studentID, participationID uint) ([]domain.Complaint, error) {
	participation, err := s.participationRepo.FindByID(ctx, participationID)
	if err != nil {
		return nil, fmt.Errorf("s.participationRepo.FindByID -> %w", err)
	}

	if participation.StudentID != studentID {
		return nil, ErrNotParticipationOwner
	}

	complaints, err := s.repo.FindByParticipation(ctx, participationID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByParticipation -> %w", err)
	}

	return complaints, nil
}

func (s *ComplaintService) notifyStudent(studentID uint, complaint domain.Complaint) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.notifier.Dispatch(ctx, domain.Notification{
		ToUserID: studentID,
		Title:    "Complaint resolved",
		Message:  fmt.Sprintf("Your complaint has been %v: %v", complaint.Status, complaint.Response),
	})
}
