package service

import (
	"context"
	"errors"
	"fmt"

	"student-activity-api/internal/domain"
	"student-activity-api/internal/repository"
)

var (
	ErrActivityNotFound = repository.ErrActivityNotFound

	// ErrNotActivityOwner rejects an organizer action on an activity owned
	// by someone else. Always re-derived server-side from the authenticated
	// user, never from a client-supplied organizer id.
	ErrNotActivityOwner = errors.New("user is not the organizer of this activity")
)

type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	FindByID(ctx context.Context, id uint) (domain.Activity, error)
	FindPublished(ctx context.Context) ([]domain.Activity, error)
	FindPublishedByCategory(ctx context.Context, category domain.ActivityCategory, excludeID uint) ([]domain.Activity, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.ActivityStatus) (bool, error)
	IsOwnedBy(ctx context.Context, activityID, userID uint) (bool, error)
}

type ActivityService struct {
	repo ActivityRepository
}

func NewActivityService(repo ActivityRepository) *ActivityService {
	return &ActivityService{
		repo: repo,
	}
}

func (s *ActivityService) CreateActivity(ctx context.Context, activity domain.Activity, organizerID uint) (domain.Activity, error) {
	activity.OrganizerID = organizerID
	activity.Status = domain.ActivityDraft

	created, err := s.repo.Create(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ActivityService) GetActivity(ctx context.Context, id uint) (domain.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return activity, nil
}

func (s *ActivityService) ListPublished(ctx context.Context) ([]domain.Activity, error) {
	activities, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPublished -> %w", err)
	}

	return activities, nil
}

// Publish moves Draft -> Published; Complete moves Published -> Completed.
// Both are guarded single-statement updates, so repeating one is rejected
// instead of silently applied twice.

func (s *ActivityService) Publish(ctx context.Context, activityID, organizerID uint) error {
	return s.moveStatus(ctx, activityID, organizerID, domain.ActivityDraft, domain.ActivityPublished)
}

func (s *ActivityService) Complete(ctx context.Context, activityID, organizerID uint) error {
	return s.moveStatus(ctx, activityID, organizerID, domain.ActivityPublished, domain.ActivityCompleted)
}

func (s *ActivityService) moveStatus(ctx context.Context, activityID, organizerID uint, from, to domain.ActivityStatus) error {
	if err := s.requireOwner(ctx, activityID, organizerID); err != nil {
		return err
	}

	updated, err := s.repo.UpdateStatus(ctx, activityID, from, to)
	if err != nil {
		return fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}
	if !updated {
		return domain.ErrInvalidState
	}

	return nil
}

// Alternatives suggests other Published activities in the same category,
// for the UI to offer when an eligibility check fails.
func (s *ActivityService) Alternatives(ctx context.Context, activityID uint) ([]domain.Activity, error) {
	activity, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	alternatives, err := s.repo.FindPublishedByCategory(ctx, activity.Category, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPublishedByCategory -> %w", err)
	}

	return alternatives, nil
}

func (s *ActivityService) requireOwner(ctx context.Context, activityID, organizerID uint) error {
	owned, err := s.repo.IsOwnedBy(ctx, activityID, organizerID)
	if err != nil {
		return fmt.Errorf("s.repo.IsOwnedBy -> %w", err)
	}
	if !owned {
		return ErrNotActivityOwner
	}

	return nil
}
