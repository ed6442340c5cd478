package repository

import (
	"context"
	"fmt"

	"student-activity-api/internal/domain"
	"student-activity-api/internal/repository/dao"
)

var ErrActivityNotFound = dao.ErrActivityNotFound

type ActivityDAO interface {
	Insert(ctx context.Context, activity dao.Activity) (dao.Activity, error)
	FindByID(ctx context.Context, id uint) (dao.Activity, error)
	FindByStatus(ctx context.Context, status string) ([]dao.Activity, error)
	FindPublishedByCategory(ctx context.Context, category string, excludeID uint) ([]dao.Activity, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error)
	IsOwnedBy(ctx context.Context, activityID, userID uint) (bool, error)
}

type ActivityRepository struct {
	dao ActivityDAO
}

func NewActivityRepository(dao ActivityDAO) *ActivityRepository {
	return &ActivityRepository{
		dao: dao,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(activity))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ActivityRepository) FindByID(ctx context.Context, id uint) (domain.Activity, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ActivityRepository) FindPublished(ctx context.Context) ([]domain.Activity, error) {
	found, err := r.dao.FindByStatus(ctx, string(domain.ActivityPublished))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ActivityRepository) FindPublishedByCategory(ctx context.Context, category domain.ActivityCategory, excludeID uint) ([]domain.Activity, error) {
	found, err := r.dao.FindPublishedByCategory(ctx, string(category), excludeID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPublishedByCategory -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ActivityRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.ActivityStatus) (bool, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return updated, nil
}

func (r *ActivityRepository) IsOwnedBy(ctx context.Context, activityID, userID uint) (bool, error) {
	owned, err := r.dao.IsOwnedBy(ctx, activityID, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsOwnedBy -> %w", err)
	}

	return owned, nil
}

func (r *ActivityRepository) domainToDao(a domain.Activity) dao.Activity {
	return dao.Activity{
		ID:                a.ID,
		OrganizerID:       a.OrganizerID,
		Name:              a.Name,
		Description:       a.Description,
		Location:          a.Location,
		Category:          string(a.Category),
		Capacity:          a.Capacity,
		RegistrationStart: a.RegistrationStart,
		RegistrationEnd:   a.RegistrationEnd,
		EventStart:        a.EventStart,
		EventEnd:          a.EventEnd,
		Status:            string(a.Status),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func (r *ActivityRepository) daoToDomain(a dao.Activity) domain.Activity {
	return domain.Activity{
		ID:                a.ID,
		OrganizerID:       a.OrganizerID,
		Name:              a.Name,
		Description:       a.Description,
		Location:          a.Location,
		Category:          domain.ActivityCategory(a.Category),
		Capacity:          a.Capacity,
		RegistrationStart: a.RegistrationStart,
		RegistrationEnd:   a.RegistrationEnd,
		EventStart:        a.EventStart,
		EventEnd:          a.EventEnd,
		Status:            domain.ActivityStatus(a.Status),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func (r *ActivityRepository) daosToDomain(activities []dao.Activity) []domain.Activity {
	result := make([]domain.Activity, len(activities))
	for i, a := range activities {
		result[i] = r.daoToDomain(a)
	}

	return result
}
