package repository

import (
	"context"
	"fmt"

	"student-activity-api/internal/domain"
	"student-activity-api/internal/repository/dao"
)

var (
	ErrParticipationNotFound = dao.ErrParticipationNotFound
	ErrCapacityFull          = dao.ErrCapacityFull
	ErrAlreadyRegistered     = dao.ErrAlreadyRegistered
)

type ParticipationDAO interface {
	Insert(ctx context.Context, participation dao.Participation) (dao.Participation, error)
	FindByID(ctx context.Context, id uint) (dao.Participation, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Participation, error)
	FindByStudent(ctx context.Context, studentID uint) ([]dao.Participation, error)
	FindByActivityAndStatus(ctx context.Context, activityID uint, status string) ([]dao.Participation, error)
	HasActive(ctx context.Context, activityID, studentID uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error)
	BulkUpdateStatus(ctx context.Context, activityID uint, ids []uint, from, to string) (int64, error)
	BulkConfirmAttendance(ctx context.Context, activityID uint, ids []uint, to string, point int) (int64, error)
	SumPointsByStudent(ctx context.Context, studentID uint) (int, error)
}

type ParticipationRepository struct {
	dao ParticipationDAO
}

func NewParticipationRepository(dao ParticipationDAO) *ParticipationRepository {
	return &ParticipationRepository{
		dao: dao,
	}
}

func (r *ParticipationRepository) Create(ctx context.Context, participation domain.Participation) (domain.Participation, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(participation))
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ParticipationRepository) FindByID(ctx context.Context, id uint) (domain.Participation, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipationRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Participation, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ParticipationRepository) FindByStudent(ctx context.Context, studentID uint) ([]domain.Participation, error) {
	found, err := r.dao.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStudent -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ParticipationRepository) FindPendingByActivity(ctx context.Context, activityID uint) ([]domain.Participation, error) {
	found, err := r.dao.FindByActivityAndStatus(ctx, activityID, string(domain.ParticipationPending))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByActivityAndStatus -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ParticipationRepository) HasActive(ctx context.Context, activityID, studentID uint) (bool, error) {
	active, err := r.dao.HasActive(ctx, activityID, studentID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasActive -> %w", err)
	}

	return active, nil
}

func (r *ParticipationRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.ParticipationStatus) (bool, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return updated, nil
}

func (r *ParticipationRepository) BulkUpdateStatus(ctx context.Context, activityID uint, ids []uint, from, to domain.ParticipationStatus) (int64, error) {
	affected, err := r.dao.BulkUpdateStatus(ctx, activityID, ids, string(from), string(to))
	if err != nil {
		return 0, fmt.Errorf("r.dao.BulkUpdateStatus -> %w", err)
	}

	return affected, nil
}

func (r *ParticipationRepository) BulkConfirmAttendance(ctx context.Context, activityID uint, ids []uint, to domain.ParticipationStatus, point int) (int64, error) {
	affected, err := r.dao.BulkConfirmAttendance(ctx, activityID, ids, string(to), point)
	if err != nil {
		return 0, fmt.Errorf("r.dao.BulkConfirmAttendance -> %w", err)
	}

	return affected, nil
}

func (r *ParticipationRepository) SumPointsByStudent(ctx context.Context, studentID uint) (int, error) {
	total, err := r.dao.SumPointsByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumPointsByStudent -> %w", err)
	}

	return total, nil
}

func (r *ParticipationRepository) domainToDao(p domain.Participation) dao.Participation {
	return dao.Participation{
		ID:            p.ID,
		ActivityID:    p.ActivityID,
		StudentID:     p.StudentID,
		Status:        string(p.Status),
		TrainingPoint: p.TrainingPoint,
		Note:          p.Note,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r *ParticipationRepository) daoToDomain(p dao.Participation) domain.Participation {
	return domain.Participation{
		ID:            p.ID,
		ActivityID:    p.ActivityID,
		StudentID:     p.StudentID,
		Status:        domain.ParticipationStatus(p.Status),
		TrainingPoint: p.TrainingPoint,
		Note:          p.Note,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r *ParticipationRepository) daosToDomain(participations []dao.Participation) []domain.Participation {
	result := make([]domain.Participation, len(participations))
	for i, p := range participations {
		result[i] = r.daoToDomain(p)
	}

	return result
}
