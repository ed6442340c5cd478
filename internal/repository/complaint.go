package repository

import (
	"context"
	"fmt"

	"student-activity-api/internal/domain"
	"student-activity-api/internal/repository/dao"
)

var (
	ErrComplaintNotFound  = dao.ErrComplaintNotFound
	ErrDuplicateComplaint = dao.ErrDuplicateComplaint
	ErrComplaintResolved  = dao.ErrComplaintResolved
)

type ComplaintDAO interface {
	Insert(ctx context.Context, complaint dao.Complaint) (dao.Complaint, error)
	FindByID(ctx context.Context, id uint) (dao.Complaint, error)
	FindByParticipation(ctx context.Context, participationID uint) ([]dao.Complaint, error)
	Resolve(ctx context.Context, id uint, status, response string, newPoint *int) (dao.Complaint, error)
}

type ComplaintRepository struct {
	dao ComplaintDAO
}

func NewComplaintRepository(dao ComplaintDAO) *ComplaintRepository {
	return &ComplaintRepository{
		dao: dao,
	}
}

func (r *ComplaintRepository) Create(ctx context.Context, complaint domain.Complaint) (domain.Complaint, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(complaint))
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ComplaintRepository) FindByID(ctx context.Context, id uint) (domain.Complaint, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ComplaintRepository) FindByParticipation(ctx context.Context, participationID uint) ([]domain.Complaint, error) {
	found, err := r.dao.FindByParticipation(ctx, participationID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByParticipation -> %w", err)
	}

	complaints := make([]domain.Complaint, len(found))
	for i, c := range found {
		complaints[i] = r.daoToDomain(c)
	}

	return complaints, nil
}

func (r *ComplaintRepository) Resolve(ctx context.Context, id uint, status domain.ComplaintStatus, response string, newPoint *int) (domain.Complaint, error) {
	resolved, err := r.dao.Resolve(ctx, id, string(status), response, newPoint)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("r.dao.Resolve -> %w", err)
	}

	return r.daoToDomain(resolved), nil
}

func (r *ComplaintRepository) domainToDao(c domain.Complaint) dao.Complaint {
	return dao.Complaint{
		ID:              c.ID,
		ParticipationID: c.ParticipationID,
		Description:     c.Description,
		Status:          string(c.Status),
		Response:        c.Response,
		NewPoint:        c.NewPoint,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (r *ComplaintRepository) daoToDomain(c dao.Complaint) domain.Complaint {
	return domain.Complaint{
		ID:              c.ID,
		ParticipationID: c.ParticipationID,
		Description:     c.Description,
		Status:          domain.ComplaintStatus(c.Status),
		Response:        c.Response,
		NewPoint:        c.NewPoint,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
