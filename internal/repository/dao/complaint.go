package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrDuplicateComplaint = errors.New("an identical pending complaint already exists for this participation")
	ErrComplaintResolved  = errors.New("complaint is already resolved")
)

type Complaint struct {
	ID              uint          `gorm:"primaryKey"`
	ParticipationID uint          `gorm:"not null;index"`
	Participation   Participation `gorm:"foreignKey:ParticipationID"`

	Description string `gorm:"not null"`
	Status      string `gorm:"not null;default:Pending"`
	Response    string
	NewPoint    *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ComplaintDAO struct {
	db *gorm.DB
}

func NewComplaintDAO(db *gorm.DB) *ComplaintDAO {
	return &ComplaintDAO{
		db: db,
	}
}

// Insert creates a pending complaint unless an identical pending one already
// exists for the participation. The parent participation row is locked first,
// so two identical submissions serialize on it and the second one sees the
// first one's row in the duplicate count.
func (d *ComplaintDAO) Insert(ctx context.Context, complaint Complaint) (Complaint, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent Participation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&parent, complaint.ParticipationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParticipationNotFound
			}

			return err
		}

		var duplicates int64
		if err := tx.Model(&Complaint{}).
			Where("participation_id = ? AND description = ? AND status = ?",
				complaint.ParticipationID, complaint.Description, "Pending").
			Count(&duplicates).Error; err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrDuplicateComplaint
		}

		return tx.Create(&complaint).Error
	})
	if err != nil {
		return Complaint{}, err
	}

	return complaint, nil
}

func (d *ComplaintDAO) FindByID(ctx context.Context, id uint) (Complaint, error) {
	var complaint Complaint

	result := d.db.WithContext(ctx).First(&complaint, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Complaint{}, ErrComplaintNotFound
		}

		return Complaint{}, result.Error
	}

	return complaint, nil
}

func (d *ComplaintDAO) FindByParticipation(ctx context.Context, participationID uint) ([]Complaint, error) {
	var complaints []Complaint

	result := d.db.WithContext(ctx).
		Where("participation_id = ?", participationID).
		Order("created_at DESC").
		Find(&complaints)
	if result.Error != nil {
		return nil, result.Error
	}

	return complaints, nil
}

// Resolve finalizes a pending complaint. On approval the participation's
// training point is overwritten in the same transaction; on rejection the
// participation is untouched. The complaint row is locked so a complaint
// can be resolved exactly once.
func (d *ComplaintDAO) Resolve(ctx context.Context, id uint, status, response string, newPoint *int) (Complaint, error) {
	var resolved Complaint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var complaint Complaint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&complaint, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrComplaintNotFound
			}

			return err
		}

		if complaint.Status != "Pending" {
			return ErrComplaintResolved
		}

		updates := map[string]interface{}{
			"status":   status,
			"response": response,
		}
		if newPoint != nil {
			updates["new_point"] = *newPoint
		}

		if err := tx.Model(&complaint).Updates(updates).Error; err != nil {
			return err
		}

		if status == "Approved" && newPoint != nil {
			if err := tx.Model(&Participation{}).
				Where("id = ?", complaint.ParticipationID).
				Update("training_point", *newPoint).Error; err != nil {
				return err
			}
		}

		complaint.Status = status
		complaint.Response = response
		if newPoint != nil {
			complaint.NewPoint = newPoint
		}
		resolved = complaint

		return nil
	})
	if err != nil {
		return Complaint{}, err
	}

	return resolved, nil
}
