package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrParticipationNotFound = errors.New("participation not found")
	ErrCapacityFull          = errors.New("activity capacity is full")
	ErrAlreadyRegistered     = errors.New("student already has an active participation for this activity")
)

// inactiveStatuses do not count against capacity and do not block a new
// registration for the same student+activity pair.
var inactiveStatuses = []string{"Rejected", "Cancelled"}

type Participation struct {
	ID         uint     `gorm:"primaryKey"`
	ActivityID uint     `gorm:"not null;index"`
	Activity   Activity `gorm:"foreignKey:ActivityID"`
	StudentID  uint     `gorm:"not null;index"`
	Student    User     `gorm:"foreignKey:StudentID"`

	Status        string `gorm:"not null;default:Draft"`
	TrainingPoint int    `gorm:"not null;default:0"`
	Note          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ParticipationDAO struct {
	db *gorm.DB
}

func NewParticipationDAO(db *gorm.DB) *ParticipationDAO {
	return &ParticipationDAO{
		db: db,
	}
}

// Insert creates a Draft participation under a row lock on the parent
// activity, so the capacity count and the insert act as one unit. A plain
// count-then-insert would let two concurrent registrations both pass the
// check on the last seat.
func (d *ParticipationDAO) Insert(ctx context.Context, participation Participation) (Participation, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity Activity
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&activity, participation.ActivityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}

			return err
		}

		var existing int64
		if err := tx.Model(&Participation{}).
			Where("activity_id = ? AND student_id = ? AND status NOT IN ?",
				participation.ActivityID, participation.StudentID, inactiveStatuses).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyRegistered
		}

		if activity.Capacity != nil {
			var active int64
			if err := tx.Model(&Participation{}).
				Where("activity_id = ? AND status NOT IN ?", participation.ActivityID, inactiveStatuses).
				Count(&active).Error; err != nil {
				return err
			}
			if active >= int64(*activity.Capacity) {
				return ErrCapacityFull
			}
		}

		return tx.Create(&participation).Error
	})
	if err != nil {
		return Participation{}, err
	}

	return participation, nil
}

func (d *ParticipationDAO) FindByID(ctx context.Context, id uint) (Participation, error) {
	var participation Participation

	result := d.db.WithContext(ctx).First(&participation, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participation{}, ErrParticipationNotFound
		}

		return Participation{}, result.Error
	}

	return participation, nil
}

func (d *ParticipationDAO) FindByIDs(ctx context.Context, ids []uint) ([]Participation, error) {
	var participations []Participation

	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&participations)
	if result.Error != nil {
		return nil, result.Error
	}

	return participations, nil
}

func (d *ParticipationDAO) FindByStudent(ctx context.Context, studentID uint) ([]Participation, error) {
	var participations []Participation

	result := d.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&participations)
	if result.Error != nil {
		return nil, result.Error
	}

	return participations, nil
}

// FindByActivityAndStatus backs the organizer's registration list. Drafts a
// student never submitted stay invisible there.
func (d *ParticipationDAO) FindByActivityAndStatus(ctx context.Context, activityID uint, status string) ([]Participation, error) {
	var participations []Participation

	result := d.db.WithContext(ctx).
		Where("activity_id = ? AND status = ?", activityID, status).
		Order("created_at").
		Find(&participations)
	if result.Error != nil {
		return nil, result.Error
	}

	return participations, nil
}

func (d *ParticipationDAO) HasActive(ctx context.Context, activityID, studentID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Participation{}).
		Where("activity_id = ? AND student_id = ? AND status NOT IN ?", activityID, studentID, inactiveStatuses).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// UpdateStatus applies a single-row transition with the expected current
// status as a predicate. The returned flag is false when a concurrent
// request got there first.
func (d *ParticipationDAO) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Participation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// BulkUpdateStatus transitions every requested row that is still in the
// required status, in one statement, and reports how many actually moved.
// Ineligible ids are excluded by the predicate rather than failing the batch.
func (d *ParticipationDAO) BulkUpdateStatus(ctx context.Context, activityID uint, ids []uint, from, to string) (int64, error) {
	result := d.db.WithContext(ctx).Model(&Participation{}).
		Where("activity_id = ? AND id IN ? AND status = ?", activityID, ids, from).
		Update("status", to)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// BulkConfirmAttendance stores the attendance status and the awarded point
// in the same statement, so the award is atomic with the transition.
func (d *ParticipationDAO) BulkConfirmAttendance(ctx context.Context, activityID uint, ids []uint, to string, point int) (int64, error) {
	result := d.db.WithContext(ctx).Model(&Participation{}).
		Where("activity_id = ? AND id IN ? AND status = ?", activityID, ids, "Approved").
		Updates(map[string]interface{}{
			"status":         to,
			"training_point": point,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// SumPointsByStudent totals the points of attended participations.
func (d *ParticipationDAO) SumPointsByStudent(ctx context.Context, studentID uint) (int, error) {
	var total int64

	result := d.db.WithContext(ctx).Model(&Participation{}).
		Where("student_id = ? AND status = ?", studentID, "Present").
		Select("COALESCE(SUM(training_point), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(total), nil
}
