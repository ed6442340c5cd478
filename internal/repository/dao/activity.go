package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrActivityNotFound = errors.New("activity not found")

type Activity struct {
	ID          uint `gorm:"primaryKey"`
	OrganizerID uint `gorm:"not null;index"`
	Organizer   User `gorm:"foreignKey:OrganizerID"`

	Name        string `gorm:"not null"`
	Description string
	Location    string
	Category    string `gorm:"not null"`
	Capacity    *int

	RegistrationStart time.Time `gorm:"not null"`
	RegistrationEnd   time.Time `gorm:"not null"`
	EventStart        time.Time `gorm:"not null"`
	EventEnd          time.Time `gorm:"not null"`

	Status string `gorm:"not null;default:Draft"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ActivityDAO struct {
	db *gorm.DB
}

func NewActivityDAO(db *gorm.DB) *ActivityDAO {
	return &ActivityDAO{
		db: db,
	}
}

func (d *ActivityDAO) Insert(ctx context.Context, activity Activity) (Activity, error) {
	result := d.db.WithContext(ctx).Create(&activity)
	if result.Error != nil {
		return Activity{}, result.Error
	}

	return activity, nil
}

func (d *ActivityDAO) FindByID(ctx context.Context, id uint) (Activity, error) {
	var activity Activity

	result := d.db.WithContext(ctx).First(&activity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Activity{}, ErrActivityNotFound
		}

		return Activity{}, result.Error
	}

	return activity, nil
}

func (d *ActivityDAO) FindByStatus(ctx context.Context, status string) ([]Activity, error) {
	var activities []Activity

	result := d.db.WithContext(ctx).Where("status = ?", status).Order("event_start").Find(&activities)
	if result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

// FindPublishedByCategory backs the "same-category alternatives" suggestion
// query offered when an eligibility check fails.
func (d *ActivityDAO) FindPublishedByCategory(ctx context.Context, category string, excludeID uint) ([]Activity, error) {
	var activities []Activity

	result := d.db.WithContext(ctx).
		Where("status = ? AND category = ? AND id <> ?", "Published", category, excludeID).
		Order("registration_end").
		Find(&activities)
	if result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

// UpdateStatus moves an activity between lifecycle states with the current
// status as a predicate, so a concurrent move cannot be applied twice. The
// returned flag is false when no row matched.
func (d *ActivityDAO) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Activity{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// IsOwnedBy is the single ownership predicate behind every organizer-side
// mutation on an activity or anything hanging off it.
func (d *ActivityDAO) IsOwnedBy(ctx context.Context, activityID, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Activity{}).
		Where("id = ? AND organizer_id = ?", activityID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
