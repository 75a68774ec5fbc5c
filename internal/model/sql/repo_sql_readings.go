package sql

import (
	"context"
	"fmt"

	"glucolog/internal/entity"

	"gorm.io/gorm"
)

// CreateReading inserts a new reading into the database.
func (r *GormRepository) CreateReading(ctx context.Context, reading *entity.DbReading) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if reading == nil {
		return fmt.Errorf("reading is nil")
	}
	return r.db.WithContext(ctx).Create(reading).Error
}

// GetReading retrieves a single reading by ID.
func (r *GormRepository) GetReading(ctx context.Context, id uint) (*entity.DbReading, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid reading id")
	}

	var reading entity.DbReading
	if err := r.db.WithContext(ctx).First(&reading, id).Error; err != nil {
		return nil, err
	}
	return &reading, nil
}

// DeleteReading removes a reading by ID. Hard delete, no audit trail.
func (r *GormRepository) DeleteReading(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid reading id")
	}

	result := r.db.WithContext(ctx).Delete(&entity.DbReading{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListReadingsByUser returns one user's readings ordered by date then
// creation time, newest first. A limit of 0 returns everything.
func (r *GormRepository) ListReadingsByUser(ctx context.Context, userID uint, limit int) ([]entity.DbReading, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var readings []entity.DbReading
	if err := query.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// ListAllReadings returns every reading with its owner preloaded, for the
// admin views. Same ordering as the per-user listing.
func (r *GormRepository) ListAllReadings(ctx context.Context) ([]entity.DbReading, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var readings []entity.DbReading
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("date DESC, created_at DESC").
		Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// ListReadingsForChart returns readings ordered by date ascending for the
// chart payload. A userID of 0 selects all users (admin variant) and
// preloads the owner for the email annotation.
func (r *GormRepository) ListReadingsForChart(ctx context.Context, userID uint) ([]entity.DbReading, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Order("date ASC, id ASC")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	} else {
		query = query.Preload("User")
	}

	var readings []entity.DbReading
	if err := query.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// CountReadings returns total reading count.
func (r *GormRepository) CountReadings(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbReading{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
