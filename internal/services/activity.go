package services

import (
	"context"

	"github.com/P3chys/exchange-api/internal/models"
	"gorm.io/gorm"
)

// ActivityService keeps the audit trail in the activities table.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{
		db: db,
	}
}

func (s *ActivityService) Record(ctx context.Context, activity models.Activity) error {
	if activity.Metadata == "" {
		activity.Metadata = "{}"
	}
	return s.db.WithContext(ctx).Create(&activity).Error
}

// GetRecentActivities returns the newest activities first. An empty
// activityType returns every type.
func (s *ActivityService) GetRecentActivities(ctx context.Context, activityType models.ActivityType, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	query := s.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}
	err := query.Find(&activities).Error
	return activities, err
}
