package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"booking-backend/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) MarkNotification(ctx context.Context, id string, status models.NotificationStatus, sendErr error, at time.Time) error {
	fields := map[string]interface{}{"status": status}
	switch status {
	case models.NotificationSent:
		fields["sent_at"] = at
		fields["error"] = nil
	case models.NotificationFailed:
		if sendErr != nil {
			fields["error"] = sendErr.Error()
		}
	}
	return r.db.WithContext(ctx).Model(&models.EmailNotification{}).Where("id = ?", id).Updates(fields).Error
}
