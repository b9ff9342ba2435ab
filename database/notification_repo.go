package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
)

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db}
}

func (r *NotificationRepo) scoped(ctx context.Context, filter models.NotificationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", filter.RecipientID)
	if filter.UnreadOnly {
		q = q.Where("read = ?", false)
	}
	return q
}

func (r *NotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return first[models.Notification](r.db.WithContext(ctx).Preload("Actor").Preload("Blog").Where("id = ?", id))
}

// List returns a page of a recipient's notifications, newest first
func (r *NotificationRepo) List(ctx context.Context, filter models.NotificationFilter, offset, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.scoped(ctx, filter).
		Preload("Actor").
		Preload("Blog").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepo) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	var count int64
	err := r.scoped(ctx, filter).Count(&count).Error
	return count, err
}

func (r *NotificationRepo) FindOwned(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND id IN ?", recipientID, ids).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Omit("Actor", "Blog").Create(notification).Error
}

// MarkRead flags the unread notifications among ids and reports how many changed
func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ? AND read = ?", recipientID, ids, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id).Error
}

func (r *NotificationRepo) DeleteMany(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? AND id IN ?", recipientID, ids).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepo) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
