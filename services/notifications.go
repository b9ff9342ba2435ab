package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/pagination"
)

const MaxNotificationBatch = 50

type Notifications struct {
	store models.Store
}

func NewNotifications(store models.Store) *Notifications {
	return &Notifications{store: store}
}

type NotificationFeed struct {
	Notifications []models.Notification
	Pagination    pagination.Meta
	// UnreadCount ignores the unreadOnly filter.
	UnreadCount int64
	UnreadOnly  bool
}

// List returns a page of the recipient's notifications, newest first, with the unread badge count.
func (n *Notifications) List(ctx context.Context, recipientID uuid.UUID, page pagination.Page, unreadOnly bool) (*NotificationFeed, error) {
	filter := models.NotificationFilter{RecipientID: recipientID, UnreadOnly: unreadOnly}
	feed := &NotificationFeed{UnreadOnly: unreadOnly}

	meta, err := pagination.Collect(ctx, page,
		func(ctx context.Context) (err error) {
			feed.Notifications, err = n.store.Notifications().List(ctx, filter, page.Offset(), page.Limit)
			return err
		},
		func(ctx context.Context) (int64, error) {
			return n.store.Notifications().Count(ctx, filter)
		},
		func(ctx context.Context) (err error) {
			feed.UnreadCount, err = n.unreadCount(ctx, n.store, recipientID)
			return err
		},
	)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "notifications", err)
	}
	if feed.Notifications == nil {
		feed.Notifications = []models.Notification{}
	}
	feed.Pagination = meta
	return feed, nil
}

type MarkReadResult struct {
	Notification *models.Notification
	AlreadyRead  bool
	UnreadCount  int64
}

// MarkRead flags one notification as read. A notification that is already read is left alone.
func (n *Notifications) MarkRead(ctx context.Context, recipientID, id uuid.UUID) (*MarkReadResult, error) {
	notification, err := n.owned(ctx, recipientID, id, "mark")
	if err != nil {
		return nil, err
	}

	result := &MarkReadResult{Notification: notification, AlreadyRead: notification.Read}
	if !notification.Read {
		if _, err := n.store.Notifications().MarkRead(ctx, recipientID, []uuid.UUID{id}); err != nil {
			return nil, errs.NewDatabaseError("update", "notification", err)
		}
		notification.Read = true
	}

	result.UnreadCount, err = n.unreadCount(ctx, n.store, recipientID)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "notifications", err)
	}
	return result, nil
}

type MarkManyResult struct {
	TotalRequested int   `json:"totalRequested"`
	AlreadyRead    int   `json:"alreadyRead"`
	NewlyMarked    int64 `json:"newlyMarked"`
	UnreadCount    int64 `json:"unreadCount"`
}

// MarkManyRead flags the given notifications as read. Every id has to belong to the recipient.
func (n *Notifications) MarkManyRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (*MarkManyResult, error) {
	ids = uniqueIDs(ids)
	var result MarkManyResult
	err := n.store.Transaction(ctx, func(tx models.Store) error {
		owned, err := n.ownedBatch(ctx, tx, recipientID, ids, "You can only mark your own notifications as read")
		if err != nil {
			return err
		}

		var unread []uuid.UUID
		for _, notification := range owned {
			if !notification.Read {
				unread = append(unread, notification.ID)
			}
		}

		result = MarkManyResult{TotalRequested: len(ids), AlreadyRead: len(ids) - len(unread)}
		if len(unread) > 0 {
			result.NewlyMarked, err = tx.Notifications().MarkRead(ctx, recipientID, unread)
			if err != nil {
				return errs.NewDatabaseError("update", "notifications", err)
			}
		}

		result.UnreadCount, err = n.unreadCount(ctx, tx, recipientID)
		if err != nil {
			return errs.NewDatabaseError("count", "notifications", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", "notifications", err)
	}
	return &result, nil
}

type MarkAllResult struct {
	MarkedCount int64 `json:"markedCount"`
	UnreadCount int64 `json:"unreadCount"`
}

func (n *Notifications) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (*MarkAllResult, error) {
	marked, err := n.store.Notifications().MarkAllRead(ctx, recipientID)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "notifications", err)
	}
	unread, err := n.unreadCount(ctx, n.store, recipientID)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "notifications", err)
	}
	return &MarkAllResult{MarkedCount: marked, UnreadCount: unread}, nil
}

type DeleteResult struct {
	DeletedID   uuid.UUID `json:"deletedId"`
	UnreadCount int64     `json:"unreadCount"`
}

func (n *Notifications) Delete(ctx context.Context, recipientID, id uuid.UUID) (*DeleteResult, error) {
	if _, err := n.owned(ctx, recipientID, id, "delete"); err != nil {
		return nil, err
	}
	if err := n.store.Notifications().Delete(ctx, id); err != nil {
		return nil, errs.NewDatabaseError("delete", "notification", err)
	}
	unread, err := n.unreadCount(ctx, n.store, recipientID)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "notifications", err)
	}
	return &DeleteResult{DeletedID: id, UnreadCount: unread}, nil
}

type DeleteManyResult struct {
	DeletedCount  int64 `json:"deletedCount"`
	UnreadCount   int64 `json:"unreadCount"`
	UnreadDeleted int   `json:"unreadDeleted"`
}

// DeleteMany removes the given notifications. Every id has to belong to the recipient.
func (n *Notifications) DeleteMany(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (*DeleteManyResult, error) {
	ids = uniqueIDs(ids)
	var result DeleteManyResult
	err := n.store.Transaction(ctx, func(tx models.Store) error {
		owned, err := n.ownedBatch(ctx, tx, recipientID, ids, "You can only delete your own notifications")
		if err != nil {
			return err
		}
		for _, notification := range owned {
			if !notification.Read {
				result.UnreadDeleted++
			}
		}

		result.DeletedCount, err = tx.Notifications().DeleteMany(ctx, recipientID, ids)
		if err != nil {
			return errs.NewDatabaseError("delete", "notifications", err)
		}
		result.UnreadCount, err = n.unreadCount(ctx, tx, recipientID)
		if err != nil {
			return errs.NewDatabaseError("count", "notifications", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", "notifications", err)
	}
	return &result, nil
}

type DeleteAllResult struct {
	DeletedCount  int64 `json:"deletedCount"`
	UnreadDeleted int64 `json:"unreadDeleted"`
	UnreadCount   int64 `json:"unreadCount"`
}

func (n *Notifications) DeleteAll(ctx context.Context, recipientID uuid.UUID) (*DeleteAllResult, error) {
	var result DeleteAllResult
	err := n.store.Transaction(ctx, func(tx models.Store) error {
		unread, err := n.unreadCount(ctx, tx, recipientID)
		if err != nil {
			return errs.NewDatabaseError("count", "notifications", err)
		}
		deleted, err := tx.Notifications().DeleteAll(ctx, recipientID)
		if err != nil {
			return errs.NewDatabaseError("delete", "notifications", err)
		}
		result = DeleteAllResult{DeletedCount: deleted, UnreadDeleted: unread}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", "notifications", err)
	}
	return &result, nil
}

// owned loads a notification and checks it was sent to recipientID. Missing comes before forbidden.
func (n *Notifications) owned(ctx context.Context, recipientID, id uuid.UUID, action string) (*models.Notification, error) {
	notification, err := n.store.Notifications().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "notification", err)
	}
	if notification == nil {
		return nil, errs.NewNotFoundError("Notification not found")
	}
	if notification.RecipientID != recipientID {
		return nil, errs.NewForbiddenError("Unauthorized. You can only " + action + " your own notifications")
	}
	return notification, nil
}

func (n *Notifications) ownedBatch(ctx context.Context, store models.Store, recipientID uuid.UUID, ids []uuid.UUID, details string) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, errs.NewBadRequestError("At least one notification ID is required")
	}
	if len(ids) > MaxNotificationBatch {
		return nil, errs.NewBadRequestError("Cannot process more than 50 notifications at once")
	}

	owned, err := store.Notifications().FindOwned(ctx, recipientID, ids)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "notifications", err)
	}
	if len(owned) != len(ids) {
		return nil, errs.NewForbiddenError("Some notifications not found or unauthorized").WithDetails(details)
	}
	return owned, nil
}

func (n *Notifications) unreadCount(ctx context.Context, store models.Store, recipientID uuid.UUID) (int64, error) {
	return store.Notifications().Count(ctx, models.NotificationFilter{RecipientID: recipientID, UnreadOnly: true})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
