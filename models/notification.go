package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LikeNotificationMessage = "liked your blog"
)

// CommentNotificationMessage is the message sent to a blog author when someone comments.
func CommentNotificationMessage(title string) string {
	return `commented on your blog: "` + title + `"`
}

type Notification struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	ActorID     uuid.UUID `json:"actorId" gorm:"type:uuid;not null"`
	RecipientID uuid.UUID `json:"recipientId" gorm:"type:uuid;not null;index:idx_notification_recipient_read"`
	BlogID      uuid.UUID `json:"blogId" gorm:"type:uuid;not null;index"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	Read        bool      `json:"read" gorm:"not null;default:false;index:idx_notification_recipient_read"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`

	Actor *Author  `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
	Blog  *BlogRef `json:"blog,omitempty" gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NotificationFilter selects a recipient's notifications.
type NotificationFilter struct {
	RecipientID uuid.UUID
	UnreadOnly  bool
}
