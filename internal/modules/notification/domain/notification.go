package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationKind categorizes the event behind a notification. The delivery
// fabric treats it as opaque.
type NotificationKind string

const (
	KindMention NotificationKind = "mention"
	KindFollow  NotificationKind = "follow"
	KindReply   NotificationKind = "reply"
	KindLike    NotificationKind = "like"
	KindWelcome NotificationKind = "welcome"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	ActorID   *uuid.UUID       `json:"actor_id,omitempty" db:"actor_id"`
	ActorName string           `json:"actor_name,omitempty" db:"actor_name"`
	PostID    *uuid.UUID       `json:"post_id,omitempty" db:"post_id"`
	Preview   string           `json:"preview,omitempty" db:"preview"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotOwner             = errors.New("notification does not belong to caller")
)
