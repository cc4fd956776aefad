package application

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/adityaraina/pulsefeed/internal/modules/notification/domain"
)

// Publisher hands a notification payload to the delivery fabric for fan-out
// to the owner's live connections. Delivery is best effort; the stored record
// stays the source of truth.
type Publisher interface {
	PublishNotification(userID uuid.UUID, notification any)
}

// UnreadCache caches unread counts per user. Implementations must degrade to
// a miss on failure.
type UnreadCache interface {
	Get(ctx context.Context, userID uuid.UUID) (int, bool)
	Set(ctx context.Context, userID uuid.UUID, count int)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// CreateParams describes the event behind a new notification.
type CreateParams struct {
	Kind      domain.NotificationKind
	ActorID   *uuid.UUID
	ActorName string
	PostID    *uuid.UUID
	Preview   string
}

// NotificationService applies notification state transitions with ownership
// enforcement and publishes created notifications to the delivery fabric.
type NotificationService struct {
	repo      domain.NotificationRepository
	publisher Publisher
	cache     UnreadCache
}

func NewNotificationService(repo domain.NotificationRepository, publisher Publisher, cache UnreadCache) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, cache: cache}
}

// Create persists a notification for the owner and fans it out to the
// owner's live connections. Publish failures never fail the create.
func (s *NotificationService) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*domain.Notification, error) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    ownerID,
		Kind:      params.Kind,
		ActorID:   params.ActorID,
		ActorName: params.ActorName,
		PostID:    params.PostID,
		Preview:   params.Preview,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, ownerID)
	s.publisher.PublishNotification(ownerID, notification)

	return notification, nil
}

// Welcome publishes a greeting notification for a freshly registered user.
// Failures are logged and swallowed; registration never depends on delivery.
func (s *NotificationService) Welcome(ctx context.Context, userID uuid.UUID, name string) {
	preview := "Welcome to Pulsefeed!"
	if name != "" {
		preview = "Welcome to Pulsefeed, " + name + "!"
	}

	if _, err := s.Create(ctx, userID, CreateParams{Kind: domain.KindWelcome, Preview: preview}); err != nil {
		log.Printf("failed to create welcome notification for %s: %v", userID, err)
	}
}

// MarkAsRead flips a notification to read. Only the owner may do so; marking
// an already-read notification succeeds unchanged.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, callerID uuid.UUID) (*domain.Notification, error) {
	notification, err := s.loadOwned(ctx, notificationID, callerID)
	if err != nil {
		return nil, err
	}

	if notification.IsRead {
		return notification, nil
	}

	if err := s.repo.MarkAsRead(ctx, notification.ID); err != nil {
		return nil, err
	}
	notification.IsRead = true

	s.cache.Invalidate(ctx, callerID)
	return notification, nil
}

// MarkAllAsRead flips every unread notification of the caller and returns the
// number of records actually changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, callerID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllAsRead(ctx, callerID)
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, callerID)
	return updated, nil
}

// Delete removes a notification permanently and returns its final state for
// client-side reconciliation.
func (s *NotificationService) Delete(ctx context.Context, notificationID, callerID uuid.UUID) (*domain.Notification, error) {
	notification, err := s.loadOwned(ctx, notificationID, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, notification.ID); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, callerID)
	return notification, nil
}

// List returns a page of the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return s.repo.GetByUserID(ctx, callerID, limit, offset)
}

// UnreadCount returns the caller's unread count, served from cache when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, callerID uuid.UUID) (int, error) {
	if count, ok := s.cache.Get(ctx, callerID); ok {
		return count, nil
	}

	count, err := s.repo.UnreadCount(ctx, callerID)
	if err != nil {
		return 0, err
	}

	s.cache.Set(ctx, callerID, count)
	return count, nil
}

// loadOwned resolves existence before ownership, so a missing record is
// NotFound and someone else's record is a Forbidden.
func (s *NotificationService) loadOwned(ctx context.Context, notificationID, callerID uuid.UUID) (*domain.Notification, error) {
	notification, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.UserID != callerID {
		return nil, domain.ErrNotOwner
	}
	return notification, nil
}
