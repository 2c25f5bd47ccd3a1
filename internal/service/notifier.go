package service

import (
	"context"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/metrics"
	"facilitybook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationService appends notices to opted-in users' feeds.
type NotificationService struct {
	users  domain.UserStore
	feed   domain.NotificationStore
	logger *zerolog.Logger
	now    func() time.Time
}

func NewNotificationService(users domain.UserStore, feed domain.NotificationStore, logger *zerolog.Logger) *NotificationService {
	return &NotificationService{users: users, feed: feed, logger: logger, now: time.Now}
}

// Notify stores an unread notice for userID and reports whether it was kept.
// Unknown recipients and recipients who opted out are dropped silently.
func (s *NotificationService) Notify(ctx context.Context, userID int64, message string) (bool, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			metrics.IncNotification(false)
			return false, nil
		}
		return false, err
	}
	if !user.NotificationEnabled {
		metrics.IncNotification(false)
		s.logger.Debug().Int64("user_id", userID).Msg("notification dropped: user opted out")
		return false, nil
	}

	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.feed.Append(ctx, n); err != nil {
		return false, err
	}
	metrics.IncNotification(true)
	return true, nil
}

func (s *NotificationService) Unread(ctx context.Context, userID int64) ([]*models.Notification, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.feed.ForUser(ctx, userID, true)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return 0, err
	}
	n, err := s.feed.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().Int64("user_id", userID).Int("count", n).Msg("notifications marked read")
	return n, nil
}
