package repository

import (
	"context"
	"sync/atomic"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverPersistence writes to primary until it fails, then to fallback.
// The primary is retried once recoveryInterval has passed since the last failure.
type FailoverPersistence struct {
	primary   domain.Persistence
	fallback  domain.Persistence
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverPersistence(primary, fallback domain.Persistence, logger *zerolog.Logger) *FailoverPersistence {
	return &FailoverPersistence{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverPersistence) LoadUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.run("load_users", func(p domain.Persistence) error {
		var err error
		users, err = p.LoadUsers(ctx)
		return err
	})
	return users, err
}

func (r *FailoverPersistence) SaveUsers(ctx context.Context, users []*models.User) error {
	return r.run("save_users", func(p domain.Persistence) error { return p.SaveUsers(ctx, users) })
}

func (r *FailoverPersistence) LoadBookings(ctx context.Context) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.run("load_bookings", func(p domain.Persistence) error {
		var err error
		bookings, err = p.LoadBookings(ctx)
		return err
	})
	return bookings, err
}

func (r *FailoverPersistence) SaveBookings(ctx context.Context, bookings []*models.Booking) error {
	return r.run("save_bookings", func(p domain.Persistence) error { return p.SaveBookings(ctx, bookings) })
}

// Degraded reports whether calls are currently served by the fallback.
func (r *FailoverPersistence) Degraded() bool {
	return r.isDown.Load()
}

func (r *FailoverPersistence) run(op string, call func(domain.Persistence) error) error {
	if r.isDown.Load() && r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval {
		if err := call(r.primary); err == nil {
			r.isDown.Store(false)
			r.logger.Info().Str("op", op).Msg("Primary persistence recovered")
			return nil
		}
		r.lastCheck.Store(r.now().UnixNano())
	}

	if !r.isDown.Load() {
		err := call(r.primary)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Str("op", op).Msg("Primary persistence failed, falling back")
		r.isDown.Store(true)
		r.lastCheck.Store(r.now().UnixNano())
	}

	return call(r.fallback)
}
