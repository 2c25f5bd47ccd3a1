package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/events"
	"facilitybook/internal/metrics"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
)

// Sink receives full snapshots of the user and booking collections.
type Sink interface {
	Name() string
	Sync(ctx context.Context, users []*models.User, bookings []*models.Booking) error
}

// PersistenceSink adapts a persistence collaborator to a Sink.
type PersistenceSink struct {
	name  string
	store domain.Persistence
}

func NewPersistenceSink(name string, store domain.Persistence) *PersistenceSink {
	return &PersistenceSink{name: name, store: store}
}

func (s *PersistenceSink) Name() string { return s.name }

func (s *PersistenceSink) Sync(ctx context.Context, users []*models.User, bookings []*models.Booking) error {
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := s.store.SaveBookings(ctx, bookings); err != nil {
		return fmt.Errorf("save bookings: %w", err)
	}
	return nil
}

// SyncWorker flushes store snapshots to every sink after mutation events.
// Requests coalesce: a burst of events while a flush is pending yields one flush.
type SyncWorker struct {
	users    domain.UserStore
	bookings domain.BookingStore
	sinks    []Sink
	retry    RetryPolicy
	queue    chan string
	logger   *zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewSyncWorker(users domain.UserStore, bookings domain.BookingStore, sinks []Sink, retry RetryPolicy, logger *zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		users:    users,
		bookings: bookings,
		sinks:    sinks,
		retry:    retry.withDefaults(),
		queue:    make(chan string, models.SyncQueueSize),
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Subscribe schedules a flush for every booking and user event on the bus.
func (w *SyncWorker) Subscribe(bus *events.EventBus) {
	types := append(append([]string(nil), events.BookingEvents...), events.UserEvents...)
	bus.Subscribe(func(event *events.Event) error {
		w.Schedule(event.Type)
		return nil
	}, types...)
}

// Schedule requests a flush without blocking. A full queue already holds a
// pending flush that will observe the latest state.
func (w *SyncWorker) Schedule(reason string) {
	select {
	case w.queue <- reason:
	default:
		w.logger.Debug().Str("reason", reason).Msg("sync already pending")
	}
}

// Start processes flush requests until ctx is done, then performs a final
// flush if requests are still queued.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info().Int("sinks", len(w.sinks)).Msg("sync worker started")
	defer w.logger.Info().Msg("sync worker stopped")

	for {
		select {
		case <-ctx.Done():
			if w.drain() > 0 {
				flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := w.flushOnce(flushCtx); err != nil {
					w.logger.Error().Err(err).Msg("final sync failed")
				}
				cancel()
			}
			return
		case reason := <-w.queue:
			n := w.drain() + 1
			w.logger.Debug().Str("reason", reason).Int("coalesced", n).Msg("sync requested")
			if err := w.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error().Err(err).Msg("sync failed")
			}
		}
	}
}

func (w *SyncWorker) drain() int {
	n := 0
	for {
		select {
		case <-w.queue:
			n++
		default:
			return n
		}
	}
}

// Flush writes the current snapshot to every sink, retrying each with backoff.
func (w *SyncWorker) Flush(ctx context.Context) error {
	users, bookings, err := w.snapshot(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, sink := range w.sinks {
		if err := w.syncWithRetry(ctx, sink, users, bookings); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// flushOnce writes to every sink without retrying.
func (w *SyncWorker) flushOnce(ctx context.Context) error {
	users, bookings, err := w.snapshot(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Sync(ctx, users, bookings); err != nil {
			metrics.IncSyncFailure(sink.Name())
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (w *SyncWorker) snapshot(ctx context.Context) ([]*models.User, []*models.Booking, error) {
	users, err := w.users.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot users: %w", err)
	}
	bookings, err := w.bookings.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot bookings: %w", err)
	}
	return users, bookings, nil
}

func (w *SyncWorker) syncWithRetry(ctx context.Context, sink Sink, users []*models.User, bookings []*models.Booking) error {
	var lastErr error
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		lastErr = sink.Sync(ctx, users, bookings)
		if lastErr == nil {
			return nil
		}
		metrics.IncSyncFailure(sink.Name())
		if attempt == w.retry.MaxRetries {
			break
		}

		delay := w.retry.NextDelay(attempt)
		w.logger.Warn().Err(lastErr).
			Str("sink", sink.Name()).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("sync attempt failed")
		if err := w.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", w.retry.MaxRetries, lastErr)
}
