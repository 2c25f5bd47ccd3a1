package service

import (
	"context"
	"errors"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/metrics"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
)

// EmptyReportMessage is returned instead of calling the generator when the
// selected day has no bookings.
const EmptyReportMessage = "There are no bookings for the selected date to generate a report from."

// BookingSnapshotter provides read-only copies of bookings.
type BookingSnapshotter interface {
	Snapshot(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
}

// ReportService summarizes one day of bookings through an external generator.
// It only reads snapshots, so a slow generator never holds up booking writes.
type ReportService struct {
	bookings  BookingSnapshotter
	generator domain.ReportGenerator
	timeout   time.Duration
	logger    *zerolog.Logger
}

func NewReportService(bookings BookingSnapshotter, generator domain.ReportGenerator, timeout time.Duration, logger *zerolog.Logger) *ReportService {
	if timeout <= 0 {
		timeout = models.DefaultReportTimeout * time.Second
	}
	return &ReportService{bookings: bookings, generator: generator, timeout: timeout, logger: logger}
}

func (s *ReportService) DailyReport(ctx context.Context, date string) (string, error) {
	if _, err := models.ParseDate(date); err != nil {
		return "", domain.Validation(err.Error())
	}
	bookings, err := s.bookings.Snapshot(ctx, models.BookingFilter{Date: date})
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		metrics.IncReport("empty")
		return EmptyReportMessage, nil
	}
	if s.generator == nil {
		metrics.IncReport("error")
		return "", domain.External("Report generation is not configured.", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Summarize(ctx, bookings)
	if err != nil {
		metrics.IncReport("error")
		s.logger.Warn().Err(err).Str("date", date).Int("bookings", len(bookings)).Msg("report generation failed")
		if errors.Is(err, domain.ErrExternalService) {
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", domain.External("Report generation timed out. Please try again.", err)
		}
		return "", domain.External("Report generation failed. Please try again.", err)
	}

	metrics.IncReport("ok")
	return text, nil
}
