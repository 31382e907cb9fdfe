package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshacw/chf-enquiries-map/internal/backend"
	"github.com/joshacw/chf-enquiries-map/internal/domain"
	"github.com/joshacw/chf-enquiries-map/internal/metrics"
)

// AvailabilityService defines the operations backing the heat-map and slot
// picker. Both fetch fresh data per call; nothing is cached or persisted.
type AvailabilityService interface {
	// Heatmap fetches the tier-classified calendar for a postcode over a
	// day horizon.
	Heatmap(ctx context.Context, postcode, daysAhead int) (*domain.Heatmap, error)

	// DaySlots fetches the bookable slots for a single date.
	DaySlots(ctx context.Context, postcode int, date string) (*domain.DaySlots, error)
}

// availabilityService implements AvailabilityService against the booking
// backend.
type availabilityService struct {
	client backend.Client
	logger *slog.Logger
}

// NewAvailabilityService creates a new AvailabilityService. A nil client is
// accepted so the widget can start without a configured backend; every call
// then fails with the unavailable condition.
func NewAvailabilityService(client backend.Client, logger *slog.Logger) AvailabilityService {
	return &availabilityService{
		client: client,
		logger: logger,
	}
}

// Heatmap fetches the tier-classified calendar for a postcode.
func (s *availabilityService) Heatmap(ctx context.Context, postcode, daysAhead int) (*domain.Heatmap, error) {
	const op = "availability.heatmap"

	if err := validatePostcode(op, postcode); err != nil {
		return nil, err
	}
	if daysAhead < 1 {
		return nil, domain.Invalid(op, "Day horizon must be at least one day.")
	}
	if s.client == nil {
		return nil, domain.Unavailable(op, "The booking service is not configured.")
	}

	metrics.HeatmapRequests.Inc()

	var out domain.Heatmap
	if err := s.invoke(ctx, backend.FnHeatmap, backend.HeatmapRequest{
		Postcode:  postcode,
		DaysAhead: daysAhead,
	}, &out); err != nil {
		return nil, err
	}

	s.logger.Info("heatmap fetched",
		"postcode", postcode,
		"days_ahead", daysAhead,
		"region", out.Region,
		"total_slots", out.TotalSlots,
	)
	return &out, nil
}

// DaySlots fetches the slot list for one date.
func (s *availabilityService) DaySlots(ctx context.Context, postcode int, date string) (*domain.DaySlots, error) {
	const op = "availability.day_slots"

	if err := validatePostcode(op, postcode); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, domain.Invalid(op, "Date must be in YYYY-MM-DD format.")
	}
	if s.client == nil {
		return nil, domain.Unavailable(op, "The booking service is not configured.")
	}

	var out domain.DaySlots
	if err := s.invoke(ctx, backend.FnDaySlots, backend.DaySlotsRequest{
		Postcode: postcode,
		Date:     date,
	}, &out); err != nil {
		return nil, err
	}

	s.logger.Info("day slots fetched",
		"postcode", postcode,
		"date", date,
		"total_slots", out.TotalSlots,
	)
	return &out, nil
}

// invoke wraps a backend call with metrics.
func (s *availabilityService) invoke(ctx context.Context, fn string, in, out any) error {
	start := time.Now()
	err := s.client.Invoke(ctx, fn, in, out)
	metrics.BackendCallDuration.WithLabelValues(fn).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = domain.ErrorCode(err)
	}
	metrics.BackendCallsTotal.WithLabelValues(fn, status).Inc()
	return err
}

// validatePostcode enforces the Australian postcode range.
func validatePostcode(op string, postcode int) error {
	if postcode < 200 || postcode > 9999 {
		return domain.Invalid(op, "Enter a valid postcode.")
	}
	return nil
}
