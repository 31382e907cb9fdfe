package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joshacw/chf-enquiries-map/internal/backend"
	"github.com/joshacw/chf-enquiries-map/internal/domain"
	"github.com/joshacw/chf-enquiries-map/internal/metrics"
)

// LeadService fetches lead records for the panel. One fetch per lead ID; the
// record lives only in view state.
type LeadService interface {
	Get(ctx context.Context, leadID string) (*domain.LeadRecord, error)
}

type leadService struct {
	client backend.Client
	logger *slog.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(client backend.Client, logger *slog.Logger) LeadService {
	return &leadService{
		client: client,
		logger: logger,
	}
}

// Get fetches a single lead record.
func (s *leadService) Get(ctx context.Context, leadID string) (*domain.LeadRecord, error) {
	const op = "lead.get"

	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return nil, domain.Invalid(op, "A lead ID is required.")
	}
	if s.client == nil {
		return nil, domain.Unavailable(op, "The booking service is not configured.")
	}

	start := time.Now()
	var out domain.LeadRecord
	err := s.client.Invoke(ctx, backend.FnGetLead, backend.LeadRequest{LeadID: leadID}, &out)
	metrics.BackendCallDuration.WithLabelValues(backend.FnGetLead).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = domain.ErrorCode(err)
	}
	metrics.BackendCallsTotal.WithLabelValues(backend.FnGetLead, status).Inc()

	if err != nil {
		return nil, err
	}

	s.logger.Info("lead fetched", "lead_id", out.ID, "sections", len(out.Sections))
	return &out, nil
}
