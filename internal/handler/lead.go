package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
	"github.com/joshacw/chf-enquiries-map/internal/service"
)

// =============================================================================
// Template Data Types
// =============================================================================

// LeadPageData contains data for the lead panel page.
type LeadPageData struct {
	CurrentPath string
	Lead        *domain.LeadRecord
	Panel       domain.PanelState
}

// LeadSectionsData contains data for the lead-sections partial.
type LeadSectionsData struct {
	Lead  *domain.LeadRecord
	Panel domain.PanelState
}

// =============================================================================
// Handler Configuration
// =============================================================================

// LeadHandler serves the lead panel. A record is fetched once per lead ID and
// memoized for panel interactions; expand/collapse state lives in the posted
// form, never server side.
type LeadHandler struct {
	leads    service.LeadService
	renderer *Renderer
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]*domain.LeadRecord
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leads service.LeadService, renderer *Renderer, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{
		leads:    leads,
		renderer: renderer,
		logger:   logger,
		cache:    make(map[string]*domain.LeadRecord),
	}
}

// RegisterRoutes registers the lead panel routes.
//
// Routes:
//   - GET  /leads/{id}        -> lead panel page
//   - POST /leads/{id}/panel  -> section state update (htmx)
func (h *LeadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /leads/{id}", h.Show)
	mux.HandleFunc("POST /leads/{id}/panel", h.UpdatePanel)
}

// Show displays the lead panel, fully expanded.
func (h *LeadHandler) Show(w http.ResponseWriter, r *http.Request) {
	lead, err := h.lead(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "lead", LeadPageData{
		CurrentPath: r.URL.Path,
		Lead:        lead,
		Panel:       domain.NewPanelState(),
	})
}

// UpdatePanel applies a section state change and re-renders the panel body.
// The form carries the current expanded sections plus the requested action:
// "toggle" (with a section ID), "expand-all", or "collapse-all".
func (h *LeadHandler) UpdatePanel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("lead.panel", "Malformed form submission."))
		return
	}

	lead, err := h.lead(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	panel := domain.DecodePanelState(r.PostForm["expanded"])

	switch action := r.PostFormValue("action"); action {
	case "toggle":
		panel = panel.Toggle(domain.SectionID(r.PostFormValue("section")))
	case "expand-all":
		panel = panel.ExpandAll()
	case "collapse-all":
		panel = panel.CollapseAll()
	default:
		ErrorResponse(w, r, h.logger, domain.Invalid("lead.panel", "Unknown panel action."))
		return
	}

	h.renderer.RenderPartial(w, "lead-sections", LeadSectionsData{
		Lead:  lead,
		Panel: panel,
	})
}

// lead returns the memoized record for an ID, fetching on first use.
func (h *LeadHandler) lead(ctx context.Context, id string) (*domain.LeadRecord, error) {
	h.mu.Lock()
	cached, ok := h.cache[id]
	h.mu.Unlock()
	if ok {
		return cached, nil
	}

	lead, err := h.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.cache[id] = lead
	h.mu.Unlock()
	return lead, nil
}
