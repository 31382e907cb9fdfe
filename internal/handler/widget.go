// Package handler contains the HTTP handlers for the enquiries booking
// widget: the heat-map calendar, the day slot picker, the lead panel, and the
// service-area map.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
	"github.com/joshacw/chf-enquiries-map/internal/metrics"
	"github.com/joshacw/chf-enquiries-map/internal/service"
)

// =============================================================================
// Template Data Types
// =============================================================================

// WidgetPageData contains data for the booking widget page.
type WidgetPageData struct {
	CurrentPath string
	Instance    string // Widget instance token for the fetch guard
	DaysAhead   int
	Postcode    string // Prefilled postcode, may be empty
}

// TiersData contains data for the tier-sections partial.
type TiersData struct {
	Heatmap   *domain.Heatmap
	Postcode  int
	DaysAhead int
	Instance  string
}

// SlotsData contains data for the day-slot partial.
type SlotsData struct {
	Day      *domain.DaySlots
	Buckets  []domain.PeriodBucket
	Postcode int
	Instance string
}

// SelectionData echoes a confirmed slot selection back to the widget.
type SelectionData struct {
	Date     string
	Meridiem string
	Slot     domain.TimeSlot
}

// =============================================================================
// Handler Configuration
// =============================================================================

// WidgetHandler handles the heat-map and slot-picker requests.
type WidgetHandler struct {
	availability service.AvailabilityService
	guard        *service.Guard
	renderer     *Renderer
	logger       *slog.Logger
	daysAhead    int
}

// NewWidgetHandler creates a new WidgetHandler.
func NewWidgetHandler(
	availability service.AvailabilityService,
	guard *service.Guard,
	renderer *Renderer,
	logger *slog.Logger,
	daysAhead int,
) *WidgetHandler {
	return &WidgetHandler{
		availability: availability,
		guard:        guard,
		renderer:     renderer,
		logger:       logger,
		daysAhead:    daysAhead,
	}
}

// RegisterRoutes registers the widget routes.
//
// Routes:
//   - GET  /                    -> widget page
//   - GET  /availability        -> tier sections partial (htmx)
//   - GET  /availability/slots  -> day slot partial (htmx)
//   - POST /selection           -> slot selection confirmation (htmx)
func (h *WidgetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /availability", h.Availability)
	mux.HandleFunc("GET /availability/slots", h.DaySlots)
	mux.HandleFunc("POST /selection", h.SelectSlot)
}

// Index displays the widget page with an empty heat-map container. Each page
// load gets a fresh instance token so concurrent embeds don't share guard
// state.
func (h *WidgetHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "heatmap", WidgetPageData{
		CurrentPath: r.URL.Path,
		Instance:    uuid.NewString(),
		DaysAhead:   h.daysAhead,
		Postcode:    r.URL.Query().Get("postcode"),
	})
}

// Availability fetches the classified heat-map and renders the tier sections.
// Responses superseded by a newer fetch for the same widget instance are
// discarded; the client keeps whatever the newer fetch rendered.
func (h *WidgetHandler) Availability(w http.ResponseWriter, r *http.Request) {
	postcode, err := parsePostcode(r.URL.Query().Get("postcode"))
	if err != nil {
		RenderFetchError(w, r, h.renderer, h.logger, err, retryAvailabilityURL(r), "#heatmap")
		return
	}

	daysAhead := h.daysAhead
	if raw := r.URL.Query().Get("days"); raw != "" {
		if v, convErr := strconv.Atoi(raw); convErr == nil {
			daysAhead = v
		}
	}

	// Requests without an instance token are unguarded; sharing one slot
	// across unrelated clients would discard responses that belong to
	// nobody else.
	instance := r.URL.Query().Get("widget")
	var seq uint64
	if instance != "" {
		seq = h.guard.Begin(instance)
	}

	heatmap, err := h.availability.Heatmap(r.Context(), postcode, daysAhead)

	if instance != "" && h.guard.Stale(instance, seq) {
		h.logger.Debug("discarding superseded heatmap response", "instance", instance, "seq", seq)
		discardStale(w)
		return
	}
	if err != nil {
		RenderFetchError(w, r, h.renderer, h.logger, err, retryAvailabilityURL(r), "#heatmap")
		return
	}

	h.renderer.RenderPartial(w, "tiers", TiersData{
		Heatmap:   heatmap,
		Postcode:  postcode,
		DaysAhead: daysAhead,
		Instance:  instance,
	})
}

// DaySlots fetches one day's slots and renders the period buckets, or the
// empty-state message when the day has no slots.
func (h *WidgetHandler) DaySlots(w http.ResponseWriter, r *http.Request) {
	postcode, err := parsePostcode(r.URL.Query().Get("postcode"))
	if err != nil {
		RenderFetchError(w, r, h.renderer, h.logger, err, retrySlotsURL(r), "#day-slots")
		return
	}
	date := r.URL.Query().Get("date")

	instance := r.URL.Query().Get("widget")
	var seq uint64
	if instance != "" {
		seq = h.guard.Begin(instance + "/slots")
	}

	day, err := h.availability.DaySlots(r.Context(), postcode, date)

	if instance != "" && h.guard.Stale(instance+"/slots", seq) {
		h.logger.Debug("discarding superseded slot response", "instance", instance, "date", date)
		discardStale(w)
		return
	}
	if err != nil {
		RenderFetchError(w, r, h.renderer, h.logger, err, retrySlotsURL(r), "#day-slots")
		return
	}

	buckets, err := domain.PartitionSlots(day.Slots)
	if err != nil {
		err = domain.Internal(err, "widget.day_slots", "The booking service returned malformed slots.")
		RenderFetchError(w, r, h.renderer, h.logger, err, retrySlotsURL(r), "#day-slots")
		return
	}

	h.renderer.RenderPartial(w, "slots", SlotsData{
		Day:      day,
		Buckets:  buckets,
		Postcode: postcode,
		Instance: instance,
	})
}

// SelectSlot confirms a slot choice. The AM/PM designation is derived from
// the slot's hour field; everything else is echoed back as submitted.
func (h *WidgetHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("widget.select", "Malformed form submission."))
		return
	}

	hour, err := strconv.Atoi(r.PostFormValue("hour"))
	if err != nil || hour < 0 || hour > 23 {
		ErrorResponse(w, r, h.logger, domain.Invalid("widget.select", "Slot hour is missing or out of range."))
		return
	}

	slot := domain.TimeSlot{
		ID:       r.PostFormValue("slot_id"),
		StartsAt: r.PostFormValue("starts_at"),
		Display:  r.PostFormValue("display"),
		Hour:     hour,
		Period:   domain.Period(r.PostFormValue("period")),
	}
	date := r.PostFormValue("date")
	meridiem := domain.Meridiem(hour)

	metrics.SlotSelections.WithLabelValues(meridiem).Inc()
	h.logger.Info("slot selected",
		"date", date,
		"slot_id", slot.ID,
		"meridiem", meridiem,
	)

	h.renderer.RenderPartial(w, "selection", SelectionData{
		Date:     date,
		Meridiem: meridiem,
		Slot:     slot,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// discardStale answers a superseded fetch without content. HX-Reswap: none
// tells htmx to leave the newer content in place.
func discardStale(w http.ResponseWriter) {
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(http.StatusNoContent)
}

// parsePostcode converts the submitted postcode, rejecting non-numeric input
// before it reaches the backend.
func parsePostcode(raw string) (int, error) {
	if raw == "" {
		return 0, domain.Invalid("widget.postcode", "Enter a postcode to see availability.")
	}
	postcode, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid("widget.postcode", "Enter a valid postcode.")
	}
	return postcode, nil
}

func retryAvailabilityURL(r *http.Request) string {
	return fmt.Sprintf("/availability?%s", r.URL.RawQuery)
}

func retrySlotsURL(r *http.Request) string {
	return fmt.Sprintf("/availability/slots?%s", r.URL.RawQuery)
}
