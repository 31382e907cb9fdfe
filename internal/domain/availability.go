// Package domain contains the core types for the booking widget: availability
// tiers, day entries, time slots, and lead records. Priority classification is
// owned by the booking backend; these types carry its decisions, they never
// re-derive them.
package domain

import "fmt"

// =============================================================================
// Tiers
// =============================================================================

// Tier identifies one of the four fixed availability tiers. The backend
// classifies every day into a tier; the widget only decides how each tier is
// drawn.
type Tier string

const (
	TierCritical Tier = "critical"
	TierUrgent   Tier = "urgent"
	TierWarm     Tier = "warm"
	TierCooling  Tier = "cooling"
)

// TierOrder is the fixed rendering order. The widget never re-sorts tiers or
// the days within them.
var TierOrder = []Tier{TierCritical, TierUrgent, TierWarm, TierCooling}

// Density describes how a tier's days are laid out.
type Density string

const (
	// DensityList renders one detailed row per day (date, message, count).
	DensityList Density = "list"
	// DensityGrid renders compact cells (weekday, day number, count).
	DensityGrid Density = "grid"
)

// Density returns the layout for the tier. Critical and urgent days carry a
// message and conversion hint, so they get the detailed list; warm and cooling
// compress into a grid.
func (t Tier) Density() Density {
	switch t {
	case TierCritical, TierUrgent:
		return DensityList
	default:
		return DensityGrid
	}
}

// Label returns the display heading for the tier.
func (t Tier) Label() string {
	switch t {
	case TierCritical:
		return "Book now"
	case TierUrgent:
		return "Filling fast"
	case TierWarm:
		return "Good availability"
	case TierCooling:
		return "Wide open"
	default:
		return string(t)
	}
}

// BadgeClasses returns the tailwind classes for the tier's slot-count badge.
func (t Tier) BadgeClasses() string {
	switch t {
	case TierCritical:
		return "bg-red-100 text-red-800"
	case TierUrgent:
		return "bg-orange-100 text-orange-800"
	case TierWarm:
		return "bg-amber-100 text-amber-800"
	case TierCooling:
		return "bg-sky-100 text-sky-800"
	default:
		return "bg-gray-100 text-gray-600"
	}
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCritical, TierUrgent, TierWarm, TierCooling:
		return true
	}
	return false
}

// =============================================================================
// Day Entries
// =============================================================================

// DayEntry is one bookable calendar day as classified by the backend. Every
// field, including the priority label and score, arrives pre-computed; the
// widget displays them as-is.
type DayEntry struct {
	Date           string  `json:"date"`     // ISO date, e.g. "2026-09-03"
	Weekday        string  `json:"weekday"`  // e.g. "Thursday"
	Month          string  `json:"month"`    // e.g. "September"
	DayNumber      int     `json:"day_number"`
	AvailableCount int     `json:"available_count"`
	Priority       string  `json:"priority"` // Backend priority label
	Color          string  `json:"color"`
	Icon           string  `json:"icon"`
	ConversionRate string  `json:"conversion_rate"`
	Message        string  `json:"message"`
	PriorityScore  float64 `json:"priority_score"` // Reserved by the backend; not consumed here
}

// Selectable reports whether the day can be clicked. Fully booked days are
// still rendered, but muted and disabled.
func (d DayEntry) Selectable() bool {
	return d.AvailableCount > 0
}

// WeekdayAbbrev returns the three-letter weekday used by grid cells.
func (d DayEntry) WeekdayAbbrev() string {
	if len(d.Weekday) <= 3 {
		return d.Weekday
	}
	return d.Weekday[:3]
}

// TierGroup is one tier's worth of days as returned by the backend.
type TierGroup struct {
	Label      string     `json:"label"`
	Days       []DayEntry `json:"days"`
	TotalSlots int        `json:"total_slots"`
}

// Empty reports whether the group has no days and should not render.
func (g TierGroup) Empty() bool {
	return len(g.Days) == 0
}

// Heatmap is the full heat-map response for a postcode and day horizon.
// Tier groups arrive keyed by tier; Groups walks them in the fixed order.
type Heatmap struct {
	Region      string             `json:"region"`
	AreaName    string             `json:"service_area_name"`
	AreaBlurb   string             `json:"service_area_description"`
	Tiers       map[Tier]TierGroup `json:"tiers"`
	TotalSlots  int                `json:"total_slots"`
}

// RenderedGroup pairs a tier with its group for template iteration.
type RenderedGroup struct {
	Tier  Tier
	Group TierGroup
}

// Groups returns the non-empty tier groups in the fixed tier order.
func (h Heatmap) Groups() []RenderedGroup {
	out := make([]RenderedGroup, 0, len(TierOrder))
	for _, t := range TierOrder {
		g, ok := h.Tiers[t]
		if !ok || g.Empty() {
			continue
		}
		out = append(out, RenderedGroup{Tier: t, Group: g})
	}
	return out
}

// Empty reports whether the heat-map carries no bookable days at all.
func (h Heatmap) Empty() bool {
	return len(h.Groups()) == 0
}

// =============================================================================
// Time Slots
// =============================================================================

// Period tags a slot's part of day. Assigned by the backend; the widget only
// buckets by it.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// PeriodOrder is the fixed bucket order for the slot picker.
var PeriodOrder = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

// Title returns the bucket heading.
func (p Period) Title() string {
	switch p {
	case PeriodMorning:
		return "Morning"
	case PeriodAfternoon:
		return "Afternoon"
	case PeriodEvening:
		return "Evening"
	default:
		return string(p)
	}
}

// Icon returns the bucket's emoji marker.
func (p Period) Icon() string {
	switch p {
	case PeriodMorning:
		return "🌅"
	case PeriodAfternoon:
		return "☀️"
	case PeriodEvening:
		return "🌆"
	default:
		return ""
	}
}

// TimeSlot is one bookable appointment slot within a day.
type TimeSlot struct {
	ID       string `json:"id"`
	StartsAt string `json:"starts_at"` // ISO datetime
	Display  string `json:"display"`   // e.g. "9:30 AM"
	Hour     int    `json:"hour"`      // Hour of day, 0-23
	Period   Period `json:"period"`
}

// Meridiem derives the AM/PM designation reported when a slot is selected.
// Noon counts as PM.
func Meridiem(hour int) string {
	if hour < 12 {
		return "AM"
	}
	return "PM"
}

// DaySlots is the slot listing for a single date.
type DaySlots struct {
	Region      string     `json:"region"`
	AreaName    string     `json:"service_area_name"`
	Date        string     `json:"date"`
	DateDisplay string     `json:"date_display"`
	TotalSlots  int        `json:"total_slots"`
	Slots       []TimeSlot `json:"slots"`
}

// Empty reports whether the day has no bookable slots, which renders an
// explicit empty-state message instead of period buckets.
func (d DaySlots) Empty() bool {
	return d.TotalSlots == 0
}

// PeriodBucket is one part-of-day group of slots.
type PeriodBucket struct {
	Period Period
	Slots  []TimeSlot
}

// PartitionSlots buckets slots by their backend-assigned period tag,
// preserving order within each bucket and omitting empty buckets. Every slot
// must land in exactly one bucket; a slot with an unknown tag fails the whole
// partition rather than being silently dropped.
func PartitionSlots(slots []TimeSlot) ([]PeriodBucket, error) {
	byPeriod := make(map[Period][]TimeSlot, len(PeriodOrder))
	for _, s := range slots {
		switch s.Period {
		case PeriodMorning, PeriodAfternoon, PeriodEvening:
			byPeriod[s.Period] = append(byPeriod[s.Period], s)
		default:
			return nil, fmt.Errorf("slot %s has unknown period %q", s.ID, s.Period)
		}
	}

	buckets := make([]PeriodBucket, 0, len(PeriodOrder))
	for _, p := range PeriodOrder {
		if len(byPeriod[p]) == 0 {
			continue
		}
		buckets = append(buckets, PeriodBucket{Period: p, Slots: byPeriod[p]})
	}
	return buckets, nil
}
