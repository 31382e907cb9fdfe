package domain

// =============================================================================
// Lead Records
// =============================================================================

// SectionID identifies one of the fixed lead-panel sections. The set is
// closed: handling switches over every constant rather than walking a
// string-keyed map, so an unknown section from the backend is ignored instead
// of rendered.
type SectionID string

const (
	SectionContact        SectionID = "contact"
	SectionLeadManagement SectionID = "lead_management"
	SectionProperty       SectionID = "property"
	SectionWaterAssess    SectionID = "water_assessment"
	SectionAppointment    SectionID = "appointment"
	SectionReferrals      SectionID = "referrals"
	SectionSalesNotes     SectionID = "sales_notes"
	SectionStatusFlags    SectionID = "status_flags"
)

// SectionOrder is the fixed display order of the lead panel. No reordering,
// filtering, or search.
var SectionOrder = []SectionID{
	SectionContact,
	SectionLeadManagement,
	SectionProperty,
	SectionWaterAssess,
	SectionAppointment,
	SectionReferrals,
	SectionSalesNotes,
	SectionStatusFlags,
}

// Title returns the section heading. Exhaustive over the SectionID constants.
func (s SectionID) Title() string {
	switch s {
	case SectionContact:
		return "Contact"
	case SectionLeadManagement:
		return "Lead Management"
	case SectionProperty:
		return "Property"
	case SectionWaterAssess:
		return "Water Assessment"
	case SectionAppointment:
		return "Appointment"
	case SectionReferrals:
		return "Referrals"
	case SectionSalesNotes:
		return "Sales Notes"
	case SectionStatusFlags:
		return "Status Flags"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known sections.
func (s SectionID) Valid() bool {
	for _, known := range SectionOrder {
		if s == known {
			return true
		}
	}
	return false
}

// LeadField is one displayable field inside a section: a presentation label
// and an optional value. An empty value is not an error, it just renders in
// the de-emphasized "empty fields" disclosure instead of the primary grid.
type LeadField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// Populated reports whether the field carries a display value.
func (f LeadField) Populated() bool {
	return f.Value != ""
}

// LeadSection is an ordered list of fields for one section.
type LeadSection struct {
	Fields []LeadField `json:"fields"`
}

// PopulatedFields returns the fields that render in the primary grid.
func (s LeadSection) PopulatedFields() []LeadField {
	var out []LeadField
	for _, f := range s.Fields {
		if f.Populated() {
			out = append(out, f)
		}
	}
	return out
}

// EmptyFields returns the fields with no value, shown in the collapsed
// sub-list.
func (s LeadSection) EmptyFields() []LeadField {
	var out []LeadField
	for _, f := range s.Fields {
		if !f.Populated() {
			out = append(out, f)
		}
	}
	return out
}

// LeadRecord is a previously captured enquiry as returned by the backend.
// Pure presentation data; nothing is derived or mutated here.
type LeadRecord struct {
	ID       string                    `json:"id"`
	Name     string                    `json:"name"`
	Sections map[SectionID]LeadSection `json:"sections"`
}

// RenderedSection pairs a section ID with its data for template iteration.
type RenderedSection struct {
	ID      SectionID
	Section LeadSection
}

// OrderedSections returns the record's sections in the fixed panel order,
// including sections the backend sent empty (they still render, with every
// field in the empty-field disclosure). Unknown keys are dropped.
func (l LeadRecord) OrderedSections() []RenderedSection {
	out := make([]RenderedSection, 0, len(SectionOrder))
	for _, id := range SectionOrder {
		sec, ok := l.Sections[id]
		if !ok {
			continue
		}
		out = append(out, RenderedSection{ID: id, Section: sec})
	}
	return out
}

// =============================================================================
// Panel State
// =============================================================================

// PanelState tracks which lead-panel sections are expanded. The default panel
// is fully expanded. State round-trips through htmx requests via Encode and
// DecodePanelState.
type PanelState struct {
	expanded map[SectionID]bool
}

// NewPanelState returns a fully expanded panel.
func NewPanelState() PanelState {
	s := PanelState{expanded: make(map[SectionID]bool, len(SectionOrder))}
	for _, id := range SectionOrder {
		s.expanded[id] = true
	}
	return s
}

// DecodePanelState rebuilds panel state from an encoded list of expanded
// section IDs (the form value posted by the panel). Unknown IDs are ignored.
func DecodePanelState(ids []string) PanelState {
	s := PanelState{expanded: make(map[SectionID]bool, len(ids))}
	for _, raw := range ids {
		id := SectionID(raw)
		if id.Valid() {
			s.expanded[id] = true
		}
	}
	return s
}

// Encode returns the expanded section IDs in panel order.
func (s PanelState) Encode() []string {
	out := make([]string, 0, len(s.expanded))
	for _, id := range SectionOrder {
		if s.expanded[id] {
			out = append(out, string(id))
		}
	}
	return out
}

// IsExpanded reports whether the section is open.
func (s PanelState) IsExpanded(id SectionID) bool {
	return s.expanded[id]
}

// Toggle flips one section.
func (s PanelState) Toggle(id SectionID) PanelState {
	next := PanelState{expanded: make(map[SectionID]bool, len(SectionOrder))}
	for k, v := range s.expanded {
		next.expanded[k] = v
	}
	if !id.Valid() {
		return next
	}
	if next.expanded[id] {
		delete(next.expanded, id)
	} else {
		next.expanded[id] = true
	}
	return next
}

// ExpandAll opens every section.
func (s PanelState) ExpandAll() PanelState {
	return NewPanelState()
}

// CollapseAll closes every section.
func (s PanelState) CollapseAll() PanelState {
	return PanelState{expanded: make(map[SectionID]bool)}
}

// AllExpanded reports whether every section is open; the "Expand all" control
// is disabled in that state.
func (s PanelState) AllExpanded() bool {
	for _, id := range SectionOrder {
		if !s.expanded[id] {
			return false
		}
	}
	return true
}

// AllCollapsed reports whether no section is open; the "Collapse all" control
// is disabled in that state.
func (s PanelState) AllCollapsed() bool {
	for _, id := range SectionOrder {
		if s.expanded[id] {
			return false
		}
	}
	return true
}
