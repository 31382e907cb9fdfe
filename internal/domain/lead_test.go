package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionTitle_CoversEverySection(t *testing.T) {
	for _, id := range SectionOrder {
		assert.NotEqual(t, string(id), id.Title(), "section %s has no title", id)
	}
}

func TestOrderedSections_FixedOrderDropsUnknown(t *testing.T) {
	rec := LeadRecord{
		ID: "lead-1",
		Sections: map[SectionID]LeadSection{
			SectionAppointment: {Fields: []LeadField{{Key: "date", Label: "Date", Value: "2026-09-01"}}},
			SectionContact:     {Fields: []LeadField{{Key: "phone", Label: "Phone"}}},
			SectionID("mystery"): {},
		},
	}

	secs := rec.OrderedSections()
	require.Len(t, secs, 2)
	assert.Equal(t, SectionContact, secs[0].ID)
	assert.Equal(t, SectionAppointment, secs[1].ID)
}

func TestLeadSectionFieldSplit(t *testing.T) {
	sec := LeadSection{Fields: []LeadField{
		{Key: "name", Label: "Name", Value: "Dana"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone", Value: "0400 000 000"},
	}}

	populated := sec.PopulatedFields()
	require.Len(t, populated, 2)
	assert.Equal(t, "name", populated[0].Key)
	assert.Equal(t, "phone", populated[1].Key)

	empty := sec.EmptyFields()
	require.Len(t, empty, 1)
	assert.Equal(t, "email", empty[0].Key)
}

func TestPanelState_DefaultsFullyExpanded(t *testing.T) {
	s := NewPanelState()
	assert.True(t, s.AllExpanded())
	assert.False(t, s.AllCollapsed())
	for _, id := range SectionOrder {
		assert.True(t, s.IsExpanded(id))
	}
}

func TestPanelState_ExpandCollapseAll(t *testing.T) {
	s := NewPanelState().CollapseAll()
	assert.True(t, s.AllCollapsed())
	assert.Empty(t, s.Encode())

	s = s.ExpandAll()
	assert.True(t, s.AllExpanded())
	assert.Len(t, s.Encode(), len(SectionOrder))

	// Expand-all on an already expanded panel stays fully expanded; the
	// control renders disabled in that state.
	assert.True(t, s.ExpandAll().AllExpanded())
	assert.True(t, s.CollapseAll().CollapseAll().AllCollapsed())
}

func TestPanelState_Toggle(t *testing.T) {
	s := NewPanelState().Toggle(SectionProperty)
	assert.False(t, s.IsExpanded(SectionProperty))
	assert.False(t, s.AllExpanded())
	assert.False(t, s.AllCollapsed())

	s = s.Toggle(SectionProperty)
	assert.True(t, s.IsExpanded(SectionProperty))
	assert.True(t, s.AllExpanded())

	// Toggling an unknown section changes nothing.
	s = s.Toggle(SectionID("bogus"))
	assert.True(t, s.AllExpanded())
}

func TestPanelState_EncodeDecodeRoundTrip(t *testing.T) {
	s := NewPanelState().Toggle(SectionReferrals).Toggle(SectionSalesNotes)
	decoded := DecodePanelState(s.Encode())

	for _, id := range SectionOrder {
		assert.Equal(t, s.IsExpanded(id), decoded.IsExpanded(id), "section %s", id)
	}
}

func TestDecodePanelState_IgnoresUnknownIDs(t *testing.T) {
	s := DecodePanelState([]string{"contact", "nonsense"})
	assert.True(t, s.IsExpanded(SectionContact))
	assert.False(t, s.IsExpanded(SectionID("nonsense")))
	enc := s.Encode()
	require.Len(t, enc, 1)
	assert.Equal(t, "contact", enc[0])
}
