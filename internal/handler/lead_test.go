package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
)

// stubLeads counts fetches so memoization is observable.
type stubLeads struct {
	lead  *domain.LeadRecord
	err   error
	calls int
}

func (s *stubLeads) Get(ctx context.Context, leadID string) (*domain.LeadRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lead, nil
}

func testLead() *domain.LeadRecord {
	return &domain.LeadRecord{
		ID:   "lead-42",
		Name: "Pat Morgan",
		Sections: map[domain.SectionID]domain.LeadSection{
			domain.SectionContact: {Fields: []domain.LeadField{
				{Key: "phone", Label: "Phone", Value: "0400 000 000"},
				{Key: "email", Label: "Email"},
			}},
			domain.SectionProperty: {Fields: []domain.LeadField{
				{Key: "dwelling", Label: "Dwelling", Value: "House"},
			}},
			domain.SectionSalesNotes: {},
		},
	}
}

func leadRequest(method, target, id string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.SetPathValue("id", id)
	return req
}

func TestLeadShow_RendersSectionsInOrder(t *testing.T) {
	svc := &stubLeads{lead: testLead()}
	h := NewLeadHandler(svc, newTestRenderer(t), discardLogger())

	rec := httptest.NewRecorder()
	h.Show(rec, leadRequest("GET", "/leads/lead-42", "lead-42", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Pat Morgan")
	assert.Contains(t, body, "Contact")
	assert.Contains(t, body, "Property")
	assert.Contains(t, body, "Sales Notes")
	assert.Less(t, strings.Index(body, "Contact"), strings.Index(body, "Property"))

	// Default panel is fully expanded, so populated fields are visible
	assert.Contains(t, body, "0400 000 000")
	// The empty email field lands in the disclosure, not the grid
	assert.Contains(t, body, "empty fields")
	// Empty section still renders, with a placeholder
	assert.Contains(t, body, "Nothing recorded yet.")
}

func TestLeadShow_NotFound(t *testing.T) {
	svc := &stubLeads{err: domain.NotFound("lead.get", "lead", "nope")}
	h := NewLeadHandler(svc, newTestRenderer(t), discardLogger())

	rec := httptest.NewRecorder()
	h.Show(rec, leadRequest("GET", "/leads/nope", "nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadShow_FetchesOncePerID(t *testing.T) {
	svc := &stubLeads{lead: testLead()}
	h := NewLeadHandler(svc, newTestRenderer(t), discardLogger())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.Show(rec, leadRequest("GET", "/leads/lead-42", "lead-42", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, svc.calls)
}

func TestUpdatePanel_ToggleCollapsesSection(t *testing.T) {
	svc := &stubLeads{lead: testLead()}
	h := NewLeadHandler(svc, newTestRenderer(t), discardLogger())

	form := url.Values{
		"expanded": domain.NewPanelState().Encode(),
		"action":   {"toggle"},
		"section":  {"contact"},
	}
	rec := httptest.NewRecorder()
	h.UpdatePanel(rec, leadRequest("POST", "/leads/lead-42/panel", "lead-42", form))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	// Contact is now collapsed: heading present, field hidden
	assert.Contains(t, body, "Contact")
	assert.NotContains(t, body, "0400 000 000")
	// Property stays expanded
	assert.Contains(t, body, "House")
}

func TestUpdatePanel_CollapseAllThenExpandAll(t *testing.T) {
	svc := &stubLeads{lead: testLead()}
	h := NewLeadHandler(svc, newTestRenderer(t), discardLogger())

	form := url.Values{
		"expanded": domain.NewPanelState().Encode(),
		"action":   {"collapse-all"},
	}
	rec := httptest.NewRecorder()
	h.UpdatePanel(rec, leadRequest("POST", "/leads/lead-42/panel", "lead-42", form))

	require.Equal(t, http.StatusOK, rec.Code)
	collapsed := rec.Body.String()
	assert.NotContains(t, collapsed, "0400 000 000")
	assert.NotContains(t, collapsed, "House")

	// From the collapsed state, expand-all restores every section
	form = url.Values{"action": {"expand-all"}}
	rec = httptest.NewRecorder()
	h.UpdatePanel(rec, leadRequest("POST", "/leads/lead-42/panel", "lead-42", form))

	require.Equal(t, http.StatusOK, rec.Code)
	expanded := rec.Body.String()
	assert.Contains(t, expanded, "0400 000 000")
	assert.Contains(t, expanded, "House")
}

func TestUpdatePanel_UnknownActionRejected(t *testing.T) {
	svc := &stubLeads{lead: testLead()}
	h := NewLeadHandler(svc, newTestRenderer(t), discardLogger())

	form := url.Values{"action": {"shuffle"}}
	rec := httptest.NewRecorder()
	h.UpdatePanel(rec, leadRequest("POST", "/leads/lead-42/panel", "lead-42", form))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
