package record

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func datePtr(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func sampleRecords() []*Record {
	return []*Record{
		{Title: "Flu Shot", Type: "prescription", DoctorName: strPtr("Dr. Rao"), ConsultationDate: datePtr("2026-03-01")},
		{Title: "ER Visit", Type: "report", IsEmergency: true, Description: strPtr("broken arm after fall")},
		{Title: "Peanut Allergy", Type: "allergy", DoctorName: strPtr("Dr. Mehta")},
		{Title: "Hypertension", Type: "condition", Description: strPtr("monitored by Dr. Rao"), ConsultationDate: datePtr("2026-03-01")},
	}
}

func titles(records []*Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestApplyFilter_NoActivePredicates(t *testing.T) {
	records := sampleRecords()
	got := ApplyFilter(records, Filter{})
	if len(got) != len(records) {
		t.Fatalf("expected all %d records, got %d", len(records), len(got))
	}
}

func TestApplyFilter_EmergencyOnly(t *testing.T) {
	got := ApplyFilter(sampleRecords(), Filter{EmergencyOnly: true})
	if len(got) != 1 || got[0].Title != "ER Visit" {
		t.Errorf("expected only ER Visit, got %v", titles(got))
	}
}

func TestApplyFilter_SearchMatchesAnyField(t *testing.T) {
	records := sampleRecords()

	// Title match, case-insensitive.
	if got := ApplyFilter(records, Filter{Search: "flu"}); len(got) != 1 || got[0].Title != "Flu Shot" {
		t.Errorf("title search: got %v", titles(got))
	}
	// Doctor name and description both contain "rao".
	if got := ApplyFilter(records, Filter{Search: "RAO"}); len(got) != 2 {
		t.Errorf("doctor/description search: expected 2, got %v", titles(got))
	}
	// Description-only match.
	if got := ApplyFilter(records, Filter{Search: "broken"}); len(got) != 1 || got[0].Title != "ER Visit" {
		t.Errorf("description search: got %v", titles(got))
	}
}

func TestApplyFilter_TypeExact(t *testing.T) {
	got := ApplyFilter(sampleRecords(), Filter{Type: "allergy"})
	if len(got) != 1 || got[0].Title != "Peanut Allergy" {
		t.Errorf("expected only Peanut Allergy, got %v", titles(got))
	}
}

func TestApplyFilter_DateExact(t *testing.T) {
	got := ApplyFilter(sampleRecords(), Filter{ConsultationDate: "2026-03-01"})
	if len(got) != 2 {
		t.Fatalf("expected 2 records on 2026-03-01, got %v", titles(got))
	}
	// Records without a consultation date never match a date filter.
	got = ApplyFilter(sampleRecords(), Filter{ConsultationDate: "1999-01-01"})
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", titles(got))
	}
}

func TestApplyFilter_PredicatesCompose(t *testing.T) {
	records := sampleRecords()
	got := ApplyFilter(records, Filter{Search: "rao", ConsultationDate: "2026-03-01", Type: "condition"})
	if len(got) != 1 || got[0].Title != "Hypertension" {
		t.Errorf("expected only Hypertension, got %v", titles(got))
	}
	// Conflicting predicates AND to nothing.
	got = ApplyFilter(records, Filter{Search: "flu", EmergencyOnly: true})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", titles(got))
	}
}

func TestApplyFilter_PreservesOrder(t *testing.T) {
	records := sampleRecords()
	got := ApplyFilter(records, Filter{ConsultationDate: "2026-03-01"})
	if len(got) != 2 || got[0].Title != "Flu Shot" || got[1].Title != "Hypertension" {
		t.Errorf("expected input order preserved, got %v", titles(got))
	}
}
