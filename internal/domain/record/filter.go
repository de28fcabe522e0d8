package record

import "strings"

// Filter holds the four independent, optional list predicates. Zero values
// mean "no filter".
type Filter struct {
	Search           string
	Type             string
	ConsultationDate string // exact date, 2006-01-02
	EmergencyOnly    bool
}

// IsZero reports whether no predicate is active.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Type == "" && f.ConsultationDate == "" && !f.EmergencyOnly
}

// Matches reports whether a record satisfies every active predicate.
func (f Filter) Matches(r *Record) bool {
	if f.Search != "" && !matchesSearch(r, f.Search) {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.ConsultationDate != "" {
		if r.ConsultationDate == nil || r.ConsultationDate.Format("2006-01-02") != f.ConsultationDate {
			return false
		}
	}
	if f.EmergencyOnly && !r.IsEmergency {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match against title,
// doctor name, and description; any one field matching is enough.
func matchesSearch(r *Record, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(r.Title), needle) {
		return true
	}
	if r.DoctorName != nil && strings.Contains(strings.ToLower(*r.DoctorName), needle) {
		return true
	}
	if r.Description != nil && strings.Contains(strings.ToLower(*r.Description), needle) {
		return true
	}
	return false
}

// ApplyFilter returns the subsequence of records satisfying the AND of all
// active predicates. Input order is preserved; the store's ordering is never
// disturbed. An empty result is a valid state, distinct from "no records".
func ApplyFilter(records []*Record, f Filter) []*Record {
	if f.IsZero() {
		return records
	}
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
