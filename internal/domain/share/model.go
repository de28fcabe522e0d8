package share

import (
	"time"

	"github.com/google/uuid"
)

// SharedRecord is the public-safe projection rendered to anonymous viewers.
// It deliberately omits owner_id and updated_at.
type SharedRecord struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Type             string     `db:"type" json:"type"`
	Description      *string    `db:"description" json:"description,omitempty"`
	HospitalName     *string    `db:"hospital_name" json:"hospital_name,omitempty"`
	DoctorName       *string    `db:"doctor_name" json:"doctor_name,omitempty"`
	ConsultationDate *time.Time `db:"consultation_date" json:"consultation_date,omitempty"`
	IsEmergency      bool       `db:"is_emergency" json:"is_emergency"`
	FileKey          *string    `db:"file_key" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// ResolvedView is the outcome of resolving a share token. Requested vs
// Resolved is a diagnostic only; missing ids are silently omitted from
// Records and never itemized.
type ResolvedView struct {
	Requested int             `json:"requested"`
	Resolved  int             `json:"resolved"`
	Records   []*SharedRecord `json:"records"`
}
