package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
)

// ValidTypes is the closed set of record types.
var ValidTypes = map[string]bool{
	"prescription": true,
	"allergy":      true,
	"condition":    true,
	"report":       true,
}

// Record maps to the records table. One health event or document owned by a
// single user. OwnerID never appears in shared-view output.
type Record struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OwnerID          uuid.UUID  `db:"owner_id" json:"owner_id"`
	Title            string     `db:"title" json:"title"`
	Type             string     `db:"type" json:"type"`
	Description      *string    `db:"description" json:"description,omitempty"`
	HospitalName     *string    `db:"hospital_name" json:"hospital_name,omitempty"`
	DoctorName       *string    `db:"doctor_name" json:"doctor_name,omitempty"`
	ConsultationDate *time.Time `db:"consultation_date" json:"consultation_date,omitempty"`
	IsEmergency      bool       `db:"is_emergency" json:"is_emergency"`
	FileKey          *string    `db:"file_key" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// DashboardStats summarizes an owner's collection for the dashboard view.
type DashboardStats struct {
	TotalRecords          int        `json:"total_records"`
	EmergencyRecords      int        `json:"emergency_records"`
	UpcomingConsultations int        `json:"upcoming_consultations"`
	LastUpdated           *time.Time `json:"last_updated"`
}

// Validate checks the fields a client controls.
func (r *Record) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !ValidTypes[r.Type] {
		return fmt.Errorf("%w: invalid record type %q", ErrValidation, r.Type)
	}
	return nil
}
