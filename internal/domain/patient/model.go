package patient

import (
	"time"

	"github.com/google/uuid"
)

// Admission status values for stays the bot is allowed to surface. Only
// active stays are searchable; discharged admissions never appear.
const (
	StatusInpatient = "inpatient"
	StatusEmergency = "emergency"
)

// Admission maps to the admission view joined with the patient table. One row
// per active hospital stay.
type Admission struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	RecordNumber string     `db:"record_number" json:"record_number"`
	PatientName  string     `db:"patient_name" json:"patient_name"`
	BirthDate    *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	MotherName   *string    `db:"mother_name" json:"mother_name,omitempty"`
	Ward         string     `db:"ward" json:"ward"`
	WardAbbrev   string     `db:"ward_abbrev" json:"ward_abbrev"`
	Bed          string     `db:"bed" json:"bed"`
	Status       string     `db:"status" json:"status"`
	AdmittedAt   time.Time  `db:"admitted_at" json:"admitted_at"`
	Diagnosis    *string    `db:"diagnosis" json:"diagnosis,omitempty"`
}

// Filter narrows the admission query before any ranking happens. All set
// fields combine conjunctively; NameTokens match disjunctively against the
// patient name so the pool stays broad enough to rank.
type Filter struct {
	RecordNumber string
	Bed          string
	Ward         string
	NameTokens   []string
}

// Empty reports whether the filter would select the entire census.
func (f Filter) Empty() bool {
	return f.RecordNumber == "" && f.Bed == "" && f.Ward == "" && len(f.NameTokens) == 0
}

// Age returns the patient's age in whole years at the given instant, or -1
// when the birth date is unknown.
func (a *Admission) Age(now time.Time) int {
	if a.BirthDate == nil {
		return -1
	}
	years := now.Year() - a.BirthDate.Year()
	anniversary := a.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}
