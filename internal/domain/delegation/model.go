package delegation

import (
	"time"

	"github.com/google/uuid"

	"github.com/sharemed/smr/internal/platform/access"
)

// Delegation maps to the delegation table: a time-bounded grant of a
// patient's record to a practitioner other than the referring one. Whether a
// delegation currently holds is never stored; it is re-evaluated against
// "now" on every access.
type Delegation struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientFileID  string    `db:"patient_file_id" json:"patient_file_id"`
	PractitionerID string    `db:"practitioner_id" json:"practitioner_id"`
	ValidUntil     time.Time `db:"valid_until" json:"valid_until"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Grant projects the delegation into the access policy's input shape.
func (d *Delegation) Grant() access.Grant {
	return access.Grant{PractitionerID: d.PractitionerID, ValidUntil: d.ValidUntil}
}

// Grants projects a delegation list for access.Evaluate.
func Grants(ds []*Delegation) []access.Grant {
	grants := make([]access.Grant, 0, len(ds))
	for _, d := range ds {
		grants = append(grants, d.Grant())
	}
	return grants
}
