package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/sharemed/smr/internal/platform/apperr"
)

// Kind discriminates the clinical item variants.
type Kind string

const (
	KindAct          Kind = "act"
	KindDiagnosis    Kind = "diagnosis"
	KindLetter       Kind = "letter"
	KindPrescription Kind = "prescription"
	KindSymptom      Kind = "symptom"
)

// Item maps to the clinical_item table. Shared fields are populated for
// every kind; the payload columns carry the variant data and are validated
// per kind — a tagged union flattened onto one row.
type Item struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Kind          Kind      `db:"kind" json:"kind"`
	PatientFileID string    `db:"patient_file_id" json:"patient_file_id"`
	AuthorID      string    `db:"author_id" json:"author_id"`
	Date          time.Time `db:"item_date" json:"date"`
	Comments      string    `db:"comments" json:"comments,omitempty"`

	// Variant payload.
	ActCode       *string `db:"act_code" json:"act_code,omitempty"`             // act: coded medical act
	DiagnosisCode *string `db:"diagnosis_code" json:"diagnosis_code,omitempty"` // diagnosis: coded disease
	RecipientID   *string `db:"recipient_id" json:"recipient_id,omitempty"`     // letter: addressed practitioner
	Body          *string `db:"body" json:"body,omitempty"`                     // letter, prescription, symptom: free text

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the variant payload against the item's kind.
func (i *Item) Validate() error {
	switch i.Kind {
	case KindAct:
		if i.ActCode == nil || *i.ActCode == "" {
			return apperr.Invalid("an act requires act_code")
		}
	case KindDiagnosis:
		if i.DiagnosisCode == nil || *i.DiagnosisCode == "" {
			return apperr.Invalid("a diagnosis requires diagnosis_code")
		}
	case KindLetter:
		if i.Body == nil || *i.Body == "" {
			return apperr.Invalid("a letter requires body")
		}
		if i.RecipientID == nil || *i.RecipientID == "" {
			return apperr.Invalid("a letter requires recipient_id")
		}
	case KindPrescription:
		if i.Body == nil || *i.Body == "" {
			return apperr.Invalid("a prescription requires body")
		}
	case KindSymptom:
		if i.Body == nil || *i.Body == "" {
			return apperr.Invalid("a symptom requires body")
		}
	default:
		return apperr.Invalid("unknown item kind %q", i.Kind)
	}
	return nil
}
