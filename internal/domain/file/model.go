package file

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role discriminates the two clinical file variants.
type Role string

const (
	RolePractitioner Role = "practitioner"
	RolePatient      Role = "patient"
)

// File maps to the clinical_file table. Identity fields are shared by both
// roles; Specialties is practitioner-only, BirthDate and
// ReferringPractitionerID are patient-only.
type File struct {
	ID         string `db:"id" json:"id"`
	Role       Role   `db:"role" json:"role"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Phone      string `db:"phone" json:"phone,omitempty"`
	Email      string `db:"email" json:"email,omitempty"`
	Address    string `db:"address" json:"address,omitempty"`
	SecretHash string `db:"secret_hash" json:"-"`

	Specialties []string `db:"-" json:"specialties,omitempty"`

	BirthDate               *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	ReferringPractitionerID *string    `db:"referring_practitioner_id" json:"referring_practitioner_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (f *File) IsPatient() bool { return f.Role == RolePatient }

func (f *File) IsPractitioner() bool { return f.Role == RolePractitioner }

// ReferringID returns the referring practitioner id, or "" for a
// practitioner file.
func (f *File) ReferringID() string {
	if f.ReferringPractitionerID == nil {
		return ""
	}
	return *f.ReferringPractitionerID
}

// SetSecret hashes a freshly issued enrollment code onto the file. The
// plaintext is never stored; the caller hands it to the person once.
func (f *File) SetSecret(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	f.SecretHash = string(hash)
	return nil
}

// VerifySecret compares a presented enrollment code against the stored hash.
// bcrypt's comparison is constant-time.
func (f *File) VerifySecret(code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(f.SecretHash), []byte(code)) == nil
}
