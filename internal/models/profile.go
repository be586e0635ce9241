// internal/models/profile.go
package models

import (
	"fmt"
	"strings"
)

// Gender values accepted in profiles and criteria. GenderAny on a criteria
// side is satisfied by every profile.
type Gender string

const (
	GenderAny    Gender = "any"
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// UserProfile is the citizen profile this engine evaluates. It is validated
// upstream (age/income policy bounds are the calling layer's job) and is
// read-only inside the engine.
type UserProfile struct {
	ID         string  `json:"id,omitempty"`
	Age        int     `json:"age"`
	Gender     Gender  `json:"gender,omitempty"`
	Occupation string  `json:"occupation"`
	Income     float64 `json:"income"` // annual, non-negative
	State      string  `json:"state"`
	FamilySize int     `json:"familySize"`

	// Credential flags for commonly required documents.
	HasNationalID   bool `json:"hasNationalId"`
	HasBankAccount  bool `json:"hasBankAccount"`
	HasRationCard   bool `json:"hasRationCard"`
	HasVoterID      bool `json:"hasVoterId"`
	HasIncomeProof  bool `json:"hasIncomeProof"`
	HasCasteProof   bool `json:"hasCasteProof"`
	HasLandRecords  bool `json:"hasLandRecords"`
	HasDisabilityID bool `json:"hasDisabilityId"`
}

// Validate checks structural sanity only. Policy bounds (e.g. minimum age 18
// vs 1) belong to the layer that owns input validation, not here.
func (p *UserProfile) Validate() error {
	if p.Age < 0 {
		return fmt.Errorf("age cannot be negative: %d", p.Age)
	}
	if p.Income < 0 {
		return fmt.Errorf("income cannot be negative: %.2f", p.Income)
	}
	if p.FamilySize < 0 {
		return fmt.Errorf("family size cannot be negative: %d", p.FamilySize)
	}
	return nil
}

// Summary renders a compact plain-text summary of the profile for the
// external reasoning collaborator. It deliberately contains no free text
// from the scheme side.
func (p *UserProfile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "age=%d", p.Age)
	if p.Gender != "" && p.Gender != GenderAny {
		fmt.Fprintf(&b, "; gender=%s", p.Gender)
	}
	if p.Occupation != "" {
		fmt.Fprintf(&b, "; occupation=%s", p.Occupation)
	}
	fmt.Fprintf(&b, "; annual income=%.0f", p.Income)
	if p.State != "" {
		fmt.Fprintf(&b, "; state=%s", p.State)
	}
	if p.FamilySize > 0 {
		fmt.Fprintf(&b, "; family size=%d", p.FamilySize)
	}
	return b.String()
}

// HasCredential reports whether the profile claims to hold the document
// type identified by typeTag (see Document.TypeTag).
func (p *UserProfile) HasCredential(typeTag string) (held bool, known bool) {
	switch typeTag {
	case DocTypeNationalID:
		return p.HasNationalID, true
	case DocTypeBankAccount:
		return p.HasBankAccount, true
	case DocTypeRationCard:
		return p.HasRationCard, true
	case DocTypeVoterID:
		return p.HasVoterID, true
	case DocTypeIncomeProof:
		return p.HasIncomeProof, true
	case DocTypeCasteProof:
		return p.HasCasteProof, true
	case DocTypeLandRecords:
		return p.HasLandRecords, true
	case DocTypeDisabilityID:
		return p.HasDisabilityID, true
	default:
		return false, false
	}
}
