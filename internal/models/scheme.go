// internal/models/scheme.go
package models

import (
	"fmt"
	"time"
)

// Document type tags used for profile credential flagging and the
// substitution table.
const (
	DocTypeNationalID   = "national_id"
	DocTypeBankAccount  = "bank_account"
	DocTypeRationCard   = "ration_card"
	DocTypeVoterID      = "voter_id"
	DocTypeIncomeProof  = "income_certificate"
	DocTypeCasteProof   = "caste_certificate"
	DocTypeLandRecords  = "land_records"
	DocTypeDisabilityID = "disability_certificate"
	DocTypePhoto        = "photograph"
	DocTypeOther        = "other"
)

// LocalizedText maps a language code ("en", "hi", ...) to display text.
// The engine itself only reads the default language; translation is the
// presentation layer's job.
type LocalizedText map[string]string

// Get returns the text for lang, falling back to English, then to any entry.
func (lt LocalizedText) Get(lang string) string {
	if lt == nil {
		return ""
	}
	if s, ok := lt[lang]; ok {
		return s
	}
	if s, ok := lt["en"]; ok {
		return s
	}
	for _, s := range lt {
		return s
	}
	return ""
}

// Document is one required document of a scheme. Alternatives form an "OR"
// group: any one member satisfies the requirement.
type Document struct {
	ID           string        `json:"id"`
	Name         LocalizedText `json:"name"`
	Description  LocalizedText `json:"description,omitempty"`
	TypeTag      string        `json:"typeTag"`
	Mandatory    bool          `json:"mandatory"`
	Priority     int           `json:"priority"` // lower = obtain first
	Alternatives []Document    `json:"alternatives,omitempty"`
}

// Benefit describes what the scheme pays out. Amount is zero when the
// benefit is non-monetary or undisclosed.
type Benefit struct {
	Description LocalizedText `json:"description"`
	Amount      float64       `json:"amount,omitempty"` // per year, in local currency
}

// EligibilityCriteria is the structured rule set a profile is checked
// against, plus optional free-text narrative rules that need external
// reasoning. Nil pointer fields mean "no constraint".
type EligibilityCriteria struct {
	MinAge        *int     `json:"minAge,omitempty"`
	MaxAge        *int     `json:"maxAge,omitempty"`
	MaxIncome     *float64 `json:"maxIncome,omitempty"`
	MinIncome     *float64 `json:"minIncome,omitempty"`
	Occupations   []string `json:"occupations,omitempty"`
	States        []string `json:"states,omitempty"`
	MinFamilySize *int     `json:"minFamilySize,omitempty"`
	Gender        Gender   `json:"gender,omitempty"` // empty means any

	// NarrativeRules are free-text conditions that cannot be evaluated
	// mechanically, e.g. "must not own irrigated land above 2 hectares".
	NarrativeRules []string `json:"narrativeRules,omitempty"`
}

// Validate enforces the structural invariants of the criteria shape.
func (c *EligibilityCriteria) Validate() error {
	if c.MinAge != nil && c.MaxAge != nil && *c.MinAge > *c.MaxAge {
		return fmt.Errorf("minAge %d exceeds maxAge %d", *c.MinAge, *c.MaxAge)
	}
	if c.MinIncome != nil && c.MaxIncome != nil && *c.MinIncome > *c.MaxIncome {
		return fmt.Errorf("minIncome %.2f exceeds maxIncome %.2f", *c.MinIncome, *c.MaxIncome)
	}
	return nil
}

// Scheme is one government welfare program. Created and updated only by the
// ingestion pipeline; immutable within a request.
type Scheme struct {
	ID          string              `json:"id"`
	Name        LocalizedText       `json:"name"`
	Description LocalizedText       `json:"description,omitempty"`
	Category    string              `json:"category"`
	Priority    int                 `json:"priority"` // higher = preferred on ties
	Criteria    EligibilityCriteria `json:"criteria"`
	Benefit     Benefit             `json:"benefit"`
	Documents   []Document          `json:"documents"`
	Steps       []string            `json:"applicationSteps,omitempty"`
	SourceURL   string              `json:"sourceUrl,omitempty"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
