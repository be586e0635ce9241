// internal/models/result.go
package models

// Criterion identifiers shared by the evaluator, ranker and explainer.
// CanonicalCriterionOrder fixes the order explanations are assembled in.
const (
	CriterionAge        = "age"
	CriterionOccupation = "occupation"
	CriterionIncome     = "income"
	CriterionState      = "state"
	CriterionFamilySize = "family_size"
	CriterionGender     = "gender"
	CriterionNarrative  = "narrative"
)

// CanonicalCriterionOrder is the fixed order criteria appear in
// explanations: age, occupation, income, region, family size, narrative.
var CanonicalCriterionOrder = []string{
	CriterionAge,
	CriterionGender,
	CriterionOccupation,
	CriterionIncome,
	CriterionState,
	CriterionFamilySize,
	CriterionNarrative,
}

// CriterionResult records one evaluated rule: its identifier, the profile
// value that was checked, and the bound or set it was checked against.
type CriterionResult struct {
	ID        string  `json:"id"`
	Value     string  `json:"value"`               // profile value that satisfied/failed the rule
	Bound     string  `json:"bound,omitempty"`     // human-readable constraint, e.g. "18-60"
	Deficit   string  `json:"deficit,omitempty"`   // for failed numeric rules: how far off
	Gap       float64 `json:"gap,omitempty"`       // relative distance from the boundary, 0 when satisfied
	Rule      string  `json:"rule,omitempty"`      // narrative rule text, when ID == "narrative"
	Rationale string  `json:"rationale,omitempty"` // collaborator rationale for narrative rules
}

// EligibilityResult is the structured outcome of evaluating one profile
// against one scheme's criteria. Produced fresh per request.
type EligibilityResult struct {
	SchemeID           string            `json:"schemeId"`
	IsEligible         bool              `json:"isEligible"`
	Confidence         float64           `json:"confidence"` // in [0,1]
	MatchedCriteria    []CriterionResult `json:"matchedCriteria"`
	UnmatchedCriteria  []CriterionResult `json:"unmatchedCriteria"`
	BorderlineCriteria []CriterionResult `json:"borderlineCriteria"`
	Undetermined       bool              `json:"undetermined"`
}

// SchemeMatch pairs a scheme with its evaluation, score and explanation.
// Deficit is set only on zero-match fallback alternatives.
type SchemeMatch struct {
	Scheme      *Scheme           `json:"scheme"`
	Result      EligibilityResult `json:"result"`
	Score       float64           `json:"score"` // in [0,1]
	Explanation string            `json:"explanation"`
	Deficit     string            `json:"deficit,omitempty"`
}

// Substitute is one document type commonly accepted in place of a missing
// document, marked with whether the profile already holds it.
type Substitute struct {
	TypeTag string `json:"typeTag"`
	Held    bool   `json:"held"`
}

// ChecklistEntry is one document requirement annotated with whether the
// profile likely lacks it, plus substitute guidance when it does.
type ChecklistEntry struct {
	Document      Document     `json:"document"`
	LikelyMissing bool         `json:"likelyMissing"`
	Substitutes   []Substitute `json:"substitutes,omitempty"`
}

// AlternativeGroup is a single logical requirement satisfiable by any one
// member document.
type AlternativeGroup struct {
	Members       []ChecklistEntry `json:"members"`
	LikelyMissing bool             `json:"likelyMissing"` // true when no member is held
}

// Checklist is the prioritized, alternative-aware document list for one
// (scheme, profile) pair.
type Checklist struct {
	SchemeID    string             `json:"schemeId"`
	Mandatory   []ChecklistEntry   `json:"mandatory"`
	Optional    []ChecklistEntry   `json:"optional"`
	Alternative []AlternativeGroup `json:"alternativeGroups"`
}

// MatchResponse is the engine's per-request output: the ordered matches,
// whether they are zero-match fallback alternatives, and which schemes
// could not be fully assessed.
type MatchResponse struct {
	Matches        []SchemeMatch `json:"matches"`
	Fallback       bool          `json:"fallback"`
	Partial        bool          `json:"partial"`
	PartialSchemes []string      `json:"partialSchemes,omitempty"`
	CatalogVersion string        `json:"catalogVersion"`
}
