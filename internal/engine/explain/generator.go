// internal/engine/explain/generator.go
package explain

import (
	"fmt"
	"strings"

	"yojana-engine/internal/models"
)

// Generator renders explanation text strictly from matchedCriteria entries
// using fixed per-criterion templates. It never asserts anything that is not
// in the result, which is what makes the output checkable by the downstream
// guardrail layer.
type Generator struct {
	lang string
}

func New(lang string) *Generator {
	if lang == "" {
		lang = "en"
	}
	return &Generator{lang: lang}
}

// Fixed disclaimer appended whenever the result is borderline or
// undetermined.
const disclaimer = "Some conditions could not be fully verified; please confirm your eligibility with your local authority office."

// Explain builds the explanation for a positive match: one fixed phrase per
// matched criterion, concatenated in canonical order.
func (g *Generator) Explain(profile *models.UserProfile, scheme *models.Scheme, result *models.EligibilityResult) string {
	byID := make(map[string][]models.CriterionResult)
	for _, cr := range result.MatchedCriteria {
		byID[cr.ID] = append(byID[cr.ID], cr)
	}

	var phrases []string
	for _, id := range models.CanonicalCriterionOrder {
		for _, cr := range byID[id] {
			if phrase := criterionPhrase(cr); phrase != "" {
				phrases = append(phrases, phrase)
			}
		}
	}

	var b strings.Builder
	name := scheme.Name.Get(g.lang)
	if len(phrases) == 0 {
		fmt.Fprintf(&b, "You appear to qualify for %s.", name)
	} else {
		fmt.Fprintf(&b, "You appear to qualify for %s because %s.", name, joinPhrases(phrases))
	}

	if len(result.BorderlineCriteria) > 0 || result.Undetermined {
		b.WriteString(" ")
		b.WriteString(disclaimer)
	}

	return b.String()
}

// ExplainDeficit renders the zero-match alternative phrasing from the
// deficit description computed by the ranker.
func (g *Generator) ExplainDeficit(scheme *models.Scheme, deficit string) string {
	name := scheme.Name.Get(g.lang)
	if deficit == "" {
		return fmt.Sprintf("You do not currently qualify for %s.", name)
	}
	return fmt.Sprintf("You could become eligible for %s if the following changed: %s.", name, deficit)
}

// criterionPhrase is the fixed template for one matched criterion. Unknown
// criterion identifiers render nothing rather than free text.
func criterionPhrase(cr models.CriterionResult) string {
	switch cr.ID {
	case models.CriterionAge:
		return fmt.Sprintf("your age (%s) is within the required range %s", cr.Value, cr.Bound)
	case models.CriterionGender:
		return fmt.Sprintf("the scheme is open to %s applicants", cr.Value)
	case models.CriterionOccupation:
		return fmt.Sprintf("your occupation (%s) is covered by this scheme", cr.Value)
	case models.CriterionIncome:
		return fmt.Sprintf("your income (%s) is within the required limit %s", cr.Value, cr.Bound)
	case models.CriterionState:
		return fmt.Sprintf("the scheme is available in your state (%s)", cr.Value)
	case models.CriterionFamilySize:
		return fmt.Sprintf("your family size (%s) meets the requirement %s", cr.Value, cr.Bound)
	case models.CriterionNarrative:
		if cr.Rule == "" {
			return ""
		}
		return fmt.Sprintf("the condition %q was verified", cr.Rule)
	default:
		return ""
	}
}

func joinPhrases(phrases []string) string {
	switch len(phrases) {
	case 1:
		return phrases[0]
	default:
		return strings.Join(phrases[:len(phrases)-1], ", ") + " and " + phrases[len(phrases)-1]
	}
}
