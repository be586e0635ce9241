// internal/engine/evaluator/synonyms.go
package evaluator

import "strings"

// normalize lowercases a value and collapses separators so "Daily Wage
// Worker" and "daily_wage_worker" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}

// occupationSynonyms maps normalized occupation variants to a canonical
// form. Values missing from the table stay as normalized; they are matched
// literally, never fuzzy-guessed.
var occupationSynonyms = map[string]string{
	"daily_wage_worker":   "daily_wage_worker",
	"daily_wager":         "daily_wage_worker",
	"wage_labourer":       "daily_wage_worker",
	"wage_laborer":        "daily_wage_worker",
	"casual_labourer":     "daily_wage_worker",
	"farmer":              "farmer",
	"agriculturist":       "farmer",
	"cultivator":          "farmer",
	"agricultural_worker": "farmer",
	"fisherman":           "fisherfolk",
	"fisherwoman":         "fisherfolk",
	"fisherfolk":          "fisherfolk",
	"weaver":              "artisan",
	"handicraft_worker":   "artisan",
	"craftsman":           "artisan",
	"artisan":             "artisan",
	"construction_worker": "construction_worker",
	"building_worker":     "construction_worker",
	"street_vendor":       "street_vendor",
	"hawker":              "street_vendor",
	"self_employed":       "self_employed",
	"business_owner":      "self_employed",
	"entrepreneur":        "self_employed",
	"unemployed":          "unemployed",
	"jobless":             "unemployed",
	"student":             "student",
	"retired":             "retired",
	"pensioner":           "retired",
	"senior_citizen":      "retired",
	"homemaker":           "homemaker",
	"housewife":           "homemaker",
}

// stateSynonyms maps common abbreviations to canonical state names.
var stateSynonyms = map[string]string{
	"up":          "uttar_pradesh",
	"mp":          "madhya_pradesh",
	"tn":          "tamil_nadu",
	"ap":          "andhra_pradesh",
	"mh":          "maharashtra",
	"wb":          "west_bengal",
	"hp":          "himachal_pradesh",
	"uk":          "uttarakhand",
	"uttaranchal": "uttarakhand",
	"odisha":      "odisha",
	"orissa":      "odisha",
	"bengaluru":   "karnataka",
	"ncr":         "delhi",
	"new_delhi":   "delhi",
}

// CanonicalOccupation normalizes an occupation through the synonym table.
func CanonicalOccupation(s string) string {
	n := normalize(s)
	if canon, ok := occupationSynonyms[n]; ok {
		return canon
	}
	return n
}

// CanonicalState normalizes a state/region through the synonym table.
func CanonicalState(s string) string {
	n := normalize(s)
	if canon, ok := stateSynonyms[n]; ok {
		return canon
	}
	return n
}
