// internal/models/models_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile UserProfile
		wantErr bool
	}{
		{"valid", UserProfile{Age: 30, Income: 50000, FamilySize: 4}, false},
		{"zero values", UserProfile{}, false},
		{"negative age", UserProfile{Age: -1}, true},
		{"negative income", UserProfile{Income: -100}, true},
		{"negative family size", UserProfile{FamilySize: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserProfile_Summary(t *testing.T) {
	p := UserProfile{
		Age:        42,
		Gender:     GenderFemale,
		Occupation: "farmer",
		Income:     80000,
		State:      "Karnataka",
		FamilySize: 5,
	}

	s := p.Summary()
	assert.Contains(t, s, "age=42")
	assert.Contains(t, s, "gender=female")
	assert.Contains(t, s, "occupation=farmer")
	assert.Contains(t, s, "annual income=80000")
	assert.Contains(t, s, "state=Karnataka")
	assert.Contains(t, s, "family size=5")
}

func TestUserProfile_SummaryOmitsEmptyFields(t *testing.T) {
	s := (&UserProfile{Age: 42}).Summary()
	assert.NotContains(t, s, "gender")
	assert.NotContains(t, s, "occupation")
	assert.NotContains(t, s, "state")
	assert.NotContains(t, s, "family size")
}

func TestUserProfile_HasCredential(t *testing.T) {
	p := UserProfile{HasNationalID: true, HasRationCard: true}

	held, known := p.HasCredential(DocTypeNationalID)
	assert.True(t, held)
	assert.True(t, known)

	held, known = p.HasCredential(DocTypeVoterID)
	assert.False(t, held)
	assert.True(t, known)

	held, known = p.HasCredential("village_certificate")
	assert.False(t, held)
	assert.False(t, known)
}

func TestEligibilityCriteria_Validate(t *testing.T) {
	minAge, maxAge := 18, 60
	minIncome, maxIncome := 10000.0, 100000.0

	valid := EligibilityCriteria{
		MinAge: &minAge, MaxAge: &maxAge,
		MinIncome: &minIncome, MaxIncome: &maxIncome,
	}
	require.NoError(t, valid.Validate())

	inverted := EligibilityCriteria{MinAge: &maxAge, MaxAge: &minAge}
	assert.Error(t, inverted.Validate())

	invertedIncome := EligibilityCriteria{MinIncome: &maxIncome, MaxIncome: &minIncome}
	assert.Error(t, invertedIncome.Validate())
}

func TestLocalizedText_Get(t *testing.T) {
	lt := LocalizedText{"en": "Pension", "hi": "पेंशन"}

	assert.Equal(t, "पेंशन", lt.Get("hi"))
	assert.Equal(t, "Pension", lt.Get("ta")) // falls back to English
	assert.Equal(t, "Pension", lt.Get("en"))

	onlyHindi := LocalizedText{"hi": "पेंशन"}
	assert.Equal(t, "पेंशन", onlyHindi.Get("ta")) // falls back to any entry

	var empty LocalizedText
	assert.Equal(t, "", empty.Get("en"))
}
