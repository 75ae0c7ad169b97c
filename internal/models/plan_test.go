package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindPlan(t *testing.T) {
	tests := []struct {
		name        string
		planID      string
		wantCredits int
		wantOK      bool
	}{
		{name: "basic", planID: "basic", wantCredits: 100, wantOK: true},
		{name: "standard", planID: "standard", wantCredits: 250, wantOK: true},
		{name: "premium", planID: "premium", wantCredits: 500, wantOK: true},
		{name: "mixed case is normalized", planID: "PREMIUM", wantCredits: 500, wantOK: true},
		{name: "surrounding spaces are trimmed", planID: " Basic ", wantCredits: 100, wantOK: true},
		{name: "unknown plan", planID: "enterprise", wantOK: false},
		{name: "empty plan", planID: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := FindPlan(tt.planID)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCredits, plan.Credits)
			}
		})
	}
}

func TestPlan_Amount(t *testing.T) {
	plan, ok := FindPlan("standard")
	assert.True(t, ok)
	// 250 кредитов по 10 единиц, в минорных единицах валюты
	assert.Equal(t, int64(250000), plan.Amount())
}
