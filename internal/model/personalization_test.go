package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxRiskLevel(t *testing.T) {
	assert.Equal(t, RiskMedium, MaxRiskLevel(RiskLow, RiskMedium))
	assert.Equal(t, RiskHigh, MaxRiskLevel(RiskHigh, RiskMedium))
	assert.Equal(t, RiskLow, MaxRiskLevel(RiskLow, RiskLow))
}

func TestMaxRiskLevelCommutative(t *testing.T) {
	levels := []RiskLevel{RiskLow, RiskMedium, RiskHigh}
	for _, a := range levels {
		for _, b := range levels {
			assert.Equal(t, MaxRiskLevel(a, b), MaxRiskLevel(b, a))
		}
	}
}

func TestMaxRiskLevelNeverLowers(t *testing.T) {
	// Folding any sequence of levels must never drop below an already
	// reached level.
	acc := RiskLow
	for _, l := range []RiskLevel{RiskMedium, RiskHigh, RiskLow, RiskMedium} {
		next := MaxRiskLevel(acc, l)
		assert.GreaterOrEqual(t, next.Rank(), acc.Rank())
		acc = next
	}
	assert.Equal(t, RiskHigh, acc)
}

func TestUnknownRiskRanksLow(t *testing.T) {
	assert.Equal(t, 0, RiskLevel("critical").Rank())
}
