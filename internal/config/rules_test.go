package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ITI-GP-2025/examination-service/internal/models"
)

func TestRules_Letter(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name       string
		percentage float64
		expected   models.LetterGrade
	}{
		{"exactly 90 is A", 90, models.GradeA},
		{"perfect score is A", 100, models.GradeA},
		{"just below A is B", 89.99, models.GradeB},
		{"exactly 80 is B", 80, models.GradeB},
		{"exactly 70 is C", 70, models.GradeC},
		{"seven out of ten is C", 70.0, models.GradeC},
		{"exactly 60 is D", 60, models.GradeD},
		{"just below pass is F", 59.99, models.GradeF},
		{"zero is F", 0, models.GradeF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.Letter(tt.percentage))
		})
	}
}

func TestRules_LetterMonotonic(t *testing.T) {
	rules := DefaultRules()

	// Rising percentages may never map to a worse letter.
	rank := map[models.LetterGrade]int{
		models.GradeF: 0,
		models.GradeD: 1,
		models.GradeC: 2,
		models.GradeB: 3,
		models.GradeA: 4,
	}

	prev := rules.Letter(0)
	for pct := 0.5; pct <= 100; pct += 0.5 {
		current := rules.Letter(pct)
		assert.GreaterOrEqual(t, rank[current], rank[prev],
			"letter degraded between %.1f%% and %.1f%%", pct-0.5, pct)
		prev = current
	}
}

func TestRules_Passed(t *testing.T) {
	rules := DefaultRules()

	assert.True(t, rules.Passed(60))
	assert.True(t, rules.Passed(100))
	assert.False(t, rules.Passed(59.99))
	assert.False(t, rules.Passed(0))
}

func TestRules_PassImpliesAtLeastD(t *testing.T) {
	rules := DefaultRules()

	for pct := 0.0; pct <= 100; pct += 0.25 {
		if rules.Passed(pct) {
			assert.NotEqual(t, models.GradeF, rules.Letter(pct),
				"passing %.2f%% mapped to F", pct)
		} else {
			assert.Equal(t, models.GradeF, rules.Letter(pct),
				"failing %.2f%% mapped above F", pct)
		}
	}
}

func TestRules_Points(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, 4.0, rules.Points(models.GradeA))
	assert.Equal(t, 3.0, rules.Points(models.GradeB))
	assert.Equal(t, 2.0, rules.Points(models.GradeC))
	assert.Equal(t, 1.0, rules.Points(models.GradeD))
	assert.Equal(t, 0.0, rules.Points(models.GradeF))
}

func TestRules_Difficulty(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		accuracy float64
		expected Difficulty
	}{
		{100, DifficultyEasy},
		{85, DifficultyEasy},
		{84.9, DifficultyMedium},
		{60, DifficultyMedium},
		{59.9, DifficultyHard},
		{40, DifficultyHard},
		{39.9, DifficultyVeryHard},
		{0, DifficultyVeryHard},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, rules.Difficulty(tt.accuracy),
			"accuracy %.1f", tt.accuracy)
	}
}

func TestRules_BandsOrderIndependent(t *testing.T) {
	// Letter lookup must not depend on the declaration order of the bands.
	rules := DefaultRules()
	rules.Bands = []GradeBand{
		{MinPercentage: 60, Letter: models.GradeD},
		{MinPercentage: 90, Letter: models.GradeA},
		{MinPercentage: 70, Letter: models.GradeC},
		{MinPercentage: 80, Letter: models.GradeB},
	}

	assert.Equal(t, models.GradeA, rules.Letter(95))
	assert.Equal(t, models.GradeB, rules.Letter(85))
	assert.Equal(t, models.GradeC, rules.Letter(75))
	assert.Equal(t, models.GradeD, rules.Letter(65))
	assert.Equal(t, models.GradeF, rules.Letter(55))
}
