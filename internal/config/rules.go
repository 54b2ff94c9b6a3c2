package config

import (
	"sort"

	"github.com/ITI-GP-2025/examination-service/internal/models"
)

// Rules centralizes every grading and graduation threshold so that each rule
// lives in exactly one place and the letter/pass mappings stay monotonic.
type Rules struct {
	// PassThreshold is the minimum percentage that counts as a pass.
	PassThreshold float64

	// Bands maps percentage floors to letter grades, ordered by descending
	// MinPercentage. Anything below the last floor gets FallbackLetter.
	Bands          []GradeBand
	FallbackLetter models.LetterGrade

	// GradePoints is the fixed letter→numeric mapping used for GPA.
	GradePoints map[models.LetterGrade]float64

	// Graduation rules for automatic status determination.
	MinExamsForStatus  int
	GraduationPassRate float64

	// ManualGraduationWarnRate is the pass rate below which a manual
	// Graduated transition produces a warning. The transition itself is
	// never blocked.
	ManualGraduationWarnRate float64

	// CorrectiveOffsetDays is the default gap between a source exam and its
	// corrective exam when no date override is supplied.
	CorrectiveOffsetDays int

	// Question difficulty classification by observed correct-answer rate,
	// ordered by descending MinAccuracy. Never-attempted questions are
	// reported separately, not folded into a band.
	DifficultyBands     []DifficultyBand
	FallbackDifficulty  Difficulty
	LowPassRateExamMark float64
	UpcomingWindowDays  int
}

type GradeBand struct {
	MinPercentage float64
	Letter        models.LetterGrade
}

type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyHard     Difficulty = "Hard"
	DifficultyVeryHard Difficulty = "VeryHard"
)

type DifficultyBand struct {
	MinAccuracy float64
	Level       Difficulty
}

func DefaultRules() *Rules {
	return &Rules{
		PassThreshold: 60.0,
		Bands: []GradeBand{
			{MinPercentage: 90, Letter: models.GradeA},
			{MinPercentage: 80, Letter: models.GradeB},
			{MinPercentage: 70, Letter: models.GradeC},
			{MinPercentage: 60, Letter: models.GradeD},
		},
		FallbackLetter: models.GradeF,
		GradePoints: map[models.LetterGrade]float64{
			models.GradeA: 4.0,
			models.GradeB: 3.0,
			models.GradeC: 2.0,
			models.GradeD: 1.0,
			models.GradeF: 0.0,
		},
		MinExamsForStatus:        10,
		GraduationPassRate:       90.0,
		ManualGraduationWarnRate: 50.0,
		CorrectiveOffsetDays:     7,
		DifficultyBands: []DifficultyBand{
			{MinAccuracy: 85, Level: DifficultyEasy},
			{MinAccuracy: 60, Level: DifficultyMedium},
			{MinAccuracy: 40, Level: DifficultyHard},
		},
		FallbackDifficulty:  DifficultyVeryHard,
		LowPassRateExamMark: 60.0,
		UpcomingWindowDays:  7,
	}
}

// Letter maps a percentage to its letter grade via the configured bands.
func (r *Rules) Letter(percentage float64) models.LetterGrade {
	for _, band := range r.sortedBands() {
		if percentage >= band.MinPercentage {
			return band.Letter
		}
	}
	return r.FallbackLetter
}

// Passed reports whether a percentage meets the pass threshold.
func (r *Rules) Passed(percentage float64) bool {
	return percentage >= r.PassThreshold
}

// Points returns the GPA contribution of a letter grade.
func (r *Rules) Points(letter models.LetterGrade) float64 {
	return r.GradePoints[letter]
}

// Difficulty classifies a question by its correct-answer rate.
func (r *Rules) Difficulty(accuracy float64) Difficulty {
	bands := make([]DifficultyBand, len(r.DifficultyBands))
	copy(bands, r.DifficultyBands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinAccuracy > bands[j].MinAccuracy })
	for _, band := range bands {
		if accuracy >= band.MinAccuracy {
			return band.Level
		}
	}
	return r.FallbackDifficulty
}

func (r *Rules) sortedBands() []GradeBand {
	bands := make([]GradeBand, len(r.Bands))
	copy(bands, r.Bands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinPercentage > bands[j].MinPercentage })
	return bands
}
