package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ITI-GP-2025/examination-service/internal/models"
)

func dayExam(date time.Time, start, end string) *models.Exam {
	return &models.Exam{
		ID:        1,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestResolveAvailability(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	exam := dayExam(date, "09:00", "11:00")

	tests := []struct {
		name     string
		now      time.Time
		hasGrade bool
		expected AvailabilityStatus
	}{
		{"before start", time.Date(2026, 9, 10, 8, 59, 0, 0, time.UTC), false, StatusUpcoming},
		{"day before", time.Date(2026, 9, 9, 10, 0, 0, 0, time.UTC), false, StatusUpcoming},
		{"exactly at start", time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC), false, StatusAvailableNow},
		{"mid window", time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), false, StatusAvailableNow},
		{"exactly at end", time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC), false, StatusAvailableNow},
		{"after end", time.Date(2026, 9, 10, 11, 0, 1, 0, time.UTC), false, StatusExpired},
		{"day after", time.Date(2026, 9, 11, 9, 30, 0, 0, time.UTC), false, StatusExpired},
		{"graded during window", time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), true, StatusSubmitted},
		{"graded stays submitted after close", time.Date(2026, 9, 12, 12, 0, 0, 0, time.UTC), true, StatusSubmitted},
		{"graded before start", time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC), true, StatusSubmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveAvailability(exam, tt.hasGrade, tt.now))
		})
	}
}

func TestSortExamSummaries(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC) }

	rows := []ExamSummary{
		{ExamID: 1, Status: StatusSubmitted, Date: d(1), StartTime: "09:00"},
		{ExamID: 2, Status: StatusExpired, Date: d(2), StartTime: "09:00"},
		{ExamID: 3, Status: StatusUpcoming, Date: d(12), StartTime: "09:00"},
		{ExamID: 4, Status: StatusAvailableNow, Date: d(10), StartTime: "13:00"},
		{ExamID: 5, Status: StatusAvailableNow, Date: d(10), StartTime: "09:00"},
		{ExamID: 6, Status: StatusUpcoming, Date: d(11), StartTime: "09:00"},
	}

	SortExamSummaries(rows)

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ExamID
	}

	// Available first ordered by start time, then upcoming by date, then
	// expired, submitted last.
	assert.Equal(t, []uint{5, 4, 6, 3, 2, 1}, ids)
}

func TestSortExamSummaries_StableWithinSameSlot(t *testing.T) {
	d := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	rows := []ExamSummary{
		{ExamID: 7, Status: StatusUpcoming, Date: d, StartTime: "09:00"},
		{ExamID: 8, Status: StatusUpcoming, Date: d, StartTime: "09:00"},
	}

	SortExamSummaries(rows)

	assert.Equal(t, uint(7), rows[0].ExamID)
	assert.Equal(t, uint(8), rows[1].ExamID)
}
