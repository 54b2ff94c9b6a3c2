package services

import (
	"sort"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/models"
)

// AvailabilityStatus classifies an exam relative to a student at an instant.
type AvailabilityStatus string

const (
	StatusAvailableNow AvailabilityStatus = "available_now"
	StatusUpcoming     AvailabilityStatus = "upcoming"
	StatusExpired      AvailabilityStatus = "expired"
	StatusSubmitted    AvailabilityStatus = "submitted"
)

// displayRank orders statuses for student-facing lists.
var displayRank = map[AvailabilityStatus]int{
	StatusAvailableNow: 0,
	StatusUpcoming:     1,
	StatusExpired:      2,
	StatusSubmitted:    3,
}

// ResolveAvailability classifies an exam for a student. A recorded grade
// wins over the clock: a submitted exam stays submitted even after its
// window closes.
func ResolveAvailability(exam *models.Exam, hasGrade bool, now time.Time) AvailabilityStatus {
	if hasGrade {
		return StatusSubmitted
	}
	start, end := exam.Window()
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusExpired
	default:
		// Boundary instants count as open.
		return StatusAvailableNow
	}
}

// ExamSummary is one row of a student's exam list. Result is set only on
// submitted rows.
type ExamSummary struct {
	ExamID     uint               `json:"exam_id"`
	CourseID   uint               `json:"course_id"`
	CourseName string             `json:"course_name"`
	Date       time.Time          `json:"date"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Corrective bool               `json:"corrective"`
	Status     AvailabilityStatus `json:"status"`
	Result     *SubmittedResult   `json:"result,omitempty"`
}

// SubmittedResult carries the recorded grade on a submitted row.
type SubmittedResult struct {
	Score      float64            `json:"score"`
	Percentage float64            `json:"percentage"`
	Letter     models.LetterGrade `json:"letter"`
	Passed     bool               `json:"passed"`
}

// SortExamSummaries orders rows for display: available first, then
// upcoming, expired, submitted; ties break on date then start time.
func SortExamSummaries(rows []ExamSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := displayRank[rows[i].Status], displayRank[rows[j].Status]
		if ri != rj {
			return ri < rj
		}
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].StartTime < rows[j].StartTime
	})
}
