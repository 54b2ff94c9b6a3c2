package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ITI-GP-2025/examination-service/internal/models"
)

type EventType string

const (
	EventExamCreated          EventType = "exam.created"
	EventCorrectiveCreated    EventType = "exam.corrective_created"
	EventGradeRecorded        EventType = "grade.recorded"
	EventStudentStatusChanged EventType = "student.status_changed"
)

// ExamEvent is the envelope published for every engine lifecycle mutation.
// Consumers (notification service, reporting) subscribe to the topic and
// filter on Type.
type ExamEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	ExamID    *uint `json:"exam_id,omitempty"`
	StudentID *uint `json:"student_id,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

const eventSource = "examination-service"

func newEvent(eventType EventType) *ExamEvent {
	return &ExamEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    eventSource,
		Version:   "1.0",
		Timestamp: time.Now(),
		Payload:   map[string]interface{}{},
	}
}

func NewExamCreatedEvent(exam *models.Exam, questionCount int) *ExamEvent {
	e := newEvent(EventExamCreated)
	e.ExamID = &exam.ID
	e.Payload["course_id"] = exam.CourseID
	e.Payload["instructor_id"] = exam.InstructorID
	e.Payload["track_id"] = exam.TrackID
	e.Payload["branch_id"] = exam.BranchID
	e.Payload["intake_id"] = exam.IntakeID
	e.Payload["date"] = exam.Date.Format("2006-01-02")
	e.Payload["question_count"] = questionCount
	return e
}

func NewCorrectiveCreatedEvent(exam *models.Exam, sourceExamID uint, eligibleCount int) *ExamEvent {
	e := newEvent(EventCorrectiveCreated)
	e.ExamID = &exam.ID
	e.Payload["source_exam_id"] = sourceExamID
	e.Payload["date"] = exam.Date.Format("2006-01-02")
	e.Payload["eligible_students"] = eligibleCount
	return e
}

func NewGradeRecordedEvent(grade *models.Grade) *ExamEvent {
	e := newEvent(EventGradeRecorded)
	e.ExamID = &grade.ExamID
	e.StudentID = &grade.StudentID
	e.Payload["percentage"] = grade.Percentage
	e.Payload["letter"] = string(grade.Letter)
	e.Payload["passed"] = grade.Passed
	return e
}

func NewStudentStatusChangedEvent(studentID uint, from, to models.StudentStatus, auto bool) *ExamEvent {
	e := newEvent(EventStudentStatusChanged)
	e.StudentID = &studentID
	e.Payload["from"] = string(from)
	e.Payload["to"] = string(to)
	e.Payload["auto"] = auto
	return e
}
