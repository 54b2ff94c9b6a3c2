package models

import "time"

// TimeOfDay is the wire/storage format for exam start and end times.
const TimeOfDay = "15:04"

// Exam binds a course, instructor and cohort to a schedule window and an
// ordered question paper. The paper is fixed at creation and never mutated.
type Exam struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	CourseID     uint `json:"course_id" gorm:"not null;index"`
	InstructorID uint `json:"instructor_id" gorm:"not null;index"`
	TrackID      uint `json:"track_id" gorm:"not null;index:idx_exams_cohort"`
	BranchID     uint `json:"branch_id" gorm:"not null;index:idx_exams_cohort"`
	IntakeID     uint `json:"intake_id" gorm:"not null;index:idx_exams_cohort"`

	Date      time.Time `json:"date" gorm:"not null;type:date;index"`
	StartTime string    `json:"start_time" gorm:"not null;size:5" validate:"required,datetime=15:04"`
	EndTime   string    `json:"end_time" gorm:"not null;size:5" validate:"required,datetime=15:04"`

	Corrective   bool  `json:"corrective" gorm:"not null;default:false;index"`
	ParentExamID *uint `json:"parent_exam_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`

	Course     Course         `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Instructor Instructor     `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Questions  []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
}

// ExamQuestion is one ordered binding of a bank question into an exam paper.
type ExamQuestion struct {
	ExamID     uint `json:"exam_id" gorm:"primaryKey;autoIncrement:false"`
	Position   int  `json:"position" gorm:"primaryKey;autoIncrement:false"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`

	Question Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

// Window returns the absolute submission window, combining the exam date
// with its time-of-day bounds. Both boundary instants count as open.
func (e *Exam) Window() (time.Time, time.Time) {
	return combineDateTime(e.Date, e.StartTime), combineDateTime(e.Date, e.EndTime)
}

func combineDateTime(date time.Time, tod string) time.Time {
	t, err := time.Parse(TimeOfDay, tod)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

func (Exam) TableName() string         { return "exams" }
func (ExamQuestion) TableName() string { return "exam_questions" }
