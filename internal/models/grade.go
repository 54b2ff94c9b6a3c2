package models

import "time"

type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
)

// Grade is the single graded result of one student's submission to one exam.
// The (student, exam) unique index is what enforces the at-most-one-grade
// guarantee under concurrent submissions; rows are never updated once written.
type Grade struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_grades_student_exam"`
	ExamID    uint `json:"exam_id" gorm:"not null;uniqueIndex:idx_grades_student_exam"`

	Score      float64     `json:"score" gorm:"not null"`
	Percentage float64     `json:"percentage" gorm:"not null"`
	Letter     LetterGrade `json:"letter" gorm:"not null;size:2"`
	Passed     bool        `json:"passed" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`

	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Exam    Exam    `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
}

// StudentAnswer is one student's recorded choice for one paper question,
// written in the same transaction as the Grade.
type StudentAnswer struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	StudentID  uint  `json:"student_id" gorm:"not null;uniqueIndex:idx_answers_student_exam_question"`
	ExamID     uint  `json:"exam_id" gorm:"not null;uniqueIndex:idx_answers_student_exam_question"`
	QuestionID uint  `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_student_exam_question"`
	ChoiceID   *uint `json:"choice_id"`
	IsCorrect  bool  `json:"is_correct" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (Grade) TableName() string         { return "grades" }
func (StudentAnswer) TableName() string { return "student_answers" }
