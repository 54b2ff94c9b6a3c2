package models

import "time"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
)

// Question belongs to one course's question bank. Scoring is only
// well-defined when exactly one of its choices is flagged correct.
type Question struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	CourseID    uint         `json:"course_id" gorm:"not null;index"`
	Body        string       `json:"body" gorm:"not null;type:text" validate:"required"`
	Type        QuestionType `json:"type" gorm:"not null;size:50" validate:"required,question_type"`
	ModelAnswer *string      `json:"model_answer" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
}

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Body       string `json:"body" gorm:"not null;type:text"`
	Letter     string `json:"letter" gorm:"not null;size:1" validate:"required,len=1"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

// CorrectChoiceID returns the id of the single correct choice, or 0 when the
// question is malformed (zero or multiple correct choices).
func (q *Question) CorrectChoiceID() uint {
	var id uint
	for _, c := range q.Choices {
		if c.IsCorrect {
			if id != 0 {
				return 0
			}
			id = c.ID
		}
	}
	return id
}

func (Question) TableName() string { return "questions" }
func (Choice) TableName() string   { return "choices" }
