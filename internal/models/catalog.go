package models

import (
	"time"
)

type StudentStatus string

const (
	StudentActive       StudentStatus = "Active"
	StudentGraduated    StudentStatus = "Graduated"
	StudentNotGraduated StudentStatus = "NotGraduated"
	StudentOnLeave      StudentStatus = "OnLeave"
	StudentWithdrawn    StudentStatus = "Withdrawn"
)

// Intake is a yearly admitted cohort. It partitions students, exams and
// instructor assignments.
type Intake struct {
	ID   uint `json:"id" gorm:"primaryKey"`
	Year int  `json:"year" gorm:"not null;uniqueIndex" validate:"required,min=2000,max=2100"`

	CreatedAt time.Time `json:"created_at"`
}

type Branch struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Name     string  `json:"name" gorm:"not null;size:100"`
	Location *string `json:"location" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
}

type Department struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

type Track struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null;size:100"`
	DepartmentID *uint  `json:"department_id" gorm:"index"`

	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// TrackOpening records that a (track, branch, intake) triple has been opened.
// Students, instructors and exams may only be bound to opened triples.
type TrackOpening struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	TrackID  uint `json:"track_id" gorm:"not null;uniqueIndex:idx_track_openings_triple"`
	BranchID uint `json:"branch_id" gorm:"not null;uniqueIndex:idx_track_openings_triple"`
	IntakeID uint `json:"intake_id" gorm:"not null;uniqueIndex:idx_track_openings_triple"`

	CreatedAt time.Time `json:"created_at"`
}

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"size:500"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:CourseID"`
}

type Instructor struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null;size:200"`
	Email        string  `json:"email" gorm:"size:200;index"`
	AcademicRank *string `json:"academic_rank" gorm:"size:100"`
	DepartmentID *uint   `json:"department_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

// InstructorBranch records an instructor's membership at a branch for an
// intake. It is a precondition for course assignments at that branch.
type InstructorBranch struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	InstructorID uint `json:"instructor_id" gorm:"not null;uniqueIndex:idx_instructor_branches"`
	BranchID     uint `json:"branch_id" gorm:"not null;uniqueIndex:idx_instructor_branches"`
	IntakeID     uint `json:"intake_id" gorm:"not null;uniqueIndex:idx_instructor_branches"`
}

// InstructorAssignment maps an instructor to the course they teach for a
// specific (track, branch, intake).
type InstructorAssignment struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	InstructorID uint `json:"instructor_id" gorm:"not null;uniqueIndex:idx_instructor_assignments"`
	CourseID     uint `json:"course_id" gorm:"not null;uniqueIndex:idx_instructor_assignments"`
	TrackID      uint `json:"track_id" gorm:"not null;uniqueIndex:idx_instructor_assignments"`
	BranchID     uint `json:"branch_id" gorm:"not null;uniqueIndex:idx_instructor_assignments"`
	IntakeID     uint `json:"intake_id" gorm:"not null;uniqueIndex:idx_instructor_assignments"`
}

type Student struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	Name     string        `json:"name" gorm:"not null;size:200"`
	Email    string        `json:"email" gorm:"size:200;index"`
	TrackID  uint          `json:"track_id" gorm:"not null;index:idx_students_cohort"`
	BranchID uint          `json:"branch_id" gorm:"not null;index:idx_students_cohort"`
	IntakeID uint          `json:"intake_id" gorm:"not null;index:idx_students_cohort"`
	Status   StudentStatus `json:"status" gorm:"not null;default:Active;index" validate:"omitempty,student_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Track  Track  `json:"track,omitempty" gorm:"foreignKey:TrackID"`
	Branch Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	Intake Intake `json:"intake,omitempty" gorm:"foreignKey:IntakeID"`
}

// SameCohort reports whether the student belongs to the exam's
// (track, branch, intake). Grades may only exist for matching pairs.
func (s *Student) SameCohort(e *Exam) bool {
	return s.TrackID == e.TrackID && s.BranchID == e.BranchID && s.IntakeID == e.IntakeID
}

func (Intake) TableName() string               { return "intakes" }
func (Branch) TableName() string               { return "branches" }
func (Department) TableName() string           { return "departments" }
func (Track) TableName() string                { return "tracks" }
func (TrackOpening) TableName() string         { return "track_openings" }
func (Course) TableName() string               { return "courses" }
func (Instructor) TableName() string           { return "instructors" }
func (InstructorBranch) TableName() string     { return "instructor_branches" }
func (InstructorAssignment) TableName() string { return "instructor_assignments" }
func (Student) TableName() string              { return "students" }
