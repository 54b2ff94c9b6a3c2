package repositories

import (
	"context"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/models"
)

// Repository aggregates all entity repositories. Implementations bound to a
// transaction are obtained through TransactionRepository.Begin.
type Repository interface {
	Catalog() CatalogRepository
	Question() QuestionRepository
	Exam() ExamRepository
	Grade() GradeRepository
	Answer() AnswerRepository
	Audit() AuditRepository
}

// TransactionRepository is implemented by the root repository manager.
// Begin returns a Repository whose writes all happen in one transaction;
// Commit/Rollback close it. Multi-row writes (exam + paper bindings,
// grade + answers) must never be observable partially.
type TransactionRepository interface {
	Repository
	Begin(ctx context.Context) (Repository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	CourseID     *uint      `json:"course_id"`
	InstructorID *uint      `json:"instructor_id"`
	TrackID      *uint      `json:"track_id"`
	BranchID     *uint      `json:"branch_id"`
	IntakeID     *uint      `json:"intake_id"`
	Corrective   *bool      `json:"corrective"`
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
	SortBy       string     `json:"sort_by"`    // "date", "created_at"
	SortOrder    string     `json:"sort_order"` // "asc", "desc"
}

type GradeFilters struct {
	StudentID *uint `json:"student_id"`
	ExamID    *uint `json:"exam_id"`
	BranchID  *uint `json:"branch_id"` // joins through exams
	TrackID   *uint `json:"track_id"`  // joins through exams
	IntakeID  *uint `json:"intake_id"` // joins through exams
	Passed    *bool `json:"passed"`
	Limit     int   `json:"limit"`
	Offset    int   `json:"offset"`
}

// ===== ENTITY REPOSITORY INTERFACES =====

// CatalogRepository reads the externally curated reference data. The engine
// never writes catalog rows except for student status transitions, which it
// owns.
type CatalogRepository interface {
	GetIntake(ctx context.Context, id uint) (*models.Intake, error)
	GetBranch(ctx context.Context, id uint) (*models.Branch, error)
	GetTrack(ctx context.Context, id uint) (*models.Track, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetInstructor(ctx context.Context, id uint) (*models.Instructor, error)
	GetStudent(ctx context.Context, id uint) (*models.Student, error)

	ListBranches(ctx context.Context) ([]*models.Branch, error)
	ListTracks(ctx context.Context) ([]*models.Track, error)

	// Assignment / opening checks used by the exam generator guard sequence.
	IsTrackOpened(ctx context.Context, trackID, branchID, intakeID uint) (bool, error)
	IsInstructorAtBranch(ctx context.Context, instructorID, branchID, intakeID uint) (bool, error)
	HasAssignment(ctx context.Context, instructorID, courseID, trackID, branchID, intakeID uint) (bool, error)

	// Cohort queries for availability and participation statistics.
	StudentsByCohort(ctx context.Context, trackID, branchID, intakeID uint) ([]*models.Student, error)
	CountStudentsByCohort(ctx context.Context, trackID, branchID, intakeID uint) (int64, error)
	CountStudentsByBranch(ctx context.Context, branchID uint) (int64, error)
	CountStudentsByBranchAndStatus(ctx context.Context, branchID uint, status models.StudentStatus) (int64, error)
	CountStudentsByTrack(ctx context.Context, trackID uint) (int64, error)
	CountStudentsByStatus(ctx context.Context, status models.StudentStatus) (int64, error)
	CountStudents(ctx context.Context) (int64, error)
	CountInstructors(ctx context.Context) (int64, error)
	CountCourses(ctx context.Context) (int64, error)

	UpdateStudentStatus(ctx context.Context, studentID uint, status models.StudentStatus) error
}

// QuestionRepository reads the per-course question bank.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*models.Question, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	ListIDsByCourse(ctx context.Context, courseID uint, questionType *models.QuestionType) ([]uint, error)
}

// ExamRepository owns Exam rows and their ordered question bindings.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	AddQuestions(ctx context.Context, bindings []models.ExamQuestion) error

	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error)

	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	GetByCohort(ctx context.Context, trackID, branchID, intakeID uint) ([]*models.Exam, error)

	ExistsCorrectiveAt(ctx context.Context, courseID, trackID, branchID, intakeID, instructorID uint, date time.Time) (bool, error)

	CountExams(ctx context.Context, filters ExamFilters) (int64, error)
	GetStartingWithin(ctx context.Context, from time.Time, days int) ([]*models.Exam, error)
}

// GradeRepository owns Grade rows. Create must surface the storage-layer
// uniqueness violation on (student, exam) so the grading engine can map it
// to a duplicate-submission rejection.
type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error

	Get(ctx context.Context, studentID, examID uint) (*models.Grade, error)
	GetByStudent(ctx context.Context, studentID uint) ([]*models.Grade, error)
	GetByStudentWithExams(ctx context.Context, studentID uint) ([]*models.Grade, error)
	GetByExam(ctx context.Context, examID uint) ([]*models.Grade, error)
	GetByExamWithStudents(ctx context.Context, examID uint) ([]*models.Grade, error)
	GetFailingByExam(ctx context.Context, examID uint) ([]*models.Grade, error)
	GradesByStudentForExams(ctx context.Context, studentID uint, examIDs []uint) (map[uint]*models.Grade, error)

	List(ctx context.Context, filters GradeFilters) ([]*models.Grade, error)
	CountGrades(ctx context.Context, filters GradeFilters) (int64, error)
	CountStudentsWithoutGrades(ctx context.Context) (int64, error)
}

// AnswerRepository owns the per-question answer rows backing per-question
// accuracy statistics.
type AnswerRepository interface {
	CreateBatch(ctx context.Context, answers []models.StudentAnswer) error
	GetByExam(ctx context.Context, examID uint) ([]*models.StudentAnswer, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}
