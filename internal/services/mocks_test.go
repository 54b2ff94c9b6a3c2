package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
)

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetIntake(ctx context.Context, id uint) (*models.Intake, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Intake), args.Error(1)
}

func (m *MockCatalogRepository) GetBranch(ctx context.Context, id uint) (*models.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branch), args.Error(1)
}

func (m *MockCatalogRepository) GetTrack(ctx context.Context, id uint) (*models.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Track), args.Error(1)
}

func (m *MockCatalogRepository) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCatalogRepository) GetInstructor(ctx context.Context, id uint) (*models.Instructor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Instructor), args.Error(1)
}

func (m *MockCatalogRepository) GetStudent(ctx context.Context, id uint) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockCatalogRepository) ListBranches(ctx context.Context) ([]*models.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Branch), args.Error(1)
}

func (m *MockCatalogRepository) ListTracks(ctx context.Context) ([]*models.Track, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Track), args.Error(1)
}

func (m *MockCatalogRepository) IsTrackOpened(ctx context.Context, trackID, branchID, intakeID uint) (bool, error) {
	args := m.Called(ctx, trackID, branchID, intakeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) IsInstructorAtBranch(ctx context.Context, instructorID, branchID, intakeID uint) (bool, error) {
	args := m.Called(ctx, instructorID, branchID, intakeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) HasAssignment(ctx context.Context, instructorID, courseID, trackID, branchID, intakeID uint) (bool, error) {
	args := m.Called(ctx, instructorID, courseID, trackID, branchID, intakeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) StudentsByCohort(ctx context.Context, trackID, branchID, intakeID uint) ([]*models.Student, error) {
	args := m.Called(ctx, trackID, branchID, intakeID)
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockCatalogRepository) CountStudentsByCohort(ctx context.Context, trackID, branchID, intakeID uint) (int64, error) {
	args := m.Called(ctx, trackID, branchID, intakeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountStudentsByBranch(ctx context.Context, branchID uint) (int64, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountStudentsByBranchAndStatus(ctx context.Context, branchID uint, status models.StudentStatus) (int64, error) {
	args := m.Called(ctx, branchID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountStudentsByTrack(ctx context.Context, trackID uint) (int64, error) {
	args := m.Called(ctx, trackID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountStudentsByStatus(ctx context.Context, status models.StudentStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountStudents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountInstructors(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountCourses(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) UpdateStudentStatus(ctx context.Context, studentID uint, status models.StudentStatus) error {
	args := m.Called(ctx, studentID, status)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByCourse(ctx context.Context, courseID uint) ([]*models.Question, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) ListIDsByCourse(ctx context.Context, courseID uint, questionType *models.QuestionType) ([]uint, error) {
	args := m.Called(ctx, courseID, questionType)
	return args.Get(0).([]uint), args.Error(1)
}

// MockExamRepository is a mock implementation of ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	args := m.Called(ctx, exam)
	if args.Error(0) == nil && exam.ID == 0 {
		exam.ID = 100
	}
	return args.Error(0)
}

func (m *MockExamRepository) AddQuestions(ctx context.Context, bindings []models.ExamQuestion) error {
	args := m.Called(ctx, bindings)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Exam), args.Get(1).(int64), args.Error(2)
}

func (m *MockExamRepository) GetByCohort(ctx context.Context, trackID, branchID, intakeID uint) ([]*models.Exam, error) {
	args := m.Called(ctx, trackID, branchID, intakeID)
	return args.Get(0).([]*models.Exam), args.Error(1)
}

func (m *MockExamRepository) ExistsCorrectiveAt(ctx context.Context, courseID, trackID, branchID, intakeID, instructorID uint, date time.Time) (bool, error) {
	args := m.Called(ctx, courseID, trackID, branchID, intakeID, instructorID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockExamRepository) CountExams(ctx context.Context, filters repositories.ExamFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExamRepository) GetStartingWithin(ctx context.Context, from time.Time, days int) ([]*models.Exam, error) {
	args := m.Called(ctx, from, days)
	return args.Get(0).([]*models.Exam), args.Error(1)
}

// MockGradeRepository is a mock implementation of GradeRepository
type MockGradeRepository struct {
	mock.Mock
}

func (m *MockGradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	args := m.Called(ctx, grade)
	return args.Error(0)
}

func (m *MockGradeRepository) Get(ctx context.Context, studentID, examID uint) (*models.Grade, error) {
	args := m.Called(ctx, studentID, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) GetByStudent(ctx context.Context, studentID uint) ([]*models.Grade, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) GetByStudentWithExams(ctx context.Context, studentID uint) ([]*models.Grade, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) GetByExam(ctx context.Context, examID uint) ([]*models.Grade, error) {
	args := m.Called(ctx, examID)
	return args.Get(0).([]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) GetByExamWithStudents(ctx context.Context, examID uint) ([]*models.Grade, error) {
	args := m.Called(ctx, examID)
	return args.Get(0).([]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) GetFailingByExam(ctx context.Context, examID uint) ([]*models.Grade, error) {
	args := m.Called(ctx, examID)
	return args.Get(0).([]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) GradesByStudentForExams(ctx context.Context, studentID uint, examIDs []uint) (map[uint]*models.Grade, error) {
	args := m.Called(ctx, studentID, examIDs)
	return args.Get(0).(map[uint]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Grade), args.Error(1)
}

func (m *MockGradeRepository) CountGrades(ctx context.Context, filters repositories.GradeFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGradeRepository) CountStudentsWithoutGrades(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAnswerRepository is a mock implementation of AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) CreateBatch(ctx context.Context, answers []models.StudentAnswer) error {
	args := m.Called(ctx, answers)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetByExam(ctx context.Context, examID uint) ([]*models.StudentAnswer, error) {
	args := m.Called(ctx, examID)
	return args.Get(0).([]*models.StudentAnswer), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// mockRepoManager bundles the entity mocks and satisfies
// TransactionRepository so the services' transaction plumbing runs
// unchanged in tests.
type mockRepoManager struct {
	catalog  *MockCatalogRepository
	question *MockQuestionRepository
	exam     *MockExamRepository
	grade    *MockGradeRepository
	answer   *MockAnswerRepository
	audit    *MockAuditRepository

	commits   int
	rollbacks int
}

func newMockRepoManager() *mockRepoManager {
	return &mockRepoManager{
		catalog:  &MockCatalogRepository{},
		question: &MockQuestionRepository{},
		exam:     &MockExamRepository{},
		grade:    &MockGradeRepository{},
		answer:   &MockAnswerRepository{},
		audit:    &MockAuditRepository{},
	}
}

func (m *mockRepoManager) Catalog() repositories.CatalogRepository   { return m.catalog }
func (m *mockRepoManager) Question() repositories.QuestionRepository { return m.question }
func (m *mockRepoManager) Exam() repositories.ExamRepository         { return m.exam }
func (m *mockRepoManager) Grade() repositories.GradeRepository       { return m.grade }
func (m *mockRepoManager) Answer() repositories.AnswerRepository     { return m.answer }
func (m *mockRepoManager) Audit() repositories.AuditRepository       { return m.audit }

func (m *mockRepoManager) Begin(ctx context.Context) (repositories.Repository, error) {
	return m, nil
}

func (m *mockRepoManager) Commit(ctx context.Context) error {
	m.commits++
	return nil
}

func (m *mockRepoManager) Rollback(ctx context.Context) error {
	m.rollbacks++
	return nil
}

var _ repositories.TransactionRepository = (*mockRepoManager)(nil)
