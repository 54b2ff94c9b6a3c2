package postgres

import (
	"context"
	"errors"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"gorm.io/gorm"
)

type GradePostgreSQL struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &GradePostgreSQL{db: db}
}

// Create inserts the grade row. The unique index on (student_id, exam_id)
// makes the insert the arbiter of concurrent duplicate submissions; the
// resulting gorm.ErrDuplicatedKey is surfaced unchanged.
func (g *GradePostgreSQL) Create(ctx context.Context, grade *models.Grade) error {
	return g.db.WithContext(ctx).Create(grade).Error
}

func (g *GradePostgreSQL) Get(ctx context.Context, studentID, examID uint) (*models.Grade, error) {
	var grade models.Grade
	if err := g.db.WithContext(ctx).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		First(&grade).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}

func (g *GradePostgreSQL) GetByStudent(ctx context.Context, studentID uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	if err := g.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (g *GradePostgreSQL) GetByStudentWithExams(ctx context.Context, studentID uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	if err := g.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Exam").
		Preload("Exam.Course").
		Order("created_at").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (g *GradePostgreSQL) GetByExam(ctx context.Context, examID uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	if err := g.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (g *GradePostgreSQL) GetByExamWithStudents(ctx context.Context, examID uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	if err := g.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Preload("Student").
		Order("percentage desc").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (g *GradePostgreSQL) GetFailingByExam(ctx context.Context, examID uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	if err := g.db.WithContext(ctx).
		Where("exam_id = ? AND passed = ?", examID, false).
		Preload("Student").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (g *GradePostgreSQL) GradesByStudentForExams(ctx context.Context, studentID uint, examIDs []uint) (map[uint]*models.Grade, error) {
	if len(examIDs) == 0 {
		return map[uint]*models.Grade{}, nil
	}

	var grades []*models.Grade
	if err := g.db.WithContext(ctx).
		Where("student_id = ? AND exam_id IN ?", studentID, examIDs).
		Find(&grades).Error; err != nil {
		return nil, err
	}

	byExam := make(map[uint]*models.Grade, len(grades))
	for _, grade := range grades {
		byExam[grade.ExamID] = grade
	}
	return byExam, nil
}

func (g *GradePostgreSQL) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, error) {
	var grades []*models.Grade
	query := g.applyFilters(g.db.WithContext(ctx).Model(&models.Grade{}), filters)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (g *GradePostgreSQL) CountGrades(ctx context.Context, filters repositories.GradeFilters) (int64, error) {
	var count int64
	query := g.applyFilters(g.db.WithContext(ctx).Model(&models.Grade{}), filters)
	err := query.Count(&count).Error
	return count, err
}

// CountStudentsWithoutGrades counts students with no submission at all, a
// health indicator on the organization dashboards.
func (g *GradePostgreSQL) CountStudentsWithoutGrades(ctx context.Context) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("NOT EXISTS (SELECT 1 FROM grades WHERE grades.student_id = students.id)").
		Count(&count).Error
	return count, err
}

func (g *GradePostgreSQL) applyFilters(query *gorm.DB, filters repositories.GradeFilters) *gorm.DB {
	if filters.StudentID != nil {
		query = query.Where("grades.student_id = ?", *filters.StudentID)
	}
	if filters.ExamID != nil {
		query = query.Where("grades.exam_id = ?", *filters.ExamID)
	}
	if filters.Passed != nil {
		query = query.Where("grades.passed = ?", *filters.Passed)
	}
	if filters.BranchID != nil || filters.TrackID != nil || filters.IntakeID != nil {
		query = query.Joins("JOIN exams ON exams.id = grades.exam_id")
		if filters.BranchID != nil {
			query = query.Where("exams.branch_id = ?", *filters.BranchID)
		}
		if filters.TrackID != nil {
			query = query.Where("exams.track_id = ?", *filters.TrackID)
		}
		if filters.IntakeID != nil {
			query = query.Where("exams.intake_id = ?", *filters.IntakeID)
		}
	}
	return query
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a *AnswerPostgreSQL) CreateBatch(ctx context.Context, answers []models.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).Create(&answers).Error
}

func (a *AnswerPostgreSQL) GetByExam(ctx context.Context, examID uint) ([]*models.StudentAnswer, error) {
	var answers []*models.StudentAnswer
	if err := a.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

type AuditPostgreSQL struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{db: db}
}

func (a *AuditPostgreSQL) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil {
		return errors.New("nil audit entry")
	}
	return a.db.WithContext(ctx).Create(entry).Error
}
