package postgres

import (
	"context"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgreSQL) AddQuestions(ctx context.Context, bindings []models.ExamQuestion) error {
	if len(bindings) == 0 {
		return nil
	}
	return e.db.WithContext(ctx).Create(&bindings).Error
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).
		Preload("Course").
		Preload("Instructor").
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).
		Preload("Course").
		Preload("Instructor").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("exam_questions.position")
		}).
		Preload("Questions.Question").
		Preload("Questions.Question.Choices").
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = e.applyPaginationAndSort(query, filters)

	if err := query.Preload("Course").Preload("Instructor").Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) GetByCohort(ctx context.Context, trackID, branchID, intakeID uint) ([]*models.Exam, error) {
	var exams []*models.Exam
	if err := e.db.WithContext(ctx).
		Where("track_id = ? AND branch_id = ? AND intake_id = ?", trackID, branchID, intakeID).
		Preload("Course").
		Preload("Instructor").
		Order("date, start_time").
		Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (e *ExamPostgreSQL) ExistsCorrectiveAt(ctx context.Context, courseID, trackID, branchID, intakeID, instructorID uint, date time.Time) (bool, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("course_id = ? AND track_id = ? AND branch_id = ? AND intake_id = ? AND instructor_id = ?",
			courseID, trackID, branchID, intakeID, instructorID).
		Where("corrective = ? AND date = ?", true, date).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *ExamPostgreSQL) CountExams(ctx context.Context, filters repositories.ExamFilters) (int64, error) {
	var count int64
	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.applyFilters(query, filters)
	err := query.Count(&count).Error
	return count, err
}

func (e *ExamPostgreSQL) GetStartingWithin(ctx context.Context, from time.Time, days int) ([]*models.Exam, error) {
	var exams []*models.Exam
	to := from.AddDate(0, 0, days)
	if err := e.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Preload("Course").
		Order("date, start_time").
		Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (e *ExamPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.TrackID != nil {
		query = query.Where("track_id = ?", *filters.TrackID)
	}
	if filters.BranchID != nil {
		query = query.Where("branch_id = ?", *filters.BranchID)
	}
	if filters.IntakeID != nil {
		query = query.Where("intake_id = ?", *filters.IntakeID)
	}
	if filters.Corrective != nil {
		query = query.Where("corrective = ?", *filters.Corrective)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	return query
}

// examOrderClause builds the ORDER BY fragment from caller-supplied sort
// parameters. Column and direction are both whitelisted; the fragment
// reaches the database verbatim.
func examOrderClause(filters repositories.ExamFilters) string {
	sortBy := filters.SortBy
	switch sortBy {
	case "date", "created_at":
	default:
		sortBy = "date"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "desc" {
		sortOrder = "asc"
	}
	return sortBy + " " + sortOrder
}

func (e *ExamPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	query = query.Order(examOrderClause(filters))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
