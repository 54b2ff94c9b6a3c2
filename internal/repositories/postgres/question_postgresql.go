package postgres

import (
	"context"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).Preload("Choices").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Preload("Choices").
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetByCourse(ctx context.Context, courseID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Preload("Choices").
		Where("course_id = ?", courseID).
		Order("id").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (q *QuestionPostgreSQL) ListIDsByCourse(ctx context.Context, courseID uint, questionType *models.QuestionType) ([]uint, error) {
	var ids []uint
	query := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("course_id = ?", courseID)
	if questionType != nil {
		query = query.Where("type = ?", *questionType)
	}
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
