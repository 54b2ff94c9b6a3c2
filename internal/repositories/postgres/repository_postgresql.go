package postgres

import (
	"context"
	"errors"

	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"gorm.io/gorm"
)

// RepositoryPostgreSQL is the root repository manager. The zero-tx instance
// runs every call on the shared pool; Begin returns an instance whose
// repositories are all bound to one transaction.
type RepositoryPostgreSQL struct {
	db   *gorm.DB
	inTx bool

	catalog  repositories.CatalogRepository
	question repositories.QuestionRepository
	exam     repositories.ExamRepository
	grade    repositories.GradeRepository
	answer   repositories.AnswerRepository
	audit    repositories.AuditRepository
}

func NewRepository(db *gorm.DB) repositories.TransactionRepository {
	return newRepository(db, false)
}

func newRepository(db *gorm.DB, inTx bool) *RepositoryPostgreSQL {
	return &RepositoryPostgreSQL{
		db:       db,
		inTx:     inTx,
		catalog:  NewCatalogPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		exam:     NewExamPostgreSQL(db),
		grade:    NewGradePostgreSQL(db),
		answer:   NewAnswerPostgreSQL(db),
		audit:    NewAuditPostgreSQL(db),
	}
}

func (r *RepositoryPostgreSQL) Catalog() repositories.CatalogRepository   { return r.catalog }
func (r *RepositoryPostgreSQL) Question() repositories.QuestionRepository { return r.question }
func (r *RepositoryPostgreSQL) Exam() repositories.ExamRepository         { return r.exam }
func (r *RepositoryPostgreSQL) Grade() repositories.GradeRepository       { return r.grade }
func (r *RepositoryPostgreSQL) Answer() repositories.AnswerRepository     { return r.answer }
func (r *RepositoryPostgreSQL) Audit() repositories.AuditRepository       { return r.audit }

func (r *RepositoryPostgreSQL) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return newRepository(tx, true), nil
}

func (r *RepositoryPostgreSQL) Commit(ctx context.Context) error {
	if !r.inTx {
		return errors.New("commit outside transaction")
	}
	return r.db.Commit().Error
}

func (r *RepositoryPostgreSQL) Rollback(ctx context.Context) error {
	if !r.inTx {
		return errors.New("rollback outside transaction")
	}
	return r.db.Rollback().Error
}
