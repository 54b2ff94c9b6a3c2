package services

import (
	"context"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/cache"
	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/events"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// ===== REQUEST/RESPONSE STRUCTURES =====

// SubmitExamRequest maps paper question ids to the chosen choice ids.
// Questions absent from the map score zero.
type SubmitExamRequest struct {
	Answers map[uint]uint `json:"answers" validate:"required"`
}

// SubmissionResult echoes the recorded grade back to the student.
type SubmissionResult struct {
	ExamID     uint               `json:"exam_id"`
	StudentID  uint               `json:"student_id"`
	Score      float64            `json:"score"`
	OutOf      int                `json:"out_of"`
	Percentage float64            `json:"percentage"`
	Letter     models.LetterGrade `json:"letter"`
	Passed     bool               `json:"passed"`
}

// SubmissionServiceInterface defines the grading engine entry point
type SubmissionServiceInterface interface {
	Submit(ctx context.Context, identity models.Identity, studentID, examID uint, req *SubmitExamRequest) (*SubmissionResult, error)
}

// SubmissionService grades student submissions against the exam paper.
type SubmissionService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
	rules     *config.Rules
	cache     cache.CacheService
	publisher events.EventPublisher
	now       func() time.Time
}

func NewSubmissionService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	rules *config.Rules,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	now func() time.Time,
) SubmissionServiceInterface {
	if now == nil {
		now = time.Now
	}
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	return &SubmissionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		rules:     rules,
		cache:     cacheService,
		publisher: publisher,
		now:       now,
	}
}

// Submit grades a student's answers and records the result. The grade row
// is written exactly once per (student, exam); the storage-layer unique
// constraint is the arbiter under concurrent submissions and the loser gets
// a DuplicateSubmissionError with no write.
func (s *SubmissionService) Submit(ctx context.Context, identity models.Identity, studentID, examID uint, req *SubmitExamRequest) (*SubmissionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.repo.Catalog().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, NewStorageError("get student", err)
	}

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStorageError("get exam", err)
	}

	if !student.SameCohort(exam) {
		return nil, ErrStudentNotInCohort
	}

	// A recorded grade wins over the clock: a resubmission is rejected as a
	// duplicate even after the window closes. The unique index on the insert
	// below stays the arbiter under concurrency.
	if _, gerr := s.repo.Grade().Get(ctx, studentID, examID); gerr == nil {
		return nil, NewDuplicateSubmissionError(studentID, examID)
	} else if !repositories.IsNotFoundError(gerr) {
		return nil, NewStorageError("get grade", gerr)
	}

	switch ResolveAvailability(exam, false, s.now()) {
	case StatusUpcoming:
		return nil, ErrExamNotStarted
	case StatusExpired:
		return nil, ErrExamWindowClosed
	}

	result, answers, err := scoreAnswers(exam, studentID, req.Answers)
	if err != nil {
		return nil, err
	}

	percentage := 0.0
	if result.OutOf > 0 {
		percentage = result.Score / float64(result.OutOf) * 100
	}
	grade := &models.Grade{
		StudentID:  studentID,
		ExamID:     examID,
		Score:      result.Score,
		Percentage: percentage,
		Letter:     s.rules.Letter(percentage),
		Passed:     s.rules.Passed(percentage),
	}

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, NewStorageError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	if err = txRepo.Grade().Create(ctx, grade); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			err = NewDuplicateSubmissionError(studentID, examID)
			return nil, err
		}
		return nil, NewStorageError("create grade", err)
	}

	if len(answers) > 0 {
		if err = txRepo.Answer().CreateBatch(ctx, answers); err != nil {
			return nil, NewStorageError("create answers", err)
		}
	}

	if err = s.writeAudit(ctx, txRepo, identity, grade); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, NewStorageError("commit transaction", err)
	}

	s.invalidateCaches(ctx, student, exam)

	s.logger.InfoContext(ctx, "Grade recorded",
		"student_id", studentID,
		"exam_id", examID,
		"percentage", grade.Percentage,
		"letter", grade.Letter,
		"passed", grade.Passed)

	if s.publisher != nil {
		if pubErr := s.publisher.PublishExamEvent(ctx, events.NewGradeRecordedEvent(grade)); pubErr != nil {
			s.logger.WarnContext(ctx, "Failed to publish event",
				"event_type", events.EventGradeRecorded, "error", pubErr)
		}
	}

	result.Percentage = grade.Percentage
	result.Letter = grade.Letter
	result.Passed = grade.Passed
	return result, nil
}

// scoreAnswers grades an answers map against the exam paper. It is pure:
// no clock, no storage, deterministic for a given paper and answers.
// An answer for a question not on the paper rejects the whole submission.
func scoreAnswers(exam *models.Exam, studentID uint, answers map[uint]uint) (*SubmissionResult, []models.StudentAnswer, error) {
	paper := make(map[uint]*models.Question, len(exam.Questions))
	for i := range exam.Questions {
		q := &exam.Questions[i].Question
		paper[q.ID] = q
	}

	for qid := range answers {
		if _, ok := paper[qid]; !ok {
			return nil, nil, NewValidationError("answers",
				"answer references a question not on this exam", qid)
		}
	}

	var score float64
	rows := make([]models.StudentAnswer, 0, len(exam.Questions))
	for i := range exam.Questions {
		q := &exam.Questions[i].Question
		row := models.StudentAnswer{
			StudentID:  studentID,
			ExamID:     exam.ID,
			QuestionID: q.ID,
		}
		if choiceID, answered := answers[q.ID]; answered {
			cid := choiceID
			row.ChoiceID = &cid
			if correct := q.CorrectChoiceID(); correct != 0 && choiceID == correct {
				row.IsCorrect = true
				score++
			}
		}
		rows = append(rows, row)
	}

	return &SubmissionResult{
		ExamID:    exam.ID,
		StudentID: studentID,
		Score:     score,
		OutOf:     len(exam.Questions),
	}, rows, nil
}

func (s *SubmissionService) writeAudit(ctx context.Context, repo repositories.Repository, identity models.Identity, grade *models.Grade) error {
	entry, err := buildAuditEntry(identity, models.AuditGradeRecorded, "grade", grade.ExamID,
		"grade recorded", map[string]interface{}{
			"student_id": grade.StudentID,
			"exam_id":    grade.ExamID,
			"percentage": grade.Percentage,
			"letter":     string(grade.Letter),
			"passed":     grade.Passed,
		})
	if err != nil {
		return err
	}
	if err := repo.Audit().Create(ctx, entry); err != nil {
		return NewStorageError("create audit entry", err)
	}
	return nil
}

func (s *SubmissionService) invalidateCaches(ctx context.Context, student *models.Student, exam *models.Exam) {
	keys := []string{
		cacheKeyStudentSummary(student.ID),
		cacheKeyExamStatistics(exam.ID),
		cacheKeyBranchDashboard(exam.BranchID, exam.IntakeID),
		cacheKeyTrackDashboard(exam.TrackID, exam.IntakeID),
		cacheKeySystemDashboard(exam.IntakeID),
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate cache", "key", key, "error", err)
		}
	}
}
