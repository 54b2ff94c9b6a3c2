package services

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"gorm.io/datatypes"

	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/events"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// ===== REQUEST/RESPONSE STRUCTURES =====

// CreateExamRequest carries everything needed to generate one exam paper.
type CreateExamRequest struct {
	CourseID     uint   `json:"course_id" validate:"required"`
	InstructorID uint   `json:"instructor_id" validate:"required"`
	TrackID      uint   `json:"track_id" validate:"required"`
	BranchID     uint   `json:"branch_id" validate:"required"`
	IntakeID     uint   `json:"intake_id" validate:"required"`

	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string    `json:"end_time" validate:"required,datetime=15:04"`

	QuestionCount int `json:"question_count" validate:"required,min=1"`

	// Optional per-type split. When both are set they must sum to
	// QuestionCount and each type is sampled from its own sub-pool.
	MCQCount       *int `json:"mcq_count" validate:"omitempty,min=0"`
	TrueFalseCount *int `json:"true_false_count" validate:"omitempty,min=0"`
}

// ExamServiceInterface defines exam generation and listing operations
type ExamServiceInterface interface {
	CreateExam(ctx context.Context, identity models.Identity, req *CreateExamRequest) (*models.Exam, error)
	GetExam(ctx context.Context, examID uint) (*models.Exam, error)
	GetExamPaper(ctx context.Context, examID uint) (*models.Exam, error)
	ListExams(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error)
	ListAvailableForStudent(ctx context.Context, studentID uint, now time.Time) ([]ExamSummary, error)
}

// ExamService generates exam papers by sampling course question banks.
type ExamService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
	rules     *config.Rules
	publisher events.EventPublisher
	rng       *rand.Rand
}

func NewExamService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	rules *config.Rules,
	publisher events.EventPublisher,
	rng *rand.Rand,
) ExamServiceInterface {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ExamService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		rules:     rules,
		publisher: publisher,
		rng:       rng,
	}
}

// CreateExam runs the guard sequence, samples the paper and persists exam
// plus bindings atomically. Guards run in order and the first failure wins.
func (s *ExamService) CreateExam(ctx context.Context, identity models.Identity, req *CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	// Time-of-day strings in "15:04" format order lexically.
	if req.EndTime <= req.StartTime {
		return nil, NewValidationError("end_time", "end time must be after start time", req.EndTime)
	}
	if req.MCQCount != nil && req.TrueFalseCount != nil &&
		*req.MCQCount+*req.TrueFalseCount != req.QuestionCount {
		return nil, NewValidationError("question_count",
			"mcq_count and true_false_count must sum to question_count", req.QuestionCount)
	}

	// Guard 1: instructor exists.
	if _, err := s.repo.Catalog().GetInstructor(ctx, req.InstructorID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInstructorNotFound
		}
		return nil, NewStorageError("get instructor", err)
	}

	// Guard 2: instructor belongs to the branch for this intake.
	atBranch, err := s.repo.Catalog().IsInstructorAtBranch(ctx, req.InstructorID, req.BranchID, req.IntakeID)
	if err != nil {
		return nil, NewStorageError("check instructor branch", err)
	}
	if !atBranch {
		return nil, ErrInstructorNotAtBranch
	}

	// Guard 3: instructor teaches this course for this cohort.
	assigned, err := s.repo.Catalog().HasAssignment(ctx, req.InstructorID, req.CourseID, req.TrackID, req.BranchID, req.IntakeID)
	if err != nil {
		return nil, NewStorageError("check instructor assignment", err)
	}
	if !assigned {
		return nil, ErrInstructorNotAssigned
	}

	// Guard 4: the cohort triple is opened.
	opened, err := s.repo.Catalog().IsTrackOpened(ctx, req.TrackID, req.BranchID, req.IntakeID)
	if err != nil {
		return nil, NewStorageError("check track opening", err)
	}
	if !opened {
		return nil, ErrTrackNotOpened
	}

	// Guard 5: the bank can cover the request.
	questionIDs, err := s.samplePaper(ctx, req)
	if err != nil {
		return nil, err
	}

	exam := &models.Exam{
		CourseID:     req.CourseID,
		InstructorID: req.InstructorID,
		TrackID:      req.TrackID,
		BranchID:     req.BranchID,
		IntakeID:     req.IntakeID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
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

	if err = txRepo.Exam().Create(ctx, exam); err != nil {
		return nil, NewStorageError("create exam", err)
	}

	bindings := make([]models.ExamQuestion, len(questionIDs))
	for i, qid := range questionIDs {
		bindings[i] = models.ExamQuestion{
			ExamID:     exam.ID,
			Position:   i + 1,
			QuestionID: qid,
		}
	}
	if err = txRepo.Exam().AddQuestions(ctx, bindings); err != nil {
		return nil, NewStorageError("create exam questions", err)
	}

	if err = s.writeAudit(ctx, txRepo, identity, models.AuditExamCreated, "exam", exam.ID,
		"exam created", map[string]interface{}{
			"course_id":      exam.CourseID,
			"question_count": len(bindings),
			"date":           exam.Date.Format("2006-01-02"),
		}); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, NewStorageError("commit transaction", err)
	}

	s.logger.InfoContext(ctx, "Exam created",
		"exam_id", exam.ID,
		"course_id", exam.CourseID,
		"instructor_id", exam.InstructorID,
		"question_count", len(bindings))

	s.publish(ctx, events.NewExamCreatedEvent(exam, len(bindings)))

	return exam, nil
}

// samplePaper picks the requested number of distinct question ids uniformly
// at random from the course bank, optionally split by question type.
func (s *ExamService) samplePaper(ctx context.Context, req *CreateExamRequest) ([]uint, error) {
	if req.MCQCount != nil && req.TrueFalseCount != nil {
		mcqType := models.MultipleChoice
		tfType := models.TrueFalse
		mcq, err := s.sampleFromPool(ctx, req.CourseID, &mcqType, *req.MCQCount)
		if err != nil {
			return nil, err
		}
		tf, err := s.sampleFromPool(ctx, req.CourseID, &tfType, *req.TrueFalseCount)
		if err != nil {
			return nil, err
		}
		return append(mcq, tf...), nil
	}
	return s.sampleFromPool(ctx, req.CourseID, nil, req.QuestionCount)
}

func (s *ExamService) sampleFromPool(ctx context.Context, courseID uint, qType *models.QuestionType, count int) ([]uint, error) {
	if count == 0 {
		return nil, nil
	}
	pool, err := s.repo.Question().ListIDsByCourse(ctx, courseID, qType)
	if err != nil {
		return nil, NewStorageError("list question pool", err)
	}
	if len(pool) < count {
		return nil, ErrInsufficientQuestions
	}
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count], nil
}

// GetExam returns the exam header without its paper.
func (s *ExamService) GetExam(ctx context.Context, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStorageError("get exam", err)
	}
	return exam, nil
}

// GetExamPaper returns the exam with its ordered questions and choices.
func (s *ExamService) GetExamPaper(ctx context.Context, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStorageError("get exam paper", err)
	}
	return exam, nil
}

func (s *ExamService) ListExams(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, 0, NewStorageError("list exams", err)
	}
	return exams, total, nil
}

// ListAvailableForStudent resolves the student's cohort exams against their
// recorded grades and returns the display-ordered list.
func (s *ExamService) ListAvailableForStudent(ctx context.Context, studentID uint, now time.Time) ([]ExamSummary, error) {
	student, err := s.repo.Catalog().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, NewStorageError("get student", err)
	}

	exams, err := s.repo.Exam().GetByCohort(ctx, student.TrackID, student.BranchID, student.IntakeID)
	if err != nil {
		return nil, NewStorageError("get cohort exams", err)
	}

	examIDs := make([]uint, len(exams))
	for i, e := range exams {
		examIDs[i] = e.ID
	}
	grades, err := s.repo.Grade().GradesByStudentForExams(ctx, studentID, examIDs)
	if err != nil {
		return nil, NewStorageError("get student grades", err)
	}

	rows := make([]ExamSummary, 0, len(exams))
	for _, e := range exams {
		grade, hasGrade := grades[e.ID]
		row := ExamSummary{
			ExamID:     e.ID,
			CourseID:   e.CourseID,
			CourseName: e.Course.Name,
			Date:       e.Date,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			Corrective: e.Corrective,
			Status:     ResolveAvailability(e, hasGrade, now),
		}
		if hasGrade {
			row.Result = &SubmittedResult{
				Score:      grade.Score,
				Percentage: grade.Percentage,
				Letter:     grade.Letter,
				Passed:     grade.Passed,
			}
		}
		rows = append(rows, row)
	}
	SortExamSummaries(rows)
	return rows, nil
}

// ===== SHARED SERVICE HELPERS =====

// writeAudit records an audit row inside the caller's transaction.
func (s *ExamService) writeAudit(ctx context.Context, repo repositories.Repository, identity models.Identity, eventType models.AuditEventType, targetType string, targetID uint, description string, metadata map[string]interface{}) error {
	entry, err := buildAuditEntry(identity, eventType, targetType, targetID, description, metadata)
	if err != nil {
		return err
	}
	if err := repo.Audit().Create(ctx, entry); err != nil {
		return NewStorageError("create audit entry", err)
	}
	return nil
}

func buildAuditEntry(identity models.Identity, eventType models.AuditEventType, targetType string, targetID uint, description string, metadata map[string]interface{}) (*models.AuditLog, error) {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return nil, NewStorageError("marshal audit metadata", err)
	}
	return &models.AuditLog{
		EventType:   eventType,
		ActorID:     identity.UserID,
		ActorRole:   identity.Role,
		TargetType:  targetType,
		TargetID:    targetID,
		Description: description,
		Metadata:    datatypes.JSON(payload),
	}, nil
}

func (s *ExamService) publish(ctx context.Context, event *events.ExamEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		// Event delivery is best-effort; the write already committed.
		s.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.Type, "error", err)
	}
}
