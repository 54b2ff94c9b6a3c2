package services

import (
	"context"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/events"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// ===== REQUEST/RESPONSE STRUCTURES =====

// CreateCorrectiveRequest schedules a retake of a source exam. Omitted
// schedule fields inherit from the source, with the date pushed forward by
// the configured default offset.
type CreateCorrectiveRequest struct {
	Date      *time.Time `json:"date"`
	StartTime *string    `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string    `json:"end_time" validate:"omitempty,datetime=15:04"`
}

// CorrectiveResult returns the new exam together with an informational
// snapshot of the students who failed the source exam. Eligibility is not
// enforced at submission time; any cohort member may sit the retake.
type CorrectiveResult struct {
	Exam             *models.Exam      `json:"exam"`
	SourceExamID     uint              `json:"source_exam_id"`
	EligibleStudents []*models.Student `json:"eligible_students"`
}

// CorrectiveServiceInterface defines corrective exam derivation
type CorrectiveServiceInterface interface {
	CreateCorrective(ctx context.Context, identity models.Identity, sourceExamID uint, req *CreateCorrectiveRequest) (*CorrectiveResult, error)
}

// CorrectiveService derives retake exams from failed source exams. The
// paper is copied verbatim so the retake tests exactly what was failed.
type CorrectiveService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
	rules     *config.Rules
	publisher events.EventPublisher
	now       func() time.Time
}

func NewCorrectiveService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	rules *config.Rules,
	publisher events.EventPublisher,
	now func() time.Time,
) CorrectiveServiceInterface {
	if now == nil {
		now = time.Now
	}
	return &CorrectiveService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		rules:     rules,
		publisher: publisher,
		now:       now,
	}
}

// CreateCorrective checks the source exam's preconditions in order, then
// copies its paper into a new corrective exam in one transaction.
func (s *CorrectiveService) CreateCorrective(ctx context.Context, identity models.Identity, sourceExamID uint, req *CreateCorrectiveRequest) (*CorrectiveResult, error) {
	if req == nil {
		req = &CreateCorrectiveRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	source, err := s.repo.Exam().GetByIDWithQuestions(ctx, sourceExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStorageError("get source exam", err)
	}

	// A corrective exam never spawns another corrective exam.
	if source.Corrective {
		return nil, ErrSourceExamCorrective
	}

	// Ownership: only the source exam's instructor may derive the retake.
	if !identity.IsInstructor() || *identity.InstructorID != source.InstructorID {
		return nil, ErrNotExamOwner
	}

	failing, err := s.repo.Grade().GetFailingByExam(ctx, sourceExamID)
	if err != nil {
		return nil, NewStorageError("get failing grades", err)
	}
	if len(failing) == 0 {
		return nil, ErrNoFailingGrades
	}

	date := source.Date.AddDate(0, 0, s.rules.CorrectiveOffsetDays)
	if req.Date != nil {
		date = *req.Date
	}
	startTime := source.StartTime
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	endTime := source.EndTime
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if endTime <= startTime {
		return nil, NewValidationError("end_time", "end time must be after start time", endTime)
	}

	now := s.now()
	if !date.After(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())) {
		return nil, ErrCorrectiveDateNotFuture
	}

	exists, err := s.repo.Exam().ExistsCorrectiveAt(ctx, source.CourseID, source.TrackID, source.BranchID, source.IntakeID, source.InstructorID, date)
	if err != nil {
		return nil, NewStorageError("check existing corrective", err)
	}
	if exists {
		return nil, ErrCorrectiveExists
	}

	parentID := source.ID
	corrective := &models.Exam{
		CourseID:     source.CourseID,
		InstructorID: source.InstructorID,
		TrackID:      source.TrackID,
		BranchID:     source.BranchID,
		IntakeID:     source.IntakeID,
		Date:         date,
		StartTime:    startTime,
		EndTime:      endTime,
		Corrective:   true,
		ParentExamID: &parentID,
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

	if err = txRepo.Exam().Create(ctx, corrective); err != nil {
		return nil, NewStorageError("create corrective exam", err)
	}

	// Copy the paper verbatim, same questions in the same order.
	bindings := make([]models.ExamQuestion, len(source.Questions))
	for i, binding := range source.Questions {
		bindings[i] = models.ExamQuestion{
			ExamID:     corrective.ID,
			Position:   binding.Position,
			QuestionID: binding.QuestionID,
		}
	}
	if err = txRepo.Exam().AddQuestions(ctx, bindings); err != nil {
		return nil, NewStorageError("create corrective exam questions", err)
	}

	var entry *models.AuditLog
	entry, err = buildAuditEntry(identity, models.AuditCorrectiveCreated, "exam", corrective.ID,
		"corrective exam created", map[string]interface{}{
			"source_exam_id":   source.ID,
			"date":             date.Format("2006-01-02"),
			"failing_students": len(failing),
			"question_count":   len(bindings),
		})
	if err != nil {
		return nil, err
	}
	if err = txRepo.Audit().Create(ctx, entry); err != nil {
		return nil, NewStorageError("create audit entry", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, NewStorageError("commit transaction", err)
	}

	eligible := make([]*models.Student, 0, len(failing))
	for _, grade := range failing {
		student := grade.Student
		eligible = append(eligible, &student)
	}

	s.logger.InfoContext(ctx, "Corrective exam created",
		"exam_id", corrective.ID,
		"source_exam_id", source.ID,
		"date", date.Format("2006-01-02"),
		"eligible_students", len(eligible))

	if s.publisher != nil {
		if pubErr := s.publisher.PublishExamEvent(ctx, events.NewCorrectiveCreatedEvent(corrective, source.ID, len(eligible))); pubErr != nil {
			s.logger.WarnContext(ctx, "Failed to publish event",
				"event_type", events.EventCorrectiveCreated, "error", pubErr)
		}
	}

	return &CorrectiveResult{
		Exam:             corrective,
		SourceExamID:     source.ID,
		EligibleStudents: eligible,
	}, nil
}
