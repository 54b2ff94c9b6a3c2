package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/cache"
	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/events"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// ===== RESPONSE STRUCTURES =====

// StudentSummary aggregates one student's graded exams.
type StudentSummary struct {
	StudentID   uint                 `json:"student_id"`
	StudentName string               `json:"student_name"`
	Status      models.StudentStatus `json:"status"`

	ExamsTaken  int     `json:"exams_taken"`
	ExamsPassed int     `json:"exams_passed"`
	ExamsFailed int     `json:"exams_failed"`
	PassRate    float64 `json:"pass_rate"`
	AveragePct  float64 `json:"average_percentage"`
	MinPct      float64 `json:"min_percentage"`
	MaxPct      float64 `json:"max_percentage"`
	GPA         float64 `json:"gpa"`

	Courses          []CourseBreakdown `json:"courses"`
	NeedsRemediation []CourseBreakdown `json:"needs_remediation"`
}

// CourseBreakdown is one course's slice of a student summary. A course
// needs remediation when none of its attempts passed.
type CourseBreakdown struct {
	CourseID   uint               `json:"course_id"`
	CourseName string             `json:"course_name"`
	Attempts   int                `json:"attempts"`
	BestPct    float64            `json:"best_percentage"`
	BestLetter models.LetterGrade `json:"best_letter"`
	Passed     bool               `json:"passed"`
}

// ExamStatistics aggregates all submissions to one exam.
type ExamStatistics struct {
	ExamID     uint      `json:"exam_id"`
	CourseID   uint      `json:"course_id"`
	CourseName string    `json:"course_name"`
	Date       time.Time `json:"date"`
	Corrective bool      `json:"corrective"`

	ExpectedStudents  int64   `json:"expected_students"`
	SubmittedStudents int     `json:"submitted_students"`
	ParticipationRate float64 `json:"participation_rate"`

	AveragePct float64 `json:"average_percentage"`
	MinPct     float64 `json:"min_percentage"`
	MaxPct     float64 `json:"max_percentage"`
	StdDevPct  float64 `json:"stddev_percentage"`
	PassRate   float64 `json:"pass_rate"`

	LetterHistogram map[models.LetterGrade]int `json:"letter_histogram"`

	Questions       []QuestionStatistics `json:"questions"`
	NeverAttempted  []uint               `json:"never_attempted_question_ids"`
	TopPerformers   []GradeRow           `json:"top_performers"`
	FailingStudents []GradeRow           `json:"failing_students"`
}

// QuestionStatistics classifies one paper question by observed accuracy.
type QuestionStatistics struct {
	QuestionID uint              `json:"question_id"`
	Position   int               `json:"position"`
	Attempts   int               `json:"attempts"`
	Correct    int               `json:"correct"`
	Accuracy   float64           `json:"accuracy"`
	Difficulty config.Difficulty `json:"difficulty"`
}

// GradeRow is one student's line in an exam statistics listing.
type GradeRow struct {
	StudentID   uint               `json:"student_id"`
	StudentName string             `json:"student_name"`
	Percentage  float64            `json:"percentage"`
	Letter      models.LetterGrade `json:"letter"`
	Passed      bool               `json:"passed"`
}

// StatusResult reports a student status transition.
type StatusResult struct {
	StudentID  uint                 `json:"student_id"`
	From       models.StudentStatus `json:"from"`
	To         models.StudentStatus `json:"to"`
	Changed    bool                 `json:"changed"`
	Auto       bool                 `json:"auto"`
	ExamsTaken int                  `json:"exams_taken"`
	PassRate   float64              `json:"pass_rate"`
	Warning    string               `json:"warning,omitempty"`
}

// Dashboard is an organization rollup for one scope (branch, track or the
// whole system) within an explicit intake.
type Dashboard struct {
	Scope    string `json:"scope"`
	ScopeID  uint   `json:"scope_id,omitempty"`
	IntakeID uint   `json:"intake_id"`

	TotalStudents     int64 `json:"total_students"`
	ActiveStudents    int64 `json:"active_students,omitempty"`
	GraduatedStudents int64 `json:"graduated_students,omitempty"`
	TotalInstructors  int64 `json:"total_instructors,omitempty"`
	TotalCourses      int64 `json:"total_courses,omitempty"`
	TotalExams        int64 `json:"total_exams"`
	TotalGrades       int64 `json:"total_grades"`

	PassRate   float64 `json:"pass_rate"`
	AveragePct float64 `json:"average_percentage"`

	Health *HealthIndicators `json:"health,omitempty"`
}

// HealthIndicators flags attention-worthy conditions on a dashboard.
type HealthIndicators struct {
	StudentsWithoutSubmissions int64         `json:"students_without_submissions"`
	LowPassRateExams           []LowPassExam `json:"low_pass_rate_exams"`
	UpcomingExams              []ExamSummary `json:"upcoming_exams"`
}

// LowPassExam marks an exam whose pass rate fell below the configured mark.
type LowPassExam struct {
	ExamID   uint    `json:"exam_id"`
	Grades   int     `json:"grades"`
	PassRate float64 `json:"pass_rate"`
}

// ===== SERVICE =====

// PerformanceServiceInterface defines aggregation, status determination and
// organization rollups
type PerformanceServiceInterface interface {
	GetStudentSummary(ctx context.Context, studentID uint) (*StudentSummary, error)
	GetExamStatistics(ctx context.Context, examID uint) (*ExamStatistics, error)
	DetermineStatus(ctx context.Context, identity models.Identity, studentID uint, autoMode bool, manualStatus *models.StudentStatus) (*StatusResult, error)
	GetBranchDashboard(ctx context.Context, branchID, intakeID uint) (*Dashboard, error)
	GetTrackDashboard(ctx context.Context, trackID, intakeID uint) (*Dashboard, error)
	GetSystemDashboard(ctx context.Context, intakeID uint) (*Dashboard, error)
}

// PerformanceService is the single aggregator behind every performance
// surface. All dashboards consult it; none recompute on their own.
type PerformanceService struct {
	repo      repositories.Repository
	logger    utils.Logger
	rules     *config.Rules
	cache     cache.CacheService
	publisher events.EventPublisher
	now       func() time.Time
}

const cacheTTL = 5 * time.Minute

func NewPerformanceService(
	repo repositories.Repository,
	logger utils.Logger,
	rules *config.Rules,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	now func() time.Time,
) PerformanceServiceInterface {
	if now == nil {
		now = time.Now
	}
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	return &PerformanceService{
		repo:      repo,
		logger:    logger,
		rules:     rules,
		cache:     cacheService,
		publisher: publisher,
		now:       now,
	}
}

// GetStudentSummary computes a student's aggregate from their grades. The
// cache is a read shortcut only; a miss recomputes from storage.
func (s *PerformanceService) GetStudentSummary(ctx context.Context, studentID uint) (*StudentSummary, error) {
	key := cacheKeyStudentSummary(studentID)
	var cached StudentSummary
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	student, err := s.repo.Catalog().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, NewStorageError("get student", err)
	}

	grades, err := s.repo.Grade().GetByStudentWithExams(ctx, studentID)
	if err != nil {
		return nil, NewStorageError("get student grades", err)
	}

	summary := buildStudentSummary(student, grades, s.rules)

	if err := s.cache.Set(ctx, key, summary, cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache student summary", "key", key, "error", err)
	}
	return summary, nil
}

// buildStudentSummary is the pure aggregation core. A student with no
// grades gets a zero summary, never an error.
func buildStudentSummary(student *models.Student, grades []*models.Grade, rules *config.Rules) *StudentSummary {
	summary := &StudentSummary{
		StudentID:        student.ID,
		StudentName:      student.Name,
		Status:           student.Status,
		Courses:          []CourseBreakdown{},
		NeedsRemediation: []CourseBreakdown{},
	}
	if len(grades) == 0 {
		return summary
	}

	summary.ExamsTaken = len(grades)
	summary.MinPct = grades[0].Percentage
	summary.MaxPct = grades[0].Percentage

	var sum, points float64
	byCourse := map[uint]*CourseBreakdown{}
	var courseOrder []uint
	for _, g := range grades {
		sum += g.Percentage
		points += rules.Points(g.Letter)
		if g.Passed {
			summary.ExamsPassed++
		} else {
			summary.ExamsFailed++
		}
		if g.Percentage < summary.MinPct {
			summary.MinPct = g.Percentage
		}
		if g.Percentage > summary.MaxPct {
			summary.MaxPct = g.Percentage
		}

		courseID := g.Exam.CourseID
		row, ok := byCourse[courseID]
		if !ok {
			row = &CourseBreakdown{
				CourseID:   courseID,
				CourseName: g.Exam.Course.Name,
			}
			byCourse[courseID] = row
			courseOrder = append(courseOrder, courseID)
		}
		row.Attempts++
		if g.Percentage >= row.BestPct || row.Attempts == 1 {
			row.BestPct = g.Percentage
			row.BestLetter = g.Letter
		}
		if g.Passed {
			row.Passed = true
		}
	}

	summary.AveragePct = sum / float64(len(grades))
	summary.PassRate = float64(summary.ExamsPassed) / float64(len(grades)) * 100
	summary.GPA = points / float64(len(grades))

	for _, courseID := range courseOrder {
		row := byCourse[courseID]
		summary.Courses = append(summary.Courses, *row)
		if !row.Passed {
			summary.NeedsRemediation = append(summary.NeedsRemediation, *row)
		}
	}
	return summary
}

// GetExamStatistics computes participation, score distribution and
// per-question difficulty for one exam.
func (s *PerformanceService) GetExamStatistics(ctx context.Context, examID uint) (*ExamStatistics, error) {
	key := cacheKeyExamStatistics(examID)
	var cached ExamStatistics
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStorageError("get exam", err)
	}

	grades, err := s.repo.Grade().GetByExamWithStudents(ctx, examID)
	if err != nil {
		return nil, NewStorageError("get exam grades", err)
	}
	answers, err := s.repo.Answer().GetByExam(ctx, examID)
	if err != nil {
		return nil, NewStorageError("get exam answers", err)
	}
	expected, err := s.repo.Catalog().CountStudentsByCohort(ctx, exam.TrackID, exam.BranchID, exam.IntakeID)
	if err != nil {
		return nil, NewStorageError("count cohort students", err)
	}

	stats := buildExamStatistics(exam, grades, answers, expected, s.rules)

	if err := s.cache.Set(ctx, key, stats, cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache exam statistics", "key", key, "error", err)
	}
	return stats, nil
}

const topPerformerCount = 5

func buildExamStatistics(exam *models.Exam, grades []*models.Grade, answers []*models.StudentAnswer, expected int64, rules *config.Rules) *ExamStatistics {
	stats := &ExamStatistics{
		ExamID:            exam.ID,
		CourseID:          exam.CourseID,
		CourseName:        exam.Course.Name,
		Date:              exam.Date,
		Corrective:        exam.Corrective,
		ExpectedStudents:  expected,
		SubmittedStudents: len(grades),
		LetterHistogram:   map[models.LetterGrade]int{},
		Questions:         []QuestionStatistics{},
		NeverAttempted:    []uint{},
		TopPerformers:     []GradeRow{},
		FailingStudents:   []GradeRow{},
	}
	if expected > 0 {
		stats.ParticipationRate = float64(len(grades)) / float64(expected) * 100
	}

	if len(grades) > 0 {
		stats.MinPct = grades[0].Percentage
		stats.MaxPct = grades[0].Percentage
		var sum float64
		var passed int
		for _, g := range grades {
			sum += g.Percentage
			stats.LetterHistogram[g.Letter]++
			if g.Passed {
				passed++
			}
			if g.Percentage < stats.MinPct {
				stats.MinPct = g.Percentage
			}
			if g.Percentage > stats.MaxPct {
				stats.MaxPct = g.Percentage
			}
		}
		stats.AveragePct = sum / float64(len(grades))
		stats.PassRate = float64(passed) / float64(len(grades)) * 100

		var variance float64
		for _, g := range grades {
			d := g.Percentage - stats.AveragePct
			variance += d * d
		}
		stats.StdDevPct = math.Sqrt(variance / float64(len(grades)))

		ranked := make([]*models.Grade, len(grades))
		copy(ranked, grades)
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Percentage > ranked[j].Percentage })
		for i, g := range ranked {
			if i >= topPerformerCount {
				break
			}
			stats.TopPerformers = append(stats.TopPerformers, gradeRow(g))
		}
		for _, g := range ranked {
			if !g.Passed {
				stats.FailingStudents = append(stats.FailingStudents, gradeRow(g))
			}
		}
	}

	// Per-question tallies. An answer row exists for every paper question
	// of every submission, but a nil choice means the question was skipped
	// and does not count as an attempt.
	type tally struct{ attempts, correct int }
	tallies := map[uint]*tally{}
	for _, a := range answers {
		t, ok := tallies[a.QuestionID]
		if !ok {
			t = &tally{}
			tallies[a.QuestionID] = t
		}
		if a.ChoiceID != nil {
			t.attempts++
			if a.IsCorrect {
				t.correct++
			}
		}
	}

	for _, binding := range exam.Questions {
		t := tallies[binding.QuestionID]
		if t == nil || t.attempts == 0 {
			stats.NeverAttempted = append(stats.NeverAttempted, binding.QuestionID)
			continue
		}
		accuracy := float64(t.correct) / float64(t.attempts) * 100
		stats.Questions = append(stats.Questions, QuestionStatistics{
			QuestionID: binding.QuestionID,
			Position:   binding.Position,
			Attempts:   t.attempts,
			Correct:    t.correct,
			Accuracy:   accuracy,
			Difficulty: rules.Difficulty(accuracy),
		})
	}

	return stats
}

func gradeRow(g *models.Grade) GradeRow {
	return GradeRow{
		StudentID:   g.StudentID,
		StudentName: g.Student.Name,
		Percentage:  g.Percentage,
		Letter:      g.Letter,
		Passed:      g.Passed,
	}
}

// DetermineStatus applies the graduation rules to a student. In auto mode
// the status only changes once the student has taken the minimum number of
// exams; below that the current status is kept and reported unchanged. In
// manual mode the supplied status is applied as-is, with a non-blocking
// warning when Graduated is forced below the configured pass rate.
func (s *PerformanceService) DetermineStatus(ctx context.Context, identity models.Identity, studentID uint, autoMode bool, manualStatus *models.StudentStatus) (*StatusResult, error) {
	student, err := s.repo.Catalog().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, NewStorageError("get student", err)
	}

	grades, err := s.repo.Grade().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, NewStorageError("get student grades", err)
	}

	var passed int
	for _, g := range grades {
		if g.Passed {
			passed++
		}
	}
	passRate := 0.0
	if len(grades) > 0 {
		passRate = float64(passed) / float64(len(grades)) * 100
	}

	result := &StatusResult{
		StudentID:  studentID,
		From:       student.Status,
		To:         student.Status,
		Auto:       autoMode,
		ExamsTaken: len(grades),
		PassRate:   passRate,
	}

	if autoMode {
		if len(grades) < s.rules.MinExamsForStatus {
			return result, nil
		}
		if passRate >= s.rules.GraduationPassRate {
			result.To = models.StudentGraduated
		} else {
			result.To = models.StudentNotGraduated
		}
	} else {
		if manualStatus == nil {
			return nil, NewValidationError("status", "manual mode requires a status", nil)
		}
		result.To = *manualStatus
		if *manualStatus == models.StudentGraduated && passRate < s.rules.ManualGraduationWarnRate {
			result.Warning = "student pass rate is below the graduation warning threshold"
			s.logger.WarnContext(ctx, "Manual graduation below warning threshold",
				"student_id", studentID, "pass_rate", passRate)
		}
	}

	if result.To == result.From {
		return result, nil
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

	if err = txRepo.Catalog().UpdateStudentStatus(ctx, studentID, result.To); err != nil {
		return nil, NewStorageError("update student status", err)
	}

	var entry *models.AuditLog
	entry, err = buildAuditEntry(identity, models.AuditStatusChanged, "student", studentID,
		"student status changed", map[string]interface{}{
			"from":       string(result.From),
			"to":         string(result.To),
			"auto":       autoMode,
			"exams":      len(grades),
			"pass_rate":  passRate,
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

	result.Changed = true

	if delErr := s.cache.Delete(ctx, cacheKeyStudentSummary(studentID)); delErr != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate cache", "student_id", studentID, "error", delErr)
	}
	if delErr := s.cache.DeletePattern(ctx, cacheKeyDashboards); delErr != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate dashboards", "error", delErr)
	}

	s.logger.InfoContext(ctx, "Student status changed",
		"student_id", studentID, "from", result.From, "to", result.To, "auto", autoMode)

	if s.publisher != nil {
		if pubErr := s.publisher.PublishExamEvent(ctx, events.NewStudentStatusChangedEvent(studentID, result.From, result.To, autoMode)); pubErr != nil {
			s.logger.WarnContext(ctx, "Failed to publish event",
				"event_type", events.EventStudentStatusChanged, "error", pubErr)
		}
	}

	return result, nil
}

// ===== ORGANIZATION ROLLUPS =====

// GetBranchDashboard rolls up one branch within an explicit intake.
func (s *PerformanceService) GetBranchDashboard(ctx context.Context, branchID, intakeID uint) (*Dashboard, error) {
	key := cacheKeyBranchDashboard(branchID, intakeID)
	var cached Dashboard
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	if _, err := s.repo.Catalog().GetBranch(ctx, branchID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, NewStorageError("get branch", err)
	}

	dashboard := &Dashboard{Scope: "branch", ScopeID: branchID, IntakeID: intakeID}

	var err error
	if dashboard.TotalStudents, err = s.repo.Catalog().CountStudentsByBranch(ctx, branchID); err != nil {
		return nil, NewStorageError("count branch students", err)
	}
	if dashboard.GraduatedStudents, err = s.repo.Catalog().CountStudentsByBranchAndStatus(ctx, branchID, models.StudentGraduated); err != nil {
		return nil, NewStorageError("count graduated students", err)
	}
	if dashboard.ActiveStudents, err = s.repo.Catalog().CountStudentsByBranchAndStatus(ctx, branchID, models.StudentActive); err != nil {
		return nil, NewStorageError("count active students", err)
	}

	if err = s.fillGradeRollup(ctx, dashboard, repositories.GradeFilters{BranchID: &branchID, IntakeID: &intakeID},
		repositories.ExamFilters{BranchID: &branchID, IntakeID: &intakeID}); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, dashboard, cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache dashboard", "key", key, "error", err)
	}
	return dashboard, nil
}

// GetTrackDashboard rolls up one track within an explicit intake.
func (s *PerformanceService) GetTrackDashboard(ctx context.Context, trackID, intakeID uint) (*Dashboard, error) {
	key := cacheKeyTrackDashboard(trackID, intakeID)
	var cached Dashboard
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	if _, err := s.repo.Catalog().GetTrack(ctx, trackID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, NewStorageError("get track", err)
	}

	dashboard := &Dashboard{Scope: "track", ScopeID: trackID, IntakeID: intakeID}

	var err error
	if dashboard.TotalStudents, err = s.repo.Catalog().CountStudentsByTrack(ctx, trackID); err != nil {
		return nil, NewStorageError("count track students", err)
	}

	if err = s.fillGradeRollup(ctx, dashboard, repositories.GradeFilters{TrackID: &trackID, IntakeID: &intakeID},
		repositories.ExamFilters{TrackID: &trackID, IntakeID: &intakeID}); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, dashboard, cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache dashboard", "key", key, "error", err)
	}
	return dashboard, nil
}

// GetSystemDashboard rolls up the whole system for an explicit intake and
// attaches the health indicators.
func (s *PerformanceService) GetSystemDashboard(ctx context.Context, intakeID uint) (*Dashboard, error) {
	key := cacheKeySystemDashboard(intakeID)
	var cached Dashboard
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	dashboard := &Dashboard{Scope: "system", IntakeID: intakeID}

	var err error
	if dashboard.TotalStudents, err = s.repo.Catalog().CountStudents(ctx); err != nil {
		return nil, NewStorageError("count students", err)
	}
	if dashboard.ActiveStudents, err = s.repo.Catalog().CountStudentsByStatus(ctx, models.StudentActive); err != nil {
		return nil, NewStorageError("count active students", err)
	}
	if dashboard.GraduatedStudents, err = s.repo.Catalog().CountStudentsByStatus(ctx, models.StudentGraduated); err != nil {
		return nil, NewStorageError("count graduated students", err)
	}
	if dashboard.TotalInstructors, err = s.repo.Catalog().CountInstructors(ctx); err != nil {
		return nil, NewStorageError("count instructors", err)
	}
	if dashboard.TotalCourses, err = s.repo.Catalog().CountCourses(ctx); err != nil {
		return nil, NewStorageError("count courses", err)
	}

	if err = s.fillGradeRollup(ctx, dashboard, repositories.GradeFilters{IntakeID: &intakeID},
		repositories.ExamFilters{IntakeID: &intakeID}); err != nil {
		return nil, err
	}

	health, err := s.buildHealthIndicators(ctx, intakeID)
	if err != nil {
		return nil, err
	}
	dashboard.Health = health

	if err := s.cache.Set(ctx, key, dashboard, cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache dashboard", "key", key, "error", err)
	}
	return dashboard, nil
}

// fillGradeRollup computes the shared grade-derived figures of a dashboard
// from one grade listing.
func (s *PerformanceService) fillGradeRollup(ctx context.Context, dashboard *Dashboard, gradeFilters repositories.GradeFilters, examFilters repositories.ExamFilters) error {
	var err error
	if dashboard.TotalExams, err = s.repo.Exam().CountExams(ctx, examFilters); err != nil {
		return NewStorageError("count exams", err)
	}

	grades, err := s.repo.Grade().List(ctx, gradeFilters)
	if err != nil {
		return NewStorageError("list grades", err)
	}
	dashboard.TotalGrades = int64(len(grades))
	if len(grades) == 0 {
		return nil
	}

	var sum float64
	var passed int
	for _, g := range grades {
		sum += g.Percentage
		if g.Passed {
			passed++
		}
	}
	dashboard.AveragePct = sum / float64(len(grades))
	dashboard.PassRate = float64(passed) / float64(len(grades)) * 100
	return nil
}

// buildHealthIndicators flags zero-submission students, low pass-rate exams
// and exams starting within the configured upcoming window.
func (s *PerformanceService) buildHealthIndicators(ctx context.Context, intakeID uint) (*HealthIndicators, error) {
	health := &HealthIndicators{
		LowPassRateExams: []LowPassExam{},
		UpcomingExams:    []ExamSummary{},
	}

	var err error
	if health.StudentsWithoutSubmissions, err = s.repo.Grade().CountStudentsWithoutGrades(ctx); err != nil {
		return nil, NewStorageError("count students without grades", err)
	}

	grades, err := s.repo.Grade().List(ctx, repositories.GradeFilters{IntakeID: &intakeID})
	if err != nil {
		return nil, NewStorageError("list grades", err)
	}
	type tally struct{ total, passed int }
	byExam := map[uint]*tally{}
	var order []uint
	for _, g := range grades {
		t, ok := byExam[g.ExamID]
		if !ok {
			t = &tally{}
			byExam[g.ExamID] = t
			order = append(order, g.ExamID)
		}
		t.total++
		if g.Passed {
			t.passed++
		}
	}
	for _, examID := range order {
		t := byExam[examID]
		rate := float64(t.passed) / float64(t.total) * 100
		if rate < s.rules.LowPassRateExamMark {
			health.LowPassRateExams = append(health.LowPassRateExams, LowPassExam{
				ExamID:   examID,
				Grades:   t.total,
				PassRate: rate,
			})
		}
	}

	upcoming, err := s.repo.Exam().GetStartingWithin(ctx, s.now(), s.rules.UpcomingWindowDays)
	if err != nil {
		return nil, NewStorageError("get upcoming exams", err)
	}
	for _, e := range upcoming {
		if e.IntakeID != intakeID {
			continue
		}
		health.UpcomingExams = append(health.UpcomingExams, ExamSummary{
			ExamID:     e.ID,
			CourseID:   e.CourseID,
			CourseName: e.Course.Name,
			Date:       e.Date,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			Corrective: e.Corrective,
			Status:     StatusUpcoming,
		})
	}

	return health, nil
}
