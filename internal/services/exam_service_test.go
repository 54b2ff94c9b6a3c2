package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/events"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewDevelopmentLogger()
}

func managerIdentity() models.Identity {
	return models.Identity{UserID: "mgr-1", Role: models.RoleManager}
}

func newExamServiceForTest(repo *mockRepoManager, publisher events.EventPublisher) ExamServiceInterface {
	rng := rand.New(rand.NewSource(42))
	return NewExamService(repo, testLogger(), utils.NewValidator(), config.DefaultRules(), publisher, rng)
}

func validCreateExamRequest() *CreateExamRequest {
	return &CreateExamRequest{
		CourseID:      10,
		InstructorID:  20,
		TrackID:       30,
		BranchID:      40,
		IntakeID:      50,
		Date:          time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
		EndTime:       "11:00",
		QuestionCount: 5,
	}
}

func TestExamService_CreateExam_Success(t *testing.T) {
	repo := newMockRepoManager()
	publisher := events.NewMockEventPublisher(nil)
	service := newExamServiceForTest(repo, publisher)
	ctx := context.Background()
	req := validCreateExamRequest()

	repo.catalog.On("GetInstructor", ctx, uint(20)).Return(&models.Instructor{ID: 20}, nil)
	repo.catalog.On("IsInstructorAtBranch", ctx, uint(20), uint(40), uint(50)).Return(true, nil)
	repo.catalog.On("HasAssignment", ctx, uint(20), uint(10), uint(30), uint(40), uint(50)).Return(true, nil)
	repo.catalog.On("IsTrackOpened", ctx, uint(30), uint(40), uint(50)).Return(true, nil)
	repo.question.On("ListIDsByCourse", ctx, uint(10), (*models.QuestionType)(nil)).
		Return([]uint{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	repo.exam.On("Create", ctx, mock.AnythingOfType("*models.Exam")).Return(nil)
	repo.exam.On("AddQuestions", ctx, mock.AnythingOfType("[]models.ExamQuestion")).Return(nil)
	repo.audit.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	exam, err := service.CreateExam(ctx, managerIdentity(), req)

	assert.NoError(t, err)
	assert.NotNil(t, exam)
	assert.Equal(t, uint(10), exam.CourseID)
	assert.False(t, exam.Corrective)
	assert.Equal(t, 1, repo.commits)
	assert.Equal(t, 0, repo.rollbacks)
	assert.Len(t, publisher.PublishedEvents(), 1)
	assert.Equal(t, events.EventExamCreated, publisher.PublishedEvents()[0].Type)

	// Bindings are distinct, drawn from the pool and numbered from 1.
	bindings := repo.exam.Calls[1].Arguments.Get(1).([]models.ExamQuestion)
	assert.Len(t, bindings, 5)
	seen := map[uint]bool{}
	for i, b := range bindings {
		assert.Equal(t, i+1, b.Position)
		assert.False(t, seen[b.QuestionID], "question %d bound twice", b.QuestionID)
		seen[b.QuestionID] = true
		assert.Contains(t, []uint{1, 2, 3, 4, 5, 6, 7, 8}, b.QuestionID)
	}
}

func TestExamService_CreateExam_GuardOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("instructor missing", func(t *testing.T) {
		repo := newMockRepoManager()
		service := newExamServiceForTest(repo, nil)
		repo.catalog.On("GetInstructor", ctx, uint(20)).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.CreateExam(ctx, managerIdentity(), validCreateExamRequest())

		assert.ErrorIs(t, err, ErrInstructorNotFound)
		repo.catalog.AssertNotCalled(t, "IsInstructorAtBranch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("instructor not at branch", func(t *testing.T) {
		repo := newMockRepoManager()
		service := newExamServiceForTest(repo, nil)
		repo.catalog.On("GetInstructor", ctx, uint(20)).Return(&models.Instructor{ID: 20}, nil)
		repo.catalog.On("IsInstructorAtBranch", ctx, uint(20), uint(40), uint(50)).Return(false, nil)

		_, err := service.CreateExam(ctx, managerIdentity(), validCreateExamRequest())

		assert.ErrorIs(t, err, ErrInstructorNotAtBranch)
		repo.catalog.AssertNotCalled(t, "HasAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("instructor not assigned", func(t *testing.T) {
		repo := newMockRepoManager()
		service := newExamServiceForTest(repo, nil)
		repo.catalog.On("GetInstructor", ctx, uint(20)).Return(&models.Instructor{ID: 20}, nil)
		repo.catalog.On("IsInstructorAtBranch", ctx, uint(20), uint(40), uint(50)).Return(true, nil)
		repo.catalog.On("HasAssignment", ctx, uint(20), uint(10), uint(30), uint(40), uint(50)).Return(false, nil)

		_, err := service.CreateExam(ctx, managerIdentity(), validCreateExamRequest())

		assert.ErrorIs(t, err, ErrInstructorNotAssigned)
		repo.catalog.AssertNotCalled(t, "IsTrackOpened", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("track not opened", func(t *testing.T) {
		repo := newMockRepoManager()
		service := newExamServiceForTest(repo, nil)
		repo.catalog.On("GetInstructor", ctx, uint(20)).Return(&models.Instructor{ID: 20}, nil)
		repo.catalog.On("IsInstructorAtBranch", ctx, uint(20), uint(40), uint(50)).Return(true, nil)
		repo.catalog.On("HasAssignment", ctx, uint(20), uint(10), uint(30), uint(40), uint(50)).Return(true, nil)
		repo.catalog.On("IsTrackOpened", ctx, uint(30), uint(40), uint(50)).Return(false, nil)

		_, err := service.CreateExam(ctx, managerIdentity(), validCreateExamRequest())

		assert.ErrorIs(t, err, ErrTrackNotOpened)
		repo.question.AssertNotCalled(t, "ListIDsByCourse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pool too small", func(t *testing.T) {
		repo := newMockRepoManager()
		service := newExamServiceForTest(repo, nil)
		repo.catalog.On("GetInstructor", ctx, uint(20)).Return(&models.Instructor{ID: 20}, nil)
		repo.catalog.On("IsInstructorAtBranch", ctx, uint(20), uint(40), uint(50)).Return(true, nil)
		repo.catalog.On("HasAssignment", ctx, uint(20), uint(10), uint(30), uint(40), uint(50)).Return(true, nil)
		repo.catalog.On("IsTrackOpened", ctx, uint(30), uint(40), uint(50)).Return(true, nil)
		repo.question.On("ListIDsByCourse", ctx, uint(10), (*models.QuestionType)(nil)).
			Return([]uint{1, 2, 3}, nil)

		_, err := service.CreateExam(ctx, managerIdentity(), validCreateExamRequest())

		assert.ErrorIs(t, err, ErrInsufficientQuestions)
		repo.exam.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestExamService_CreateExam_InvalidTimes(t *testing.T) {
	repo := newMockRepoManager()
	service := newExamServiceForTest(repo, nil)
	req := validCreateExamRequest()
	req.StartTime = "11:00"
	req.EndTime = "09:00"

	_, err := service.CreateExam(context.Background(), managerIdentity(), req)

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
	repo.catalog.AssertNotCalled(t, "GetInstructor", mock.Anything, mock.Anything)
}

func TestExamService_CreateExam_TypeSplitMustSum(t *testing.T) {
	repo := newMockRepoManager()
	service := newExamServiceForTest(repo, nil)
	req := validCreateExamRequest()
	mcq, tf := 2, 2
	req.MCQCount = &mcq
	req.TrueFalseCount = &tf // 2 + 2 != 5

	_, err := service.CreateExam(context.Background(), managerIdentity(), req)

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestExamService_CreateExam_TypeSplitSamplesEachPool(t *testing.T) {
	repo := newMockRepoManager()
	service := newExamServiceForTest(repo, nil)
	ctx := context.Background()
	req := validCreateExamRequest()
	mcq, tf := 3, 2
	req.MCQCount = &mcq
	req.TrueFalseCount = &tf

	mcqType := models.MultipleChoice
	tfType := models.TrueFalse
	repo.catalog.On("GetInstructor", ctx, uint(20)).Return(&models.Instructor{ID: 20}, nil)
	repo.catalog.On("IsInstructorAtBranch", ctx, uint(20), uint(40), uint(50)).Return(true, nil)
	repo.catalog.On("HasAssignment", ctx, uint(20), uint(10), uint(30), uint(40), uint(50)).Return(true, nil)
	repo.catalog.On("IsTrackOpened", ctx, uint(30), uint(40), uint(50)).Return(true, nil)
	repo.question.On("ListIDsByCourse", ctx, uint(10), &mcqType).Return([]uint{1, 2, 3, 4}, nil)
	repo.question.On("ListIDsByCourse", ctx, uint(10), &tfType).Return([]uint{101, 102}, nil)
	repo.exam.On("Create", ctx, mock.AnythingOfType("*models.Exam")).Return(nil)
	repo.exam.On("AddQuestions", ctx, mock.AnythingOfType("[]models.ExamQuestion")).Return(nil)
	repo.audit.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	exam, err := service.CreateExam(ctx, managerIdentity(), req)

	assert.NoError(t, err)
	assert.NotNil(t, exam)
	bindings := repo.exam.Calls[1].Arguments.Get(1).([]models.ExamQuestion)
	assert.Len(t, bindings, 5)
	var mcqBound, tfBound int
	for _, b := range bindings {
		if b.QuestionID >= 100 {
			tfBound++
		} else {
			mcqBound++
		}
	}
	assert.Equal(t, 3, mcqBound)
	assert.Equal(t, 2, tfBound)
}

func TestExamService_ListAvailableForStudent(t *testing.T) {
	repo := newMockRepoManager()
	service := newExamServiceForTest(repo, nil)
	ctx := context.Background()
	now := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	student := &models.Student{ID: 1, TrackID: 30, BranchID: 40, IntakeID: 50}
	course := models.Course{ID: 10, Name: "Databases"}
	exams := []*models.Exam{
		{ID: 1, CourseID: 10, Course: course, TrackID: 30, BranchID: 40, IntakeID: 50,
			Date: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "11:00"},
		{ID: 2, CourseID: 10, Course: course, TrackID: 30, BranchID: 40, IntakeID: 50,
			Date: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "11:00"},
		{ID: 3, CourseID: 10, Course: course, TrackID: 30, BranchID: 40, IntakeID: 50,
			Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "11:00"},
	}

	repo.catalog.On("GetStudent", ctx, uint(1)).Return(student, nil)
	repo.exam.On("GetByCohort", ctx, uint(30), uint(40), uint(50)).Return(exams, nil)
	repo.grade.On("GradesByStudentForExams", ctx, uint(1), []uint{1, 2, 3}).
		Return(map[uint]*models.Grade{3: {StudentID: 1, ExamID: 3,
			Score: 7, Percentage: 70, Letter: models.GradeC, Passed: true}}, nil)

	rows, err := service.ListAvailableForStudent(ctx, 1, now)

	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, uint(1), rows[0].ExamID)
	assert.Equal(t, StatusAvailableNow, rows[0].Status)
	assert.Nil(t, rows[0].Result)
	assert.Equal(t, uint(2), rows[1].ExamID)
	assert.Equal(t, StatusUpcoming, rows[1].Status)
	assert.Nil(t, rows[1].Result)
	assert.Equal(t, uint(3), rows[2].ExamID)
	assert.Equal(t, StatusSubmitted, rows[2].Status)
	if assert.NotNil(t, rows[2].Result) {
		assert.Equal(t, 7.0, rows[2].Result.Score)
		assert.Equal(t, 70.0, rows[2].Result.Percentage)
		assert.Equal(t, models.GradeC, rows[2].Result.Letter)
		assert.True(t, rows[2].Result.Passed)
	}
}

func TestExamService_GetExam_NotFound(t *testing.T) {
	repo := newMockRepoManager()
	service := newExamServiceForTest(repo, nil)
	ctx := context.Background()

	repo.exam.On("GetByID", ctx, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.GetExam(ctx, 99)

	assert.ErrorIs(t, err, ErrExamNotFound)
}
