package services

import (
	"errors"
	"fmt"

	apperrors "github.com/ITI-GP-2025/examination-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Catalog / reference errors
	ErrStudentNotFound    = errors.New("student not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrCourseNotFound     = errors.New("course not found")

	// Exam generator errors
	ErrExamNotFound          = errors.New("exam not found")
	ErrInstructorNotAtBranch = errors.New("instructor is not assigned to this branch and intake")
	ErrInstructorNotAssigned = errors.New("instructor is not assigned to this course, track, branch and intake")
	ErrTrackNotOpened        = errors.New("track is not opened for this branch and intake")
	ErrInsufficientQuestions = errors.New("course question bank has fewer questions than requested")

	// Submission errors
	ErrExamNotStarted     = errors.New("exam submission window has not opened yet")
	ErrExamWindowClosed   = errors.New("exam submission window has closed")
	ErrStudentNotInCohort = errors.New("student does not belong to the exam's track, branch and intake")

	// Corrective orchestrator errors
	ErrSourceExamCorrective    = errors.New("source exam is already corrective")
	ErrNotExamOwner            = errors.New("only the exam's own instructor may derive a corrective exam")
	ErrNoFailingGrades         = errors.New("source exam has no failing grades")
	ErrCorrectiveDateNotFuture = errors.New("corrective exam date must be in the future")
	ErrCorrectiveExists        = errors.New("a corrective exam already exists for this course, cohort, instructor and date")

	// Status determination errors
	ErrStatusBelowMinimumExams = errors.New("student has taken fewer exams than the minimum for automatic status")
)

// ===== CUSTOM ERROR TYPES =====

// Use the shared validation errors from the errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// DuplicateSubmissionError is the idempotency rejection for SubmitExam: a
// grade already exists for the (student, exam) pair and was left unchanged.
type DuplicateSubmissionError struct {
	StudentID uint `json:"student_id"`
	ExamID    uint `json:"exam_id"`
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("duplicate submission: student %d already has a grade for exam %d", e.StudentID, e.ExamID)
}

// StorageError wraps a transient infrastructure failure. It is the only
// error kind a caller may safely retry.
type StorageError struct {
	Op  string `json:"op"`
	Err error  `json:"-"`
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PermissionError reports a role/ownership check failure.
type PermissionError struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s - %s",
		e.UserID, e.Action, e.Resource, e.Reason)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewDuplicateSubmissionError(studentID, examID uint) *DuplicateSubmissionError {
	return &DuplicateSubmissionError{StudentID: studentID, ExamID: examID}
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Action: action, Reason: reason}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrInstructorNotFound) ||
		errors.Is(err, ErrCourseNotFound)
}

// IsValidation checks if error represents an unmet precondition
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInstructorNotAtBranch) ||
		errors.Is(err, ErrInstructorNotAssigned) ||
		errors.Is(err, ErrTrackNotOpened) ||
		errors.Is(err, ErrInsufficientQuestions) ||
		errors.Is(err, ErrExamNotStarted) ||
		errors.Is(err, ErrExamWindowClosed) ||
		errors.Is(err, ErrStudentNotInCohort) ||
		errors.Is(err, ErrSourceExamCorrective) ||
		errors.Is(err, ErrNoFailingGrades) ||
		errors.Is(err, ErrCorrectiveDateNotFuture) ||
		errors.Is(err, ErrCorrectiveExists) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsDuplicateSubmission checks for the idempotency rejection
func IsDuplicateSubmission(err error) bool {
	var dup *DuplicateSubmissionError
	return errors.As(err, &dup)
}

// IsStorage checks for a transient storage failure
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsPermission checks for a role/ownership failure
func IsPermission(err error) bool {
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotExamOwner) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}
