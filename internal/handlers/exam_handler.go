package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/services"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	examService       services.ExamServiceInterface
	submissionService services.SubmissionServiceInterface
	correctiveService services.CorrectiveServiceInterface
	performance       services.PerformanceServiceInterface
	exportService     services.ExportServiceInterface
}

func NewExamHandler(
	examService services.ExamServiceInterface,
	submissionService services.SubmissionServiceInterface,
	correctiveService services.CorrectiveServiceInterface,
	performance services.PerformanceServiceInterface,
	exportService services.ExportServiceInterface,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:       NewBaseHandler(logger),
		examService:       examService,
		submissionService: submissionService,
		correctiveService: correctiveService,
		performance:       performance,
		exportService:     exportService,
	}
}

// CreateExam generates a new exam from the course question bank
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	identity, _ := GetIdentity(c)

	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating exam", "course_id", req.CourseID)

	exam, err := h.examService.CreateExam(c.Request.Context(), identity, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Exam created",
		Data:    exam,
	})
}

// GetExam returns an exam header
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	exam, err := h.examService.GetExam(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// GetExamPaper returns an exam with its ordered questions and choices
// @Router /exams/{id}/paper [get]
func (h *ExamHandler) GetExamPaper(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	exam, err := h.examService.GetExamPaper(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// ListExams lists exams with optional filters
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	filters := repositories.ExamFilters{
		CourseID:     parseUintQuery(c, "course_id"),
		InstructorID: parseUintQuery(c, "instructor_id"),
		TrackID:      parseUintQuery(c, "track_id"),
		BranchID:     parseUintQuery(c, "branch_id"),
		IntakeID:     parseUintQuery(c, "intake_id"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}

	exams, total, err := h.examService.ListExams(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": exams, "total": total})
}

// SubmitExam grades a student's answers to an exam
// @Router /exams/{id}/submit [post]
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	identity, _ := GetIdentity(c)
	if identity.StudentID == nil {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Only students may submit exams",
		})
		return
	}

	examID := parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	var req services.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting exam", "exam_id", examID, "student_id", *identity.StudentID)

	result, err := h.submissionService.Submit(c.Request.Context(), identity, *identity.StudentID, examID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Submission graded",
		Data:    result,
	})
}

// CreateCorrective derives a corrective exam from a failed source exam
// @Router /exams/{id}/corrective [post]
func (h *ExamHandler) CreateCorrective(c *gin.Context) {
	identity, _ := GetIdentity(c)

	sourceExamID := parseIDParam(c, "id")
	if sourceExamID == 0 {
		return
	}

	var req services.CreateCorrectiveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	h.LogRequest(c, "Creating corrective exam", "source_exam_id", sourceExamID)

	result, err := h.correctiveService.CreateCorrective(c.Request.Context(), identity, sourceExamID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Corrective exam created",
		Data:    result,
	})
}

// GetExamStatistics returns the aggregated statistics for one exam
// @Router /exams/{id}/statistics [get]
func (h *ExamHandler) GetExamStatistics(c *gin.Context) {
	examID := parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	stats, err := h.performance.GetExamStatistics(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportExamResults streams the results workbook for one exam
// @Router /exams/{id}/export [get]
func (h *ExamHandler) ExportExamResults(c *gin.Context) {
	identity, _ := GetIdentity(c)

	examID := parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Exporting exam results", "exam_id", examID)

	data, filename, err := h.exportService.ExamResultsWorkbook(c.Request.Context(), identity, examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
