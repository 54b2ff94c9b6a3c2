package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/services"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	examService services.ExamServiceInterface
	performance services.PerformanceServiceInterface
	validator   *utils.Validator
}

type UpdateStatusRequest struct {
	Auto   bool                  `json:"auto"`
	Status *models.StudentStatus `json:"status" validate:"omitempty,student_status"`
}

func NewStudentHandler(
	examService services.ExamServiceInterface,
	performance services.PerformanceServiceInterface,
	validator *utils.Validator,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
		performance: performance,
		validator:   validator,
	}
}

// ListExams returns the student's cohort exams in display order with their
// availability status
// @Router /students/{id}/exams [get]
func (h *StudentHandler) ListExams(c *gin.Context) {
	studentID := parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	// Students may only list their own exams.
	identity, _ := GetIdentity(c)
	if identity.IsStudent() && *identity.StudentID != studentID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
		return
	}

	rows, err := h.examService.ListAvailableForStudent(c.Request.Context(), studentID, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": rows})
}

// GetPerformance returns the student's aggregated performance summary
// @Router /students/{id}/performance [get]
func (h *StudentHandler) GetPerformance(c *gin.Context) {
	studentID := parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	identity, _ := GetIdentity(c)
	if identity.IsStudent() && *identity.StudentID != studentID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
		return
	}

	summary, err := h.performance.GetStudentSummary(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UpdateStatus applies the graduation rules to a student, either
// automatically or with a manual status override
// @Router /students/{id}/status [post]
func (h *StudentHandler) UpdateStatus(c *gin.Context) {
	identity, _ := GetIdentity(c)

	studentID := parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Updating student status", "student_id", studentID, "auto", req.Auto)

	result, err := h.performance.DetermineStatus(c.Request.Context(), identity, studentID, req.Auto, req.Status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Status determined",
		Data:    result,
	})
}
