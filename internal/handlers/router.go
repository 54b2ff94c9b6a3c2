package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/services"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

type HandlerManager struct {
	examHandler      *ExamHandler
	studentHandler   *StudentHandler
	dashboardHandler *DashboardHandler
	auth             *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	auth *AuthMiddleware,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler: NewExamHandler(
			serviceManager.Exam(),
			serviceManager.Submission(),
			serviceManager.Corrective(),
			serviceManager.Performance(),
			serviceManager.Export(),
			logger,
		),
		studentHandler:   NewStudentHandler(serviceManager.Exam(), serviceManager.Performance(), validator, logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Performance(), logger),
		auth:             auth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(hm.auth.Authenticate())
	{
		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.POST("", RequireRole(models.RoleInstructor, models.RoleManager), hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/:id/paper", hm.examHandler.GetExamPaper)
			exams.POST("/:id/submit", RequireRole(models.RoleStudent), hm.examHandler.SubmitExam)
			exams.POST("/:id/corrective", RequireRole(models.RoleInstructor), hm.examHandler.CreateCorrective)
			exams.GET("/:id/statistics", RequireRole(models.RoleInstructor, models.RoleManager), hm.examHandler.GetExamStatistics)
			exams.GET("/:id/export", RequireRole(models.RoleInstructor, models.RoleManager), hm.examHandler.ExportExamResults)
		}

		// Student routes
		students := v1.Group("/students")
		{
			students.GET("/:id/exams", hm.studentHandler.ListExams)
			students.GET("/:id/performance", hm.studentHandler.GetPerformance)
			students.POST("/:id/status", RequireRole(models.RoleManager), hm.studentHandler.UpdateStatus)
		}

		// Dashboard routes
		dashboards := v1.Group("/dashboards")
		dashboards.Use(RequireRole(models.RoleInstructor, models.RoleManager))
		{
			dashboards.GET("/branches/:id", hm.dashboardHandler.GetBranchDashboard)
			dashboards.GET("/tracks/:id", hm.dashboardHandler.GetTrackDashboard)
			dashboards.GET("/system", hm.dashboardHandler.GetSystemDashboard)
		}
	}
}
