package services

import (
	"math/rand"
	"time"

	"github.com/ITI-GP-2025/examination-service/internal/cache"
	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/events"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// ServiceManager bundles all services for handler wiring.
type ServiceManager interface {
	Exam() ExamServiceInterface
	Submission() SubmissionServiceInterface
	Corrective() CorrectiveServiceInterface
	Performance() PerformanceServiceInterface
	Export() ExportServiceInterface
}

type serviceManager struct {
	exam        ExamServiceInterface
	submission  SubmissionServiceInterface
	corrective  CorrectiveServiceInterface
	performance PerformanceServiceInterface
	export      ExportServiceInterface
}

// NewServiceManager wires every service onto the shared repository, rules,
// cache and publisher.
func NewServiceManager(
	repo repositories.Repository,
	logger utils.Logger,
	rules *config.Rules,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
) ServiceManager {
	validator := utils.NewValidator()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	performance := NewPerformanceService(repo, logger, rules, cacheService, publisher, nil)

	return &serviceManager{
		exam:        NewExamService(repo, logger, validator, rules, publisher, rng),
		submission:  NewSubmissionService(repo, logger, validator, rules, cacheService, publisher, nil),
		corrective:  NewCorrectiveService(repo, logger, validator, rules, publisher, nil),
		performance: performance,
		export:      NewExportService(repo, performance, logger),
	}
}

func (m *serviceManager) Exam() ExamServiceInterface               { return m.exam }
func (m *serviceManager) Submission() SubmissionServiceInterface   { return m.submission }
func (m *serviceManager) Corrective() CorrectiveServiceInterface   { return m.corrective }
func (m *serviceManager) Performance() PerformanceServiceInterface { return m.performance }
func (m *serviceManager) Export() ExportServiceInterface           { return m.export }
