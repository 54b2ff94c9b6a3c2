package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// ExportServiceInterface defines report exports
type ExportServiceInterface interface {
	ExamResultsWorkbook(ctx context.Context, identity models.Identity, examID uint) ([]byte, string, error)
}

// ExportService renders exam results as downloadable workbooks. It consults
// the aggregator rather than recomputing statistics itself.
type ExportService struct {
	repo        repositories.Repository
	performance PerformanceServiceInterface
	logger      utils.Logger
}

func NewExportService(repo repositories.Repository, performance PerformanceServiceInterface, logger utils.Logger) ExportServiceInterface {
	return &ExportService{
		repo:        repo,
		performance: performance,
		logger:      logger,
	}
}

// ExamResultsWorkbook builds an xlsx with one row per graded submission and
// a summary block. Returns the file bytes and a suggested filename.
func (s *ExportService) ExamResultsWorkbook(ctx context.Context, identity models.Identity, examID uint) ([]byte, string, error) {
	stats, err := s.performance.GetExamStatistics(ctx, examID)
	if err != nil {
		return nil, "", err
	}
	grades, err := s.repo.Grade().GetByExamWithStudents(ctx, examID)
	if err != nil {
		return nil, "", NewStorageError("get exam grades", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Student Name", "Percentage", "Letter", "Passed"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, g := range grades {
		values := []interface{}{g.StudentID, g.Student.Name, g.Percentage, string(g.Letter), g.Passed}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	summaryRow := len(grades) + 3
	summary := [][2]interface{}{
		{"Course", stats.CourseName},
		{"Date", stats.Date.Format("2006-01-02")},
		{"Expected students", stats.ExpectedStudents},
		{"Submitted", stats.SubmittedStudents},
		{"Average %", stats.AveragePct},
		{"Pass rate %", stats.PassRate},
	}
	for i, pair := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		f.SetCellValue(sheet, keyCell, pair[0])
		f.SetCellValue(sheet, valCell, pair[1])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	entry, err := buildAuditEntry(identity, models.AuditResultsExported, "exam", examID,
		"exam results exported", map[string]interface{}{
			"rows": len(grades),
		})
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Audit().Create(ctx, entry); err != nil {
		return nil, "", NewStorageError("create audit entry", err)
	}

	s.logger.InfoContext(ctx, "Exam results exported", "exam_id", examID, "rows", len(grades))

	filename := fmt.Sprintf("exam_%d_results.xlsx", examID)
	return buf.Bytes(), filename, nil
}
