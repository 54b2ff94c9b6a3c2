package postgres

import (
	"context"

	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories"
	"gorm.io/gorm"
)

type CatalogPostgreSQL struct {
	db *gorm.DB
}

func NewCatalogPostgreSQL(db *gorm.DB) repositories.CatalogRepository {
	return &CatalogPostgreSQL{db: db}
}

func (c *CatalogPostgreSQL) GetIntake(ctx context.Context, id uint) (*models.Intake, error) {
	var intake models.Intake
	if err := c.db.WithContext(ctx).First(&intake, id).Error; err != nil {
		return nil, err
	}
	return &intake, nil
}

func (c *CatalogPostgreSQL) GetBranch(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := c.db.WithContext(ctx).First(&branch, id).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (c *CatalogPostgreSQL) GetTrack(ctx context.Context, id uint) (*models.Track, error) {
	var track models.Track
	if err := c.db.WithContext(ctx).Preload("Department").First(&track, id).Error; err != nil {
		return nil, err
	}
	return &track, nil
}

func (c *CatalogPostgreSQL) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CatalogPostgreSQL) GetInstructor(ctx context.Context, id uint) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := c.db.WithContext(ctx).First(&instructor, id).Error; err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (c *CatalogPostgreSQL) GetStudent(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := c.db.WithContext(ctx).
		Preload("Track").
		Preload("Branch").
		Preload("Intake").
		First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *CatalogPostgreSQL) ListBranches(ctx context.Context) ([]*models.Branch, error) {
	var branches []*models.Branch
	if err := c.db.WithContext(ctx).Order("id").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (c *CatalogPostgreSQL) ListTracks(ctx context.Context) ([]*models.Track, error) {
	var tracks []*models.Track
	if err := c.db.WithContext(ctx).Preload("Department").Order("id").Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *CatalogPostgreSQL) IsTrackOpened(ctx context.Context, trackID, branchID, intakeID uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.TrackOpening{}).
		Where("track_id = ? AND branch_id = ? AND intake_id = ?", trackID, branchID, intakeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *CatalogPostgreSQL) IsInstructorAtBranch(ctx context.Context, instructorID, branchID, intakeID uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.InstructorBranch{}).
		Where("instructor_id = ? AND branch_id = ? AND intake_id = ?", instructorID, branchID, intakeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *CatalogPostgreSQL) HasAssignment(ctx context.Context, instructorID, courseID, trackID, branchID, intakeID uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.InstructorAssignment{}).
		Where("instructor_id = ? AND course_id = ? AND track_id = ? AND branch_id = ? AND intake_id = ?",
			instructorID, courseID, trackID, branchID, intakeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *CatalogPostgreSQL) StudentsByCohort(ctx context.Context, trackID, branchID, intakeID uint) ([]*models.Student, error) {
	var students []*models.Student
	if err := c.db.WithContext(ctx).
		Where("track_id = ? AND branch_id = ? AND intake_id = ?", trackID, branchID, intakeID).
		Order("id").
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (c *CatalogPostgreSQL) CountStudentsByCohort(ctx context.Context, trackID, branchID, intakeID uint) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("track_id = ? AND branch_id = ? AND intake_id = ?", trackID, branchID, intakeID).
		Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountStudentsByBranch(ctx context.Context, branchID uint) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountStudentsByBranchAndStatus(ctx context.Context, branchID uint, status models.StudentStatus) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("branch_id = ? AND status = ?", branchID, status).
		Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountStudentsByTrack(ctx context.Context, trackID uint) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("track_id = ?", trackID).
		Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountStudentsByStatus(ctx context.Context, status models.StudentStatus) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountInstructors(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Instructor{}).Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) UpdateStudentStatus(ctx context.Context, studentID uint, status models.StudentStatus) error {
	return c.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("status", status).Error
}
