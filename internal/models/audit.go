package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditExamCreated       AuditEventType = "exam_created"
	AuditCorrectiveCreated AuditEventType = "corrective_exam_created"
	AuditGradeRecorded     AuditEventType = "grade_recorded"
	AuditStatusChanged     AuditEventType = "student_status_changed"
	AuditResultsExported   AuditEventType = "results_exported"
)

// AuditLog records every engine mutation with enough context to reconstruct
// who did what to which entity.
type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;index"`

	ActorID   string `json:"actor_id" gorm:"not null;size:255;index"`
	ActorRole Role   `json:"actor_role" gorm:"not null;size:20"`

	TargetType string `json:"target_type" gorm:"size:50;index"` // exam, grade, student
	TargetID   uint   `json:"target_id" gorm:"index"`

	Description string         `json:"description" gorm:"not null;type:text"`
	Metadata    datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string { return "audit_logs" }
