package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NOTE:
// - raw: snapshot baris Excel asli apa adanya (audit/debug) — schema bebas
// - index (student_id, assessment_id) dipakai resolver untuk dedup recurring;
//   keunikan pasangan itu hanya berlaku untuk assessment recurring, jadi
//   TIDAK dibuat unique di level DB
type PerformanceRecordModel struct {
	PerformanceRecordID uuid.UUID `gorm:"column:performance_record_id;type:uuid;primaryKey" json:"performance_record_id"`

	PerformanceRecordMarks float64 `gorm:"column:performance_record_marks;not null" json:"performance_record_marks"`

	PerformanceRecordRaw datatypes.JSONMap `gorm:"column:performance_record_raw;type:jsonb" json:"performance_record_raw,omitempty"`

	PerformanceRecordStudentID    uuid.UUID `gorm:"column:performance_record_student_id;type:uuid;not null;index:idx_perf_student_assessment" json:"performance_record_student_id"`
	PerformanceRecordAssessmentID uuid.UUID `gorm:"column:performance_record_assessment_id;type:uuid;not null;index:idx_perf_student_assessment" json:"performance_record_assessment_id"`

	Student    *StudentModel    `gorm:"foreignKey:PerformanceRecordStudentID;references:StudentID" json:"student,omitempty"`
	Assessment *AssessmentModel `gorm:"foreignKey:PerformanceRecordAssessmentID;references:AssessmentID" json:"assessment,omitempty"`

	PerformanceRecordCreatedAt time.Time `gorm:"column:performance_record_created_at;not null;autoCreateTime" json:"performance_record_created_at"`
}

func (PerformanceRecordModel) TableName() string { return "performance_records" }

func (m *PerformanceRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.PerformanceRecordID == uuid.Nil {
		m.PerformanceRecordID = uuid.New()
	}
	return nil
}
