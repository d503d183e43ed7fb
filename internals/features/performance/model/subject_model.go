package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NOTE:
// - subject_name: nama tampilan lengkap, mis. "Mathematics - Year 2 CSEA"
// - (base_name, year, section) unik: satu Subject per kombinasi
type SubjectModel struct {
	SubjectID uuid.UUID `gorm:"column:subject_id;type:uuid;primaryKey" json:"subject_id"`

	SubjectName string `gorm:"column:subject_name;type:varchar(200);not null" json:"subject_name"`

	SubjectBaseName string `gorm:"column:subject_base_name;type:varchar(100);not null;uniqueIndex:uq_subject_base_year_section" json:"subject_base_name"`
	SubjectYear     int    `gorm:"column:subject_year;not null;uniqueIndex:uq_subject_base_year_section" json:"subject_year"`
	SubjectSection  string `gorm:"column:subject_section;type:varchar(10);not null;uniqueIndex:uq_subject_base_year_section" json:"subject_section"`

	SubjectCreatedAt time.Time `gorm:"column:subject_created_at;not null;autoCreateTime" json:"subject_created_at"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubjectID == uuid.Nil {
		m.SubjectID = uuid.New()
	}
	return nil
}
