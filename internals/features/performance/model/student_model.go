package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentModel struct {
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;primaryKey" json:"student_id"`

	StudentFirstName string `gorm:"column:student_first_name;type:varchar(100);not null" json:"student_first_name"`
	StudentLastName  string `gorm:"column:student_last_name;type:varchar(100);not null;default:''" json:"student_last_name"`

	// identitas unik lintas upload
	StudentRollNumber string `gorm:"column:student_roll_number;type:varchar(50);not null;uniqueIndex:uq_student_roll_number" json:"student_roll_number"`

	StudentCreatedAt time.Time `gorm:"column:student_created_at;not null;autoCreateTime" json:"student_created_at"`
}

func (StudentModel) TableName() string { return "students" }

// app-side default supaya tidak bergantung ke gen_random_uuid() DB
func (m *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	return nil
}

func (m *StudentModel) FullName() string {
	return strings.TrimSpace(m.StudentFirstName + " " + m.StudentLastName)
}
