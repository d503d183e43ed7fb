package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipe assessment hasil klasifikasi upload.
const (
	AssessmentTypeRegular     = "regular"
	AssessmentTypeRecurring   = "recurring"
	AssessmentTypeProgramming = "programming"
)

// NOTE:
// - untuk assessment recurring (CRT/weekly), upload berikutnya dengan
//   (subject, name) yang sama resolve ke baris yang sama — tidak dibuat duplikat
// - non-recurring: satu Assessment per upload (event terpisah)
type AssessmentModel struct {
	AssessmentID uuid.UUID `gorm:"column:assessment_id;type:uuid;primaryKey" json:"assessment_id"`

	AssessmentName     string    `gorm:"column:assessment_name;type:varchar(200);not null;index" json:"assessment_name"`
	AssessmentDate     time.Time `gorm:"column:assessment_date;type:date;not null" json:"assessment_date"`
	AssessmentMaxMarks int       `gorm:"column:assessment_max_marks;not null" json:"assessment_max_marks"`
	AssessmentType     string    `gorm:"column:assessment_type;type:varchar(50);not null;default:'regular'" json:"assessment_type"`

	AssessmentYear    int    `gorm:"column:assessment_year" json:"assessment_year"`
	AssessmentSection string `gorm:"column:assessment_section;type:varchar(10)" json:"assessment_section"`

	AssessmentSubjectID uuid.UUID `gorm:"column:assessment_subject_id;type:uuid;not null;index" json:"assessment_subject_id"`

	Subject *SubjectModel `gorm:"foreignKey:AssessmentSubjectID;references:SubjectID" json:"subject,omitempty"`

	AssessmentCreatedAt time.Time `gorm:"column:assessment_created_at;not null;autoCreateTime" json:"assessment_created_at"`
}

func (AssessmentModel) TableName() string { return "assessments" }

func (m *AssessmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.AssessmentID == uuid.Nil {
		m.AssessmentID = uuid.New()
	}
	return nil
}

func (m *AssessmentModel) IsRecurring() bool {
	return m.AssessmentType == AssessmentTypeRecurring
}
