package dto

import (
	"strings"
	"time"

	"studentperf_backend/internals/features/performance/service"
)

// UploadSubjectRequest: metadata multipart yang menyertai file Excel.
// Nama field form mengikuti frontend lama (camelCase).
type UploadSubjectRequest struct {
	SubjectName    string `json:"subjectName" form:"subjectName" validate:"required,min=1,max=100"`
	Year           int    `json:"year" form:"year" validate:"required,min=1,max=4"`
	Section        string `json:"section" form:"section" validate:"required,min=1,max=10"`
	AssessmentType string `json:"assessmentType" form:"assessmentType" validate:"omitempty,max=100"`

	// opsional — 0 berarti pakai default service
	MaxMarks       int    `json:"maxMarks" form:"maxMarks" validate:"omitempty,min=1,max=1000"`
	AssessmentDate string `json:"assessmentDate" form:"assessmentDate" validate:"omitempty,datetime=2006-01-02"`
}

func (r *UploadSubjectRequest) Normalize() {
	r.SubjectName = strings.TrimSpace(r.SubjectName)
	r.Section = strings.TrimSpace(r.Section)
	r.AssessmentType = strings.TrimSpace(r.AssessmentType)
	if r.AssessmentType == "" {
		r.AssessmentType = "General Assessment"
	}
}

func (r *UploadSubjectRequest) ToInput() service.UploadInput {
	in := service.UploadInput{
		SubjectName:    r.SubjectName,
		Year:           r.Year,
		Section:        r.Section,
		AssessmentType: r.AssessmentType,
		MaxMarks:       r.MaxMarks,
	}
	if r.AssessmentDate != "" {
		if d, err := time.Parse("2006-01-02", r.AssessmentDate); err == nil {
			in.AssessmentDate = d
		}
	}
	return in
}
