package service

import (
	"context"
	"log"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/model"
)

// SubjectOverview: agregat satu subject untuk dashboard.
type SubjectOverview struct {
	SubjectName       string  `json:"subject_name"`
	AverageMarks      float64 `json:"average_marks"`
	AveragePercentage float64 `json:"average_percentage"`
	TotalRecords      int     `json:"total_records"`
	UniqueStudents    int     `json:"unique_students"`
	Grade             string  `json:"grade"`
}

type ClassOverview struct {
	TotalStudents     int64             `json:"total_students"`
	TotalSubjects     int64             `json:"total_subjects"`
	TotalAssessments  int64             `json:"total_assessments"`
	TotalRecords      int64             `json:"total_records"`
	Subjects          []SubjectOverview `json:"subjects"`
	GradeDistribution map[string]int    `json:"grade_distribution"`
}

type AnalyticsService struct {
	DB  *gorm.DB
	Log *log.Logger
}

func NewAnalyticsService(db *gorm.DB, logger *log.Logger) *AnalyticsService {
	if logger == nil {
		logger = log.Default()
	}
	return &AnalyticsService{DB: db, Log: logger}
}

type perfJoinRow struct {
	SubjectName string
	RollNumber  string
	Marks       float64
	MaxMarks    float64
}

// ClassOverview mengagregasi seluruh record jadi data dashboard:
// total entitas, rata-rata per subject (+grade), dan distribusi grade
// dari rata-rata persentase per siswa. Konsumen output pipeline —
// read-only, tidak menyentuh ingest.
func (s *AnalyticsService) ClassOverview(ctx context.Context) (*ClassOverview, error) {
	db := s.DB.WithContext(ctx)
	out := &ClassOverview{
		Subjects:          []SubjectOverview{},
		GradeDistribution: map[string]int{},
	}

	if err := db.Model(&model.StudentModel{}).Count(&out.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.SubjectModel{}).Count(&out.TotalSubjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.AssessmentModel{}).Count(&out.TotalAssessments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.PerformanceRecordModel{}).Count(&out.TotalRecords).Error; err != nil {
		return nil, err
	}

	var rows []perfJoinRow
	if err := db.Table("performance_records").
		Select(`subjects.subject_name AS subject_name,
			students.student_roll_number AS roll_number,
			performance_records.performance_record_marks AS marks,
			assessments.assessment_max_marks AS max_marks`).
		Joins("JOIN assessments ON assessments.assessment_id = performance_records.performance_record_assessment_id").
		Joins("JOIN subjects ON subjects.subject_id = assessments.assessment_subject_id").
		Joins("JOIN students ON students.student_id = performance_records.performance_record_student_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	bySubjectMarks := map[string][]float64{}
	bySubjectPct := map[string][]float64{}
	bySubjectStudents := map[string]map[string]bool{}
	byStudentPct := map[string][]float64{}

	for _, r := range rows {
		pct := Percentage(r.Marks, r.MaxMarks)
		bySubjectMarks[r.SubjectName] = append(bySubjectMarks[r.SubjectName], r.Marks)
		bySubjectPct[r.SubjectName] = append(bySubjectPct[r.SubjectName], pct)
		if bySubjectStudents[r.SubjectName] == nil {
			bySubjectStudents[r.SubjectName] = map[string]bool{}
		}
		bySubjectStudents[r.SubjectName][r.RollNumber] = true
		byStudentPct[r.RollNumber] = append(byStudentPct[r.RollNumber], pct)
	}

	for name, marks := range bySubjectMarks {
		avgMarks, _ := stats.Mean(marks)
		avgPct, _ := stats.Mean(bySubjectPct[name])
		out.Subjects = append(out.Subjects, SubjectOverview{
			SubjectName:       name,
			AverageMarks:      round2(avgMarks),
			AveragePercentage: round2(avgPct),
			TotalRecords:      len(marks),
			UniqueStudents:    len(bySubjectStudents[name]),
			Grade:             Grade(avgPct),
		})
	}
	sort.Slice(out.Subjects, func(i, j int) bool {
		return out.Subjects[i].AveragePercentage > out.Subjects[j].AveragePercentage
	})

	for _, pcts := range byStudentPct {
		avg, _ := stats.Mean(pcts)
		out.GradeDistribution[Grade(avg)]++
	}

	return out, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
