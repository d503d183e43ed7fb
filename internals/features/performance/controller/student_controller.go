package controller

import (
	"errors"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/model"
	"studentperf_backend/internals/features/performance/service"
	helper "studentperf_backend/internals/helpers"
)

type StudentController struct {
	DB *gorm.DB
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db}
}

// ListStudents
// GET /api/v1/students?page=&per_page=&q=
func (ctl *StudentController) ListStudents(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 25, 200)

	q := ctl.DB.WithContext(c.UserContext()).Model(&model.StudentModel{})
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"lower(student_roll_number) LIKE ? OR lower(student_first_name) LIKE ? OR lower(student_last_name) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve students")
	}

	var students []model.StudentModel
	if err := q.Order("student_roll_number ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&students).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve students")
	}

	return helper.JsonList(c, "ok", students, helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// studentRecordView: satu record + persentase & grade terhitung.
type studentRecordView struct {
	AssessmentName string  `json:"assessment_name"`
	AssessmentType string  `json:"assessment_type"`
	AssessmentDate string  `json:"assessment_date"`
	SubjectName    string  `json:"subject_name"`
	Marks          float64 `json:"marks_obtained"`
	MaxMarks       int     `json:"max_marks"`
	Percentage     float64 `json:"percentage"`
	Grade          string  `json:"grade"`
}

// GetStudentByRoll
// GET /api/v1/students/:roll
// Profil siswa + seluruh record performanya, terbaru dulu.
func (ctl *StudentController) GetStudentByRoll(c *fiber.Ctx) error {
	roll := strings.TrimSpace(c.Params("roll"))
	if roll == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Roll number is required")
	}

	db := ctl.DB.WithContext(c.UserContext())

	var student model.StudentModel
	if err := db.Where("student_roll_number = ?", roll).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve student")
	}

	var records []model.PerformanceRecordModel
	if err := db.Preload("Assessment").Preload("Assessment.Subject").
		Where("performance_record_student_id = ?", student.StudentID).
		Order("performance_record_created_at DESC").
		Find(&records).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve performance records")
	}

	views := make([]studentRecordView, 0, len(records))
	for _, rec := range records {
		v := studentRecordView{Marks: rec.PerformanceRecordMarks}
		if a := rec.Assessment; a != nil {
			v.AssessmentName = a.AssessmentName
			v.AssessmentType = a.AssessmentType
			v.AssessmentDate = a.AssessmentDate.Format("2006-01-02")
			v.MaxMarks = a.AssessmentMaxMarks
			pct := service.Percentage(rec.PerformanceRecordMarks, float64(a.AssessmentMaxMarks))
			v.Percentage = math.Round(pct*100) / 100
			v.Grade = service.Grade(pct)
			if a.Subject != nil {
				v.SubjectName = a.Subject.SubjectName
			}
		}
		views = append(views, v)
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"student": student,
		"records": views,
	})
}
