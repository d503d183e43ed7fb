package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/model"
)

// Maksimum pesan penolakan baris yang dibawa report keluar.
const maxReportedRowErrors = 10

const defaultMaxMarks = 100

// ErrMissingMetadata: metadata upload wajib (subject/year/section) kosong.
var ErrMissingMetadata = errors.New("subject name, year, and section are required")

// UploadInput: metadata form yang menyertai file upload.
type UploadInput struct {
	SubjectName    string
	Year           int
	Section        string
	AssessmentType string
	AssessmentDate time.Time // zero ⇒ hari ini
	MaxMarks       int       // 0 ⇒ default 100
}

// UploadReport: outcome object satu upload — yang dipakai HTTP layer
// membentuk response. Errors sudah dipotong ke maxReportedRowErrors;
// RejectedRows tetap total sesungguhnya.
type UploadReport struct {
	SubjectName       string      `json:"subject_name"`
	AssessmentName    string      `json:"assessment_name"`
	AssessmentType    string      `json:"assessment_type"`
	IsRecurring       bool        `json:"is_recurring"`
	StudentsProcessed int         `json:"students_processed"`
	StudentsUpdated   int         `json:"students_updated"`
	RecordsCreated    int         `json:"records_created"`
	RecordsUpdated    int         `json:"records_updated"`
	TotalRows         int         `json:"total_rows"`
	RejectedRows      int         `json:"rejected_rows"`
	Errors            []string    `json:"errors"`
	Cleaning          CleanStats  `json:"cleaning"`
	Merge             *MergeStats `json:"merge,omitempty"`
}

// UploadService menjalankan pipeline ingest: load → clean → classify →
// resolve entity per baris → merge recurring → commit.
type UploadService struct {
	DB  *gorm.DB
	Log *log.Logger
}

func NewUploadService(db *gorm.DB, logger *log.Logger) *UploadService {
	if logger == nil {
		logger = log.Default()
	}
	return &UploadService{DB: db, Log: logger}
}

// ProcessUpload memproses satu file upload secara utuh dalam satu
// transaksi tulis. Error yang dikembalikan bersifat fatal batch (file
// rusak, dataset kosong, kolom wajib hilang) — tidak ada partial write.
// Penolakan per baris TIDAK fatal dan terkumpul di report.
func (s *UploadService) ProcessUpload(ctx context.Context, file io.Reader, in UploadInput) (*UploadReport, error) {
	if strings.TrimSpace(in.SubjectName) == "" || in.Year == 0 || strings.TrimSpace(in.Section) == "" {
		return nil, ErrMissingMetadata
	}
	if in.AssessmentType == "" {
		in.AssessmentType = "General Assessment"
	}

	raw, err := LoadWorkbook(file, s.Log)
	if err != nil {
		return nil, err
	}
	table, cleanStats, err := Clean(raw, s.Log)
	if err != nil {
		return nil, err
	}

	// Nama assessment gabungan membawa konteks year/section — basis
	// klasifikasi keyword dan konsolidasi recurring.
	assessmentName := fmt.Sprintf("%s - %s (Year %d %s)", in.AssessmentType, in.SubjectName, in.Year, in.Section)

	kind := ClassifyUpload(assessmentName, table)
	if err := CheckRequiredColumns(kind, table); err != nil {
		return nil, err
	}
	isRecurring := kind == model.AssessmentTypeRecurring

	report := &UploadReport{
		SubjectName:    in.SubjectName,
		AssessmentName: assessmentName,
		AssessmentType: kind,
		IsRecurring:    isRecurring,
		TotalRows:      table.Len(),
		Cleaning:       cleanStats,
		Errors:         []string{},
	}

	var rowErrors []string

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subject, err := s.findOrCreateSubject(tx, in)
		if err != nil {
			return err
		}

		assessment, err := s.resolveAssessment(tx, subject, assessmentName, kind, in)
		if err != nil {
			return err
		}

		// Rekonsiliasi history dijalankan sebelum baris baru ditulis
		// supaya counter historis tidak mengikutkan upload ini sendiri.
		if isRecurring {
			_, stats := MergeRecurringHistory(tx, subject.SubjectName, assessmentName, table, s.Log)
			report.Merge = &stats
		}

		for i, row := range table.Rows {
			fields, err := ExtractRow(row)
			if err != nil {
				rowErrors = append(rowErrors, RowError(i, fields, err))
				continue
			}

			student, created, updated, err := s.findOrCreateStudent(tx, fields)
			if err != nil {
				return err
			}
			if created {
				report.StudentsProcessed++
			}
			if updated {
				report.StudentsUpdated++
			}

			wasUpdate, err := s.upsertRecord(tx, student, assessment, fields, row, isRecurring)
			if err != nil {
				return err
			}
			if wasUpdate {
				report.RecordsUpdated++
			} else {
				report.RecordsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.RejectedRows = len(rowErrors)
	if len(rowErrors) > maxReportedRowErrors {
		rowErrors = rowErrors[:maxReportedRowErrors]
	}
	report.Errors = append(report.Errors, rowErrors...)

	s.Log.Printf("[INFO] upload processed: %s | students +%d ~%d | records +%d ~%d | rejected %d/%d",
		assessmentName, report.StudentsProcessed, report.StudentsUpdated,
		report.RecordsCreated, report.RecordsUpdated, report.RejectedRows, report.TotalRows)
	return report, nil
}

// findOrCreateSubject: lookup (base_name, year, section); miss ⇒ create
// dengan nama tampilan ber-konteks. Kalau insert kalah balapan unique
// constraint dengan upload lain, re-fetch — bukan error user.
func (s *UploadService) findOrCreateSubject(tx *gorm.DB, in UploadInput) (*model.SubjectModel, error) {
	lookup := func(dest *model.SubjectModel) error {
		return tx.Where(
			"subject_base_name = ? AND subject_year = ? AND subject_section = ?",
			in.SubjectName, in.Year, in.Section,
		).First(dest).Error
	}

	var subject model.SubjectModel
	err := lookup(&subject)
	if err == nil {
		return &subject, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	subject = model.SubjectModel{
		SubjectName:     fmt.Sprintf("%s - Year %d %s", in.SubjectName, in.Year, in.Section),
		SubjectBaseName: in.SubjectName,
		SubjectYear:     in.Year,
		SubjectSection:  in.Section,
	}
	if err := tx.Create(&subject).Error; err != nil {
		if isDuplicateErr(err) {
			if err2 := lookup(&subject); err2 == nil {
				return &subject, nil
			}
		}
		return nil, err
	}
	s.Log.Printf("[INFO] created new subject: %s", subject.SubjectName)
	return &subject, nil
}

// resolveAssessment: recurring ⇒ reuse assessment se-nama di subject yang
// sama kalau ada (upload ulangan = event logis yang sama); non-recurring ⇒
// selalu assessment baru per upload.
func (s *UploadService) resolveAssessment(tx *gorm.DB, subject *model.SubjectModel, name, kind string, in UploadInput) (*model.AssessmentModel, error) {
	if kind == model.AssessmentTypeRecurring {
		var existing model.AssessmentModel
		err := tx.Where(
			"assessment_subject_id = ? AND assessment_name = ?",
			subject.SubjectID, name,
		).Order("assessment_created_at ASC").First(&existing).Error
		if err == nil {
			s.Log.Printf("[INFO] using existing recurring assessment: %s", name)
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	date := in.AssessmentDate
	if date.IsZero() {
		date = time.Now()
	}
	maxMarks := in.MaxMarks
	if maxMarks == 0 {
		maxMarks = defaultMaxMarks
	}

	assessment := model.AssessmentModel{
		AssessmentName:      name,
		AssessmentDate:      date,
		AssessmentMaxMarks:  maxMarks,
		AssessmentType:      kind,
		AssessmentYear:      in.Year,
		AssessmentSection:   in.Section,
		AssessmentSubjectID: subject.SubjectID,
	}
	if err := tx.Create(&assessment).Error; err != nil {
		return nil, err
	}
	s.Log.Printf("[INFO] created new assessment: %s", name)
	return &assessment, nil
}

// findOrCreateStudent: lookup roll number; miss ⇒ create. Hit dengan nama
// berbeda ⇒ overwrite (last-write-wins koreksi identitas, bukan konflik).
func (s *UploadService) findOrCreateStudent(tx *gorm.DB, f RowFields) (student *model.StudentModel, created, updated bool, err error) {
	lookup := func(dest *model.StudentModel) error {
		return tx.Where("student_roll_number = ?", f.RollNumber).First(dest).Error
	}

	var st model.StudentModel
	err = lookup(&st)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = model.StudentModel{
			StudentFirstName:  f.FirstName,
			StudentLastName:   f.LastName,
			StudentRollNumber: f.RollNumber,
		}
		if err := tx.Create(&st).Error; err != nil {
			if isDuplicateErr(err) {
				// upload lain keburu membuatnya
				if err2 := lookup(&st); err2 == nil {
					return &st, false, false, nil
				}
			}
			return nil, false, false, err
		}
		return &st, true, false, nil
	}
	if err != nil {
		return nil, false, false, err
	}

	if st.StudentFirstName != f.FirstName || st.StudentLastName != f.LastName {
		st.StudentFirstName = f.FirstName
		st.StudentLastName = f.LastName
		if err := tx.Save(&st).Error; err != nil {
			return nil, false, false, err
		}
		updated = true
	}
	return &st, false, updated, nil
}

// upsertRecord: untuk recurring, paling banyak satu record per
// (student, assessment) — upload ulang meng-update record lama.
// Non-recurring: selalu insert (submission independen).
func (s *UploadService) upsertRecord(tx *gorm.DB, student *model.StudentModel, assessment *model.AssessmentModel, f RowFields, row Row, recurring bool) (wasUpdate bool, err error) {
	snapshot := datatypes.JSONMap(row)

	if recurring {
		var existing model.PerformanceRecordModel
		err := tx.Where(
			"performance_record_student_id = ? AND performance_record_assessment_id = ?",
			student.StudentID, assessment.AssessmentID,
		).First(&existing).Error
		if err == nil {
			existing.PerformanceRecordMarks = f.Marks
			existing.PerformanceRecordRaw = snapshot
			if err := tx.Save(&existing).Error; err != nil {
				return false, err
			}
			return true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}

	record := model.PerformanceRecordModel{
		PerformanceRecordMarks:        f.Marks,
		PerformanceRecordRaw:          snapshot,
		PerformanceRecordStudentID:    student.StudentID,
		PerformanceRecordAssessmentID: assessment.AssessmentID,
	}
	if err := tx.Create(&record).Error; err != nil {
		return false, err
	}
	return false, nil
}

// isDuplicateErr mendeteksi pelanggaran unique constraint lintas driver
// (postgres 23505, sqlite "UNIQUE constraint failed") dari pesan error.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") || strings.Contains(msg, "23505")
}
