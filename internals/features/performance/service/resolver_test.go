package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/model"
)

func uploadInput(assessmentType string) UploadInput {
	return UploadInput{
		SubjectName:    "Mathematics",
		Year:           2,
		Section:        "CSEA",
		AssessmentType: assessmentType,
	}
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestProcessUploadFirstRegular(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	buf := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
		{"CS002", "Jane Roe", 72},
		{"CS003", "Bob Stone", 58},
	})

	report, err := svc.ProcessUpload(context.Background(), buf, uploadInput("Midterm"))
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if report.AssessmentName != "Midterm - Mathematics (Year 2 CSEA)" {
		t.Errorf("AssessmentName = %q", report.AssessmentName)
	}
	if report.AssessmentType != model.AssessmentTypeRegular || report.IsRecurring {
		t.Errorf("type = %q recurring=%v", report.AssessmentType, report.IsRecurring)
	}
	if report.StudentsProcessed != 3 || report.StudentsUpdated != 0 {
		t.Errorf("students +%d ~%d", report.StudentsProcessed, report.StudentsUpdated)
	}
	if report.RecordsCreated != 3 || report.RecordsUpdated != 0 {
		t.Errorf("records +%d ~%d", report.RecordsCreated, report.RecordsUpdated)
	}
	if report.TotalRows != 3 || report.RejectedRows != 0 || len(report.Errors) != 0 {
		t.Errorf("rows=%d rejected=%d errors=%v", report.TotalRows, report.RejectedRows, report.Errors)
	}
	if report.Merge != nil {
		t.Errorf("upload non-recurring tidak merge: %+v", report.Merge)
	}

	var subject model.SubjectModel
	if err := db.First(&subject).Error; err != nil {
		t.Fatalf("subject: %v", err)
	}
	if subject.SubjectName != "Mathematics - Year 2 CSEA" {
		t.Errorf("SubjectName = %q", subject.SubjectName)
	}
	if subject.SubjectBaseName != "Mathematics" || subject.SubjectYear != 2 || subject.SubjectSection != "CSEA" {
		t.Errorf("subject = %+v", subject)
	}
}

func TestProcessUploadSubjectAndStudentReuse(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	first := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
	})
	if _, err := svc.ProcessUpload(context.Background(), first, uploadInput("Midterm")); err != nil {
		t.Fatalf("upload 1: %v", err)
	}

	second := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 90},
	})
	report, err := svc.ProcessUpload(context.Background(), second, uploadInput("Final"))
	if err != nil {
		t.Fatalf("upload 2: %v", err)
	}

	// subject dan student di-reuse lintas upload
	if n := countRows(t, db, &model.SubjectModel{}); n != 1 {
		t.Errorf("subjects = %d, want 1", n)
	}
	if n := countRows(t, db, &model.StudentModel{}); n != 1 {
		t.Errorf("students = %d, want 1", n)
	}
	if report.StudentsProcessed != 0 || report.StudentsUpdated != 0 {
		t.Errorf("students +%d ~%d, want reuse tanpa update", report.StudentsProcessed, report.StudentsUpdated)
	}
	// non-recurring: assessment & record baru per upload
	if n := countRows(t, db, &model.AssessmentModel{}); n != 2 {
		t.Errorf("assessments = %d, want 2", n)
	}
	if n := countRows(t, db, &model.PerformanceRecordModel{}); n != 2 {
		t.Errorf("records = %d, want 2", n)
	}
}

func TestProcessUploadRecurringReUpload(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	first := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks", "Week"},
		{"CS001", "John Smith", 85, 1},
	})
	report, err := svc.ProcessUpload(context.Background(), first, uploadInput("CRT 1"))
	if err != nil {
		t.Fatalf("upload 1: %v", err)
	}
	if !report.IsRecurring || report.AssessmentType != model.AssessmentTypeRecurring {
		t.Fatalf("upload CRT harus recurring: %+v", report)
	}
	if report.Merge == nil || report.Merge.HistoricalRecords != 0 {
		t.Fatalf("upload pertama history harus 0: %+v", report.Merge)
	}
	if report.RecordsCreated != 1 || report.RecordsUpdated != 0 {
		t.Fatalf("records +%d ~%d", report.RecordsCreated, report.RecordsUpdated)
	}

	// upload ulang: nama dikoreksi + nilai baru
	second := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks", "Week"},
		{"CS001", "John Smyth", 92, 1},
	})
	report, err = svc.ProcessUpload(context.Background(), second, uploadInput("CRT 1"))
	if err != nil {
		t.Fatalf("upload 2: %v", err)
	}

	if report.Merge == nil || report.Merge.HistoricalRecords != 1 {
		t.Errorf("history upload kedua = %+v, want 1", report.Merge)
	}
	if report.StudentsProcessed != 0 || report.StudentsUpdated != 1 {
		t.Errorf("students +%d ~%d, want koreksi nama last-write-wins", report.StudentsProcessed, report.StudentsUpdated)
	}
	if report.RecordsCreated != 0 || report.RecordsUpdated != 1 {
		t.Errorf("records +%d ~%d, want update in place", report.RecordsCreated, report.RecordsUpdated)
	}

	// recurring: assessment dan record tetap satu
	if n := countRows(t, db, &model.AssessmentModel{}); n != 1 {
		t.Errorf("assessments = %d, want 1", n)
	}
	if n := countRows(t, db, &model.PerformanceRecordModel{}); n != 1 {
		t.Errorf("records = %d, want 1", n)
	}

	var student model.StudentModel
	if err := db.Where("student_roll_number = ?", "CS001").First(&student).Error; err != nil {
		t.Fatalf("student: %v", err)
	}
	if student.FullName() != "John Smyth" {
		t.Errorf("nama = %q, want John Smyth", student.FullName())
	}

	var rec model.PerformanceRecordModel
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.PerformanceRecordMarks != 92 {
		t.Errorf("marks = %v, want 92", rec.PerformanceRecordMarks)
	}
}

func TestProcessUploadRowRejections(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	buf := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
		{"CS002", "Jane Roe", "absent"}, // marks non-numerik
		{nil, "No Roll", 70},            // tanpa roll number
	})

	report, err := svc.ProcessUpload(context.Background(), buf, uploadInput("Midterm"))
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if report.TotalRows != 3 || report.RejectedRows != 2 {
		t.Fatalf("rows=%d rejected=%d", report.TotalRows, report.RejectedRows)
	}
	if report.RecordsCreated != 1 {
		t.Errorf("records = %d, want hanya baris valid", report.RecordsCreated)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("errors = %v", report.Errors)
	}
	if report.Errors[0] != "Row 2: Missing marks for student CS002" {
		t.Errorf("errors[0] = %q", report.Errors[0])
	}
	if report.Errors[1] != "Row 3: Missing student ID or name" {
		t.Errorf("errors[1] = %q", report.Errors[1])
	}
}

func TestProcessUploadMissingColumnsFatal(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	// CRT tanpa kolom week: fatal, tidak ada partial write
	buf := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
	})

	_, err := svc.ProcessUpload(context.Background(), buf, uploadInput("CRT 1"))
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want MissingColumnsError", err)
	}
	if n := countRows(t, db, &model.SubjectModel{}); n != 0 {
		t.Errorf("subjects = %d, want 0 (tidak ada partial write)", n)
	}
	if n := countRows(t, db, &model.StudentModel{}); n != 0 {
		t.Errorf("students = %d, want 0", n)
	}
}

func TestProcessUploadEmptyWorkbook(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	buf := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
	})

	if _, err := svc.ProcessUpload(context.Background(), buf, uploadInput("Midterm")); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("err = %v, want ErrEmptyDataset", err)
	}
}

func TestProcessUploadMissingMetadata(t *testing.T) {
	svc := NewUploadService(openTestDB(t), quietLogger())

	buf := buildWorkbook(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
	})

	in := uploadInput("Midterm")
	in.Section = ""
	if _, err := svc.ProcessUpload(context.Background(), buf, in); !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("err = %v, want ErrMissingMetadata", err)
	}
}

func TestProcessUploadErrorCap(t *testing.T) {
	db := openTestDB(t)
	svc := NewUploadService(db, quietLogger())

	rows := [][]any{{"Student ID", "Name", "Marks"}}
	// 12 baris tanpa marks + 1 valid
	for i := 0; i < 12; i++ {
		rows = append(rows, []any{"CS0" + string(rune('A'+i)), "Student X", nil})
	}
	rows = append(rows, []any{"CS999", "Valid Student", 80})

	report, err := svc.ProcessUpload(context.Background(), buildWorkbook(t, rows), uploadInput("Midterm"))
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if report.RejectedRows != 12 {
		t.Errorf("RejectedRows = %d, want 12 (total sesungguhnya)", report.RejectedRows)
	}
	if len(report.Errors) != 10 {
		t.Errorf("Errors = %d item, want cap 10", len(report.Errors))
	}
}
