package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"studentperf_backend/internals/features/performance/model"
	performanceRoutes "studentperf_backend/internals/features/performance/route"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.SubjectModel{},
		&model.StudentModel{},
		&model.AssessmentModel{},
		&model.PerformanceRecordModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	app := fiber.New()
	performanceRoutes.PerformanceRoutes(app.Group("/api/v1"), db)
	return app, db
}

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/subject", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return out
}

func validFields() map[string]string {
	return map[string]string{
		"subjectName": "Mathematics",
		"year":        "2",
		"section":     "CSEA",
		"assessmentType": "Midterm",
	}
}

func TestUploadSubjectEndpoint(t *testing.T) {
	app, db := newTestApp(t)

	content := workbookBytes(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
		{"CS002", "Jane Roe", 72},
	})
	resp, err := app.Test(uploadRequest(t, "marks.xlsx", content, validFields()), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["success"] != true || body["message"] != "File processed successfully" {
		t.Errorf("body = %v", body)
	}
	data, _ := body["data"].(map[string]any)
	if data == nil {
		t.Fatalf("data kosong: %v", body)
	}
	if data["records_created"] != float64(2) {
		t.Errorf("records_created = %v", data["records_created"])
	}
	if data["assessment_name"] != "Midterm - Mathematics (Year 2 CSEA)" {
		t.Errorf("assessment_name = %v", data["assessment_name"])
	}

	var n int64
	if err := db.Model(&model.PerformanceRecordModel{}).Count(&n).Error; err != nil || n != 2 {
		t.Errorf("records di DB = %d (%v)", n, err)
	}
}

func TestUploadSubjectRejectsBadRequests(t *testing.T) {
	app, _ := newTestApp(t)
	content := workbookBytes(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
	})

	cases := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{
			"tanpa file",
			uploadRequest(t, "", nil, validFields()),
			"No file provided",
		},
		{
			"ekstensi salah",
			uploadRequest(t, "marks.csv", content, validFields()),
			"Invalid file type. Only Excel files (.xlsx, .xls) are allowed",
		},
		{
			"tanpa subject",
			uploadRequest(t, "marks.xlsx", content, map[string]string{"year": "2", "section": "CSEA"}),
			"Subject name is required",
		},
		{
			"tanpa year",
			uploadRequest(t, "marks.xlsx", content, map[string]string{"subjectName": "Math", "section": "CSEA"}),
			"Year is required",
		},
		{
			"tanpa section",
			uploadRequest(t, "marks.xlsx", content, map[string]string{"subjectName": "Math", "year": "2"}),
			"Section is required",
		},
		{
			"file korup",
			uploadRequest(t, "marks.xlsx", []byte("not a workbook"), validFields()),
			"",
		},
	}

	for _, tc := range cases {
		resp, err := app.Test(tc.req, -1)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", tc.name, err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, resp.StatusCode)
			continue
		}
		if tc.message != "" {
			body := decodeBody(t, resp)
			if body["message"] != tc.message {
				t.Errorf("%s: message = %v, want %q", tc.name, body["message"], tc.message)
			}
		}
	}
}

func TestStudentEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	content := workbookBytes(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
		{"CS002", "Jane Roe", 72},
	})
	if resp, err := app.Test(uploadRequest(t, "marks.xlsx", content, validFields()), -1); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upload gagal: %v", err)
	}

	// list
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students?per_page=1", nil), -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	body := decodeBody(t, resp)
	page, _ := body["pagination"].(map[string]any)
	if page == nil || page["total"] != float64(2) || page["total_pages"] != float64(2) {
		t.Errorf("pagination = %v", page)
	}

	// detail + grade terhitung
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/CS001", nil), -1)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail status = %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	data, _ := body["data"].(map[string]any)
	records, _ := data["records"].([]any)
	if len(records) != 1 {
		t.Fatalf("records = %v", data["records"])
	}
	rec, _ := records[0].(map[string]any)
	if rec["percentage"] != float64(85) || rec["grade"] != "A" {
		t.Errorf("record = %v", rec)
	}

	// tidak ditemukan
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/NOPE", nil), -1)
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestClassOverviewEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	content := workbookBytes(t, [][]any{
		{"Student ID", "Name", "Marks"},
		{"CS001", "John Doe", 85},
	})
	if resp, err := app.Test(uploadRequest(t, "marks.xlsx", content, validFields()), -1); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upload gagal: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/class/overview", nil), -1)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data, _ := body["data"].(map[string]any)
	if data["total_students"] != float64(1) || data["total_records"] != float64(1) {
		t.Errorf("overview = %v", data)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil), -1)
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	body = decodeBody(t, resp)
	subjects, _ := body["data"].([]any)
	if len(subjects) != 1 {
		t.Errorf("subjects = %v", body["data"])
	}
}
