package service

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"studentperf_backend/internals/features/performance/model"
)

// openTestDB membuka sqlite file sementara dengan schema lengkap.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
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
	return db
}

// buildWorkbook membuat file xlsx in-memory: baris pertama header.
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
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
	return buf
}

func quietLogger() *log.Logger {
	return log.New(bytes.NewBuffer(nil), "", 0)
}
