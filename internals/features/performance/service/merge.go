package service

import (
	"errors"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/model"
)

// Layout timestamp fixed-width: leksikografis == kronologis, aman untuk
// sort kolom string.
const mergeTimeLayout = "2006-01-02 15:04:05.000000000"

// MergeStats: counter hasil rekonsiliasi recurring assessment.
// MergeError terisi kalau merge degradasi jadi pass-through.
type MergeStats struct {
	HistoricalRecords int      `json:"historical_records"`
	NewRecords        int      `json:"new_records"`
	MergedRecords     int      `json:"merged_records"`
	CommonColumns     []string `json:"common_columns,omitempty"`
	MergeError        string   `json:"merge_error,omitempty"`
}

// MergeRecurringHistory merekonsiliasi baris upload baru dengan seluruh
// history performance record untuk assessment recurring bernama sama di
// subject yang sama.
//
// Best-effort by contract: kegagalan apapun di sini TIDAK boleh
// menggagalkan upload — fungsi mengembalikan data baru apa adanya plus
// anotasi error di stats, bukan error.
func MergeRecurringHistory(db *gorm.DB, subjectName, assessmentName string, newTable *Table, logger *log.Logger) (*Table, MergeStats) {
	if logger == nil {
		logger = log.Default()
	}
	stats := MergeStats{
		NewRecords:    newTable.Len(),
		MergedRecords: newTable.Len(),
	}

	// 1. Subject by nama tampilan. Tidak ada ⇒ upload pertama, tanpa merge.
	var subject model.SubjectModel
	if err := db.Where("subject_name = ?", subjectName).First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Printf("[WARN] merge: subject not found: %s", subjectName)
			return newTable, stats
		}
		stats.MergeError = err.Error()
		return newTable, stats
	}

	// 2. Semua assessment se-nama di bawah subject itu (bisa lebih dari satu
	//    dari upload-upload lama sebelum resolver mengkonsolidasi).
	var assessments []model.AssessmentModel
	if err := db.
		Where("assessment_subject_id = ? AND assessment_name = ?", subject.SubjectID, assessmentName).
		Order("assessment_created_at ASC").
		Find(&assessments).Error; err != nil {
		stats.MergeError = err.Error()
		return newTable, stats
	}
	if len(assessments) == 0 {
		return newTable, stats
	}

	ids := make([]any, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.AssessmentID)
	}

	var records []model.PerformanceRecordModel
	if err := db.
		Preload("Student").Preload("Assessment").
		Where("performance_record_assessment_id IN ?", ids).
		Find(&records).Error; err != nil {
		stats.MergeError = err.Error()
		return newTable, stats
	}

	stats.HistoricalRecords = len(records)
	logger.Printf("[INFO] merge: found %d historical records for %q", len(records), assessmentName)
	if len(records) == 0 {
		return newTable, stats
	}

	// 3. Materialisasi history jadi tabel; snapshot raw di-flatten ke baris.
	historical := buildHistoricalTable(records)

	// 4. Data baru: tandai provenance + timestamp "now", samakan penamaan
	//    kolom kunci lewat fallback chain, dan tag assessment id yang
	//    dipakai resolver (konsolidasi ke assessment tertua).
	prepared := prepareNewTable(newTable, &assessments[0])

	// 5-6. Align kolom, concat, lalu dedup paling-baru-menang.
	common := historical.CommonColumns(prepared)
	if len(common) == 0 {
		logger.Printf("[WARN] merge: no common columns between historical and new data")
		stats.MergeError = "no common columns between historical and new data"
		return newTable, stats
	}

	merged := historical.Select(common).Concat(prepared.Select(common))

	if containsStr(common, "student_roll_number") && containsStr(common, "created_at") {
		merged.SortByStringDesc("created_at")
		dedupKey := pickDedupColumn(common)
		if dedupKey != "" {
			merged.DedupByKey(func(r Row) string {
				return AsString(r["student_roll_number"]) + "\x00" + AsString(r[dedupKey])
			})
		}
	}

	stats.MergedRecords = merged.Len()
	stats.CommonColumns = common
	logger.Printf("[INFO] merge: historical=%d new=%d merged=%d", stats.HistoricalRecords, stats.NewRecords, stats.MergedRecords)
	return merged, stats
}

func buildHistoricalTable(records []model.PerformanceRecordModel) *Table {
	t := NewTable([]string{
		"student_roll_number", "first_name", "last_name",
		"marks_obtained", "assessment_id", "assessment_name",
		"assessment_date", "max_marks", "created_at", "data_source",
	})
	for _, rec := range records {
		r := Row{
			"marks_obtained": rec.PerformanceRecordMarks,
			"created_at":     rec.PerformanceRecordCreatedAt.UTC().Format(mergeTimeLayout),
			"data_source":    "historical",
		}
		if rec.Student != nil {
			r["student_roll_number"] = rec.Student.StudentRollNumber
			r["first_name"] = rec.Student.StudentFirstName
			r["last_name"] = rec.Student.StudentLastName
		}
		if rec.Assessment != nil {
			r["assessment_id"] = rec.Assessment.AssessmentID.String()
			r["assessment_name"] = rec.Assessment.AssessmentName
			r["assessment_date"] = rec.Assessment.AssessmentDate.Format("2006-01-02")
			r["max_marks"] = float64(rec.Assessment.AssessmentMaxMarks)
		}
		// snapshot Excel asli ikut dibawa (kolom baru ditambah terurut
		// supaya deterministik)
		if len(rec.PerformanceRecordRaw) > 0 {
			keys := make([]string, 0, len(rec.PerformanceRecordRaw))
			for k := range rec.PerformanceRecordRaw {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				t.AddColumn(k)
				r[k] = rec.PerformanceRecordRaw[k]
			}
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

func prepareNewTable(newTable *Table, assessment *model.AssessmentModel) *Table {
	t := newTable.Copy()
	now := time.Now().UTC().Format(mergeTimeLayout)

	for _, c := range []string{"data_source", "created_at", "student_roll_number", "marks_obtained", "assessment_id", "assessment_name"} {
		t.AddColumn(c)
	}
	for _, r := range t.Rows {
		r["data_source"] = "new"
		r["created_at"] = now
		if IsMissing(r["student_roll_number"]) {
			if v, ok := lookupAlias(r, rollNumberAliases); ok {
				r["student_roll_number"] = AsString(v)
			}
		}
		if IsMissing(r["marks_obtained"]) {
			if v, ok := lookupAlias(r, marksAliases); ok {
				r["marks_obtained"] = v
			}
		}
		r["assessment_id"] = assessment.AssessmentID.String()
		r["assessment_name"] = assessment.AssessmentName
	}
	return t
}

// Dedup dikunci pada assessment id; nama dipakai sebagai fallback
// kompatibilitas kalau id tidak ikut di kolom bersama.
func pickDedupColumn(common []string) string {
	if containsStr(common, "assessment_id") {
		return "assessment_id"
	}
	if containsStr(common, "assessment_name") {
		return "assessment_name"
	}
	return ""
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
