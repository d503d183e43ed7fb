package service

import (
	"errors"
	"log"
	"strings"
)

// ErrEmptyDataset: tabel kosong setelah pembersihan (fatal untuk satu upload).
var ErrEmptyDataset = errors.New("excel file is empty or contains no valid data after cleaning")

// Kolom identitas siswa yang TIDAK boleh dikonversi ke angka.
var studentInfoColumns = map[string]bool{
	"student_id":          true,
	"student_roll_number": true,
	"name":                true,
	"first_name":          true,
	"last_name":           true,
}

// CleanStats: berapa banyak yang dibuang normalizer (informasi saja).
type CleanStats struct {
	RowsDropped    int `json:"rows_dropped"`
	ColumnsDropped int `json:"columns_dropped"`
}

// NormalizeHeader menstandarkan nama kolom: trim, lowercase, spasi → underscore.
// Idempotent: dua kali normalize hasilnya sama.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ToLower(h)
	return strings.ReplaceAll(h, " ", "_")
}

// Clean menormalkan header, mengkonversi kolom non-identitas ke numerik
// (sel yang gagal konversi jadi missing, tidak pernah menggagalkan batch),
// lalu membuang baris kosong kemudian kolom kosong — urutan itu disengaja
// supaya deterministik. Transform murni: tabel input tidak diubah.
func Clean(t *Table, logger *log.Logger) (*Table, CleanStats, error) {
	if logger == nil {
		logger = log.Default()
	}
	stats := CleanStats{}

	// 1. Standarkan header. Kalau dua header collapse ke nama sama,
	//    kolom yang muncul belakangan menang (mengikuti semantics map).
	out := NewTable(nil)
	rename := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		n := NormalizeHeader(c)
		rename[c] = n
		if !out.HasColumn(n) {
			out.Columns = append(out.Columns, n)
		}
	}
	for _, r := range t.Rows {
		nr := make(Row, len(out.Columns))
		for _, c := range t.Columns {
			nr[rename[c]] = r[c]
		}
		out.Rows = append(out.Rows, nr)
	}

	// 2. Konversi numerik untuk kolom non-identitas. coerce → missing.
	for _, c := range out.Columns {
		if studentInfoColumns[c] {
			continue
		}
		for _, r := range out.Rows {
			if IsMissing(r[c]) {
				r[c] = nil
				continue
			}
			if f, ok := AsFloat(r[c]); ok {
				r[c] = f
			} else {
				r[c] = nil
			}
		}
	}

	// 3. Buang baris yang kosong total.
	kept := out.Rows[:0]
	for _, r := range out.Rows {
		empty := true
		for _, c := range out.Columns {
			if !IsMissing(r[c]) {
				empty = false
				break
			}
		}
		if empty {
			stats.RowsDropped++
			continue
		}
		kept = append(kept, r)
	}
	out.Rows = kept

	// 4. Buang kolom yang kosong total (setelah baris kosong dibuang).
	var keptCols []string
	for _, c := range out.Columns {
		empty := true
		for _, r := range out.Rows {
			if !IsMissing(r[c]) {
				empty = false
				break
			}
		}
		if empty {
			stats.ColumnsDropped++
			for _, r := range out.Rows {
				delete(r, c)
			}
			continue
		}
		keptCols = append(keptCols, c)
	}
	out.Columns = keptCols

	if stats.RowsDropped > 0 || stats.ColumnsDropped > 0 {
		logger.Printf("[INFO] cleaning dropped %d empty rows, %d empty columns", stats.RowsDropped, stats.ColumnsDropped)
	}

	// 5. Validasi akhir: dataset tidak boleh kosong.
	if out.Len() == 0 || len(out.Columns) == 0 {
		return nil, stats, ErrEmptyDataset
	}

	return out, stats, nil
}
