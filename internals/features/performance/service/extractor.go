package service

import (
	"errors"
	"fmt"
	"strings"
)

// Fallback chain: daftar alias header per field logis, urut prioritas.
// Alias pertama yang ada DAN tidak missing yang dipakai.
var (
	rollNumberAliases = []string{"student_id", "student_roll_number", "roll_number", "id"}
	fullNameAliases   = []string{"name", "student_name"}
	marksAliases      = []string{"marks", "score", "marks_obtained"}
)

var (
	errMissingIdentity = errors.New("missing student ID or name")
	errMissingMarks    = errors.New("missing marks")
)

// RowFields: hasil ekstraksi satu baris yang lolos validasi.
type RowFields struct {
	RollNumber string
	FirstName  string
	LastName   string
	Marks      float64
}

// lookupAlias mengembalikan nilai alias pertama yang ada dan tidak missing.
func lookupAlias(r Row, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := r[a]; ok && !IsMissing(v) {
			return v, true
		}
	}
	return nil, false
}

// ExtractRow menarik identitas + nilai dari satu baris ternormalisasi.
//
// Nama: first_name/last_name dulu; kalau dua-duanya kosong tapi ada kolom
// name/student_name gabungan, dipecah pada spasi pertama (sisanya jadi
// last name). Baris ditolak kalau roll number kosong, first name kosong,
// atau marks missing/non-numerik — penolakan per baris, bukan fatal batch.
func ExtractRow(r Row) (RowFields, error) {
	var f RowFields

	if v, ok := lookupAlias(r, rollNumberAliases); ok {
		f.RollNumber = strings.TrimSpace(AsString(v))
	}

	if v, ok := r["first_name"]; ok && !IsMissing(v) {
		f.FirstName = strings.TrimSpace(AsString(v))
	}
	if v, ok := r["last_name"]; ok && !IsMissing(v) {
		f.LastName = strings.TrimSpace(AsString(v))
	}
	if f.FirstName == "" && f.LastName == "" {
		if v, ok := lookupAlias(r, fullNameAliases); ok {
			full := strings.TrimSpace(AsString(v))
			if full != "" {
				parts := strings.SplitN(full, " ", 2)
				f.FirstName = parts[0]
				if len(parts) > 1 {
					f.LastName = parts[1]
				}
			}
		}
	}

	if f.RollNumber == "" || f.FirstName == "" {
		return f, errMissingIdentity
	}

	v, ok := lookupAlias(r, marksAliases)
	if !ok {
		return f, errMissingMarks
	}
	marks, ok := AsFloat(v)
	if !ok {
		return f, errMissingMarks
	}
	f.Marks = marks

	return f, nil
}

// RowError memformat pesan penolakan baris untuk report, nomor baris 1-based.
func RowError(index int, f RowFields, err error) string {
	switch {
	case errors.Is(err, errMissingMarks) && f.RollNumber != "":
		return fmt.Sprintf("Row %d: Missing marks for student %s", index+1, f.RollNumber)
	case errors.Is(err, errMissingIdentity):
		return fmt.Sprintf("Row %d: Missing student ID or name", index+1)
	default:
		return fmt.Sprintf("Row %d: %v", index+1, err)
	}
}
