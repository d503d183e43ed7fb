package service

import (
	"fmt"
	"strings"

	"studentperf_backend/internals/features/performance/model"
)

// MissingColumnsError: kolom wajib untuk tipe assessment tidak ada.
// Fatal untuk seluruh upload, bukan per baris.
type MissingColumnsError struct {
	Kind    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns for %s data: [%s]", e.Kind, strings.Join(e.Columns, ", "))
}

// IsRecurringName: assessment recurring dikenali dari keyword pada nama
// gabungan (label tipe + konteks subject), case-insensitive.
func IsRecurringName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "crt") || strings.Contains(lower, "weekly")
}

// ClassifyUpload menentukan tipe batch upload.
// Keyword pada nama menang; kalau tidak ada, jalur legacy melihat kolom
// yang hadir: week ⇒ recurring, problems_solved ⇒ programming, sisanya regular.
func ClassifyUpload(assessmentName string, t *Table) string {
	if IsRecurringName(assessmentName) {
		return model.AssessmentTypeRecurring
	}
	if t.HasColumn("week") {
		return model.AssessmentTypeRecurring
	}
	if t.HasColumn("problems_solved") {
		return model.AssessmentTypeProgramming
	}
	return model.AssessmentTypeRegular
}

// CheckRequiredColumns memvalidasi set kolom wajib per tipe.
// Kolom identitas dan nama boleh hadir lewat alias manapun di fallback chain.
func CheckRequiredColumns(kind string, t *Table) error {
	var missing []string

	if !hasAnyColumn(t, rollNumberAliases) {
		missing = append(missing, "student_id")
	}
	if !hasAnyColumn(t, fullNameAliases) && !t.HasColumn("first_name") {
		missing = append(missing, "name")
	}

	switch kind {
	case model.AssessmentTypeRecurring:
		if !t.HasColumn("week") {
			missing = append(missing, "week")
		}
	case model.AssessmentTypeProgramming:
		if !t.HasColumn("problems_solved") {
			missing = append(missing, "problems_solved")
		}
	}

	if len(missing) > 0 {
		return &MissingColumnsError{Kind: kind, Columns: missing}
	}
	return nil
}

func hasAnyColumn(t *Table, aliases []string) bool {
	for _, a := range aliases {
		if t.HasColumn(a) {
			return true
		}
	}
	return false
}
