package service

import (
	"sort"
	"strconv"
)

// Row adalah satu baris tabular. Nilai sel: string, float64, atau nil (missing).
type Row map[string]any

// Table adalah representasi tabular in-memory hasil load spreadsheet.
// Urutan kolom dipertahankan supaya transformasi deterministik.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func NewTable(columns []string) *Table {
	return &Table{Columns: columns, Rows: []Row{}}
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn menambah kolom baru (no-op kalau sudah ada).
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Copy membuat salinan dalam (rows di-clone per map).
func (t *Table) Copy() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// CommonColumns mengembalikan irisan kolom dua tabel, urut mengikuti t.
func (t *Table) CommonColumns(other *Table) []string {
	set := make(map[string]bool, len(other.Columns))
	for _, c := range other.Columns {
		set[c] = true
	}
	var common []string
	for _, c := range t.Columns {
		if set[c] {
			common = append(common, c)
		}
	}
	return common
}

// Select membuat tabel baru berisi subset kolom saja.
func (t *Table) Select(columns []string) *Table {
	out := &Table{Columns: append([]string(nil), columns...)}
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := make(Row, len(columns))
		for _, c := range columns {
			if v, ok := r[c]; ok {
				nr[c] = v
			} else {
				nr[c] = nil
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Concat menggabungkan baris kedua tabel (union baris, bukan join).
// Kolom hasil = kolom t (pemanggil sudah menyamakan kolom via Select).
func (t *Table) Concat(other *Table) *Table {
	out := t.Copy()
	for _, r := range other.Rows {
		nr := make(Row, len(out.Columns))
		for _, c := range out.Columns {
			if v, ok := r[c]; ok {
				nr[c] = v
			} else {
				nr[c] = nil
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// SortByFloatDesc mengurutkan baris menurun berdasarkan kolom numerik.
// Stable supaya urutan relatif baris dengan nilai sama tidak berubah.
func (t *Table) SortByFloatDesc(column string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, _ := AsFloat(t.Rows[i][column])
		b, _ := AsFloat(t.Rows[j][column])
		return a > b
	})
}

// SortByStringDesc mengurutkan baris menurun berdasarkan kolom string.
// Dipakai untuk timestamp fixed-width (urutan leksikografis == kronologis).
func (t *Table) SortByStringDesc(column string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return AsString(t.Rows[i][column]) > AsString(t.Rows[j][column])
	})
}

// DedupByKey membuang baris duplikat berdasarkan key function,
// mempertahankan kemunculan pertama.
func (t *Table) DedupByKey(key func(Row) string) {
	seen := make(map[string]bool, len(t.Rows))
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, r)
	}
	t.Rows = kept
}

// IsMissing: sel kosong / tidak ada.
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// AsFloat membaca sel sebagai angka kalau bisa.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsString membaca sel sebagai string. Angka diformat tanpa trailing zero
// supaya roll number numerik dari Excel ("101") tidak jadi "101.000000".
func AsString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}
