package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Ekstensi file spreadsheet yang diterima endpoint upload.
var allowedExtensions = map[string]bool{".xlsx": true, ".xls": true}

func AllowedWorkbookFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

var (
	// ErrCorruptWorkbook: stream bukan workbook valid / rusak saat parse.
	ErrCorruptWorkbook = errors.New("error parsing excel file - file may be corrupted")

	// ErrNoSheets: workbook valid tapi tidak punya sheet sama sekali.
	ErrNoSheets = errors.New("excel file does not contain any sheets")

	// ErrNoHeader: sheet pertama kosong, tidak ada baris header.
	ErrNoHeader = errors.New("excel file has no header row")
)

// LoadWorkbook membaca stream Excel (.xlsx/.xls) jadi Table.
// Baris pertama sheet pertama dianggap header; sel kosong jadi missing (nil).
// Error I/O maupun parsing dibungkus supaya caller bisa membedakan
// "file rusak" dari error pipeline lain.
func LoadWorkbook(file io.Reader, logger *log.Logger) (*Table, error) {
	if logger == nil {
		logger = log.Default()
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		logger.Printf("[ERROR] opening excel reader: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCorruptWorkbook, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Printf("[WARN] closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		logger.Printf("[ERROR] reading rows from sheet %q: %v", sheetName, err)
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	// Header = baris pertama. Kolom tanpa nama judul di-skip karena
	// tidak bisa dialamatkan oleh pipeline.
	header := rows[0]
	table := NewTable(nil)
	for _, h := range header {
		if h != "" {
			table.Columns = append(table.Columns, h)
		}
	}

	for _, raw := range rows[1:] {
		r := make(Row, len(table.Columns))
		col := 0
		for i, h := range header {
			if h == "" {
				continue
			}
			var cell string
			if i < len(raw) {
				cell = raw[i]
			}
			if cell == "" {
				r[table.Columns[col]] = nil
			} else {
				r[table.Columns[col]] = cell
			}
			col++
		}
		table.Rows = append(table.Rows, r)
	}

	logger.Printf("[INFO] loaded sheet %q: %d rows x %d columns", sheetName, table.Len(), len(table.Columns))
	return table, nil
}
