package importer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/ukane-philemon/reportcard/internal/db"
	"github.com/ukane-philemon/reportcard/internal/student"
	"github.com/xuri/excelize/v2"
)

const (
	rollNoColumn    = 0
	nameColumn      = 1
	firstMarkColumn = 2
)

// Result summarises an import.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  []*Skipped `json:"skipped"`
}

// Skipped is a sheet row that was not imported. Row is 1-based, as shown in
// spreadsheet software.
type Skipped struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// FromExcel adds the students listed in the first sheet of the xlsx workbook
// read from r to repo. The header row names the columns:
//
//	Roll No | Name | <subject> | <subject> ...
//
// Blank mark cells are left out of a student's marks. Rows that repo rejects
// are reported in Result.Skipped, any other repo error stops the import.
func FromExcel(repo student.Repository, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open excel file: %v", db.ErrorInvalidRequest, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: excel file does not contain any sheets", db.ErrorInvalidRequest)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("f.GetRows error: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", db.ErrorInvalidRequest, sheetName)
	}

	subjects := subjectColumns(rows[0])
	res := &Result{Skipped: []*Skipped{}}
	for i, row := range rows[1:] {
		rowNumber := i + 2
		if isBlank(row) {
			continue
		}

		rollNo, name, marks, err := parseRow(row, subjects)
		if err != nil {
			res.skip(rowNumber, err.Error())
			continue
		}

		_, err = repo.Add(rollNo, name, marks)
		if err != nil {
			if errors.Is(err, db.ErrorInvalidRequest) {
				res.skip(rowNumber, err.Error())
				continue
			}
			return nil, fmt.Errorf("row %d: %w", rowNumber, err)
		}

		res.Imported++
	}

	log.Printf("Imported %d students from sheet %s, skipped %d rows", res.Imported, sheetName, len(res.Skipped))
	return res, nil
}

func (res *Result) skip(row int, reason string) {
	log.Printf("Skipping row %d: %s", row, reason)
	res.Skipped = append(res.Skipped, &Skipped{Row: row, Reason: reason})
}

// subjectColumns maps a column index to the subject named in the header.
// Columns with a blank header are ignored.
func subjectColumns(header []string) map[int]string {
	subjects := make(map[int]string)
	for col := firstMarkColumn; col < len(header); col++ {
		if subject := strings.TrimSpace(header[col]); subject != "" {
			subjects[col] = subject
		}
	}
	return subjects
}

// parseRow reads one student row. Unparsable mark cells become NaN so the
// repository rejects them as invalid marks after its duplicate check.
func parseRow(row []string, subjects map[int]string) (int, string, map[string]float64, error) {
	rollNoCell := strings.TrimSpace(cell(row, rollNoColumn))
	rollNo, err := strconv.Atoi(rollNoCell)
	if err != nil {
		return 0, "", nil, fmt.Errorf("invalid roll number %q", rollNoCell)
	}

	marks := make(map[string]float64, len(subjects))
	for col, subject := range subjects {
		value := strings.TrimSpace(cell(row, col))
		if value == "" {
			continue
		}

		mark, err := strconv.ParseFloat(value, 64)
		if err != nil {
			mark = math.NaN()
		}
		marks[subject] = mark
	}

	return rollNo, strings.TrimSpace(cell(row, nameColumn)), marks, nil
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
