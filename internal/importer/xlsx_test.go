package importer

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukane-philemon/reportcard/internal/db"
	"github.com/ukane-philemon/reportcard/internal/db/jsonfile"
	"github.com/ukane-philemon/reportcard/internal/student"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "students.json"))
	require.NoError(t, err)
	return store
}

func TestFromExcel(t *testing.T) {
	store := newStore(t)
	_, err := store.Add(103, "Existing", map[string]float64{"Math": 50})
	require.NoError(t, err)

	buf := workbook(t, [][]any{
		{"Roll No", "Name", "Math", "Science", ""},
		{101, "Asha", 92, 88},
		{102, "Lee", 105, 70},
		{103, "Raj", 50, 50},
		{"abc", "Nobody", 50, 50},
		{104, "Mia", 65, ""},
		{105, "", 65, 65},
		{106, "Tom", "ninety", 80},
	})

	res, err := FromExcel(store, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	var skippedRows []int
	for _, s := range res.Skipped {
		skippedRows = append(skippedRows, s.Row)
	}
	assert.Equal(t, []int{3, 4, 5, 7, 8}, skippedRows)
	assert.True(t, strings.Contains(res.Skipped[1].Reason, "roll number already exists"))

	asha, err := store.Student(101)
	require.NoError(t, err)
	assert.Equal(t, student.GradeA, asha.Grade)

	// A blank mark cell leaves the subject out.
	mia, err := store.Student(104)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Math": 65}, mia.Marks)
	assert.Equal(t, student.GradeD, mia.Grade)

	_, err = store.Student(102)
	assert.ErrorIs(t, err, db.ErrorNotFound)
}

func TestFromExcelInvalidFile(t *testing.T) {
	_, err := FromExcel(newStore(t), strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, db.ErrorInvalidRequest)
}

func TestFromExcelEmptySheet(t *testing.T) {
	_, err := FromExcel(newStore(t), workbook(t, nil))
	assert.ErrorIs(t, err, db.ErrorInvalidRequest)
}
