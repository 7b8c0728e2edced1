package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukane-philemon/reportcard/internal/db/jsonfile"
)

func runScript(t *testing.T, store *jsonfile.Store, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := runPrompt(store, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, err)
	return out.String()
}

func newPromptStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "students.json"))
	require.NoError(t, err)
	return store
}

func TestPromptAddAndFetch(t *testing.T) {
	store := newPromptStore(t)

	out := runScript(t, store,
		"1", "101", "Asha", "Science, Math", "88", "92",
		"2", "101",
		"3",
	)

	assert.Contains(t, out, "Enter marks for Science: ")
	assert.Contains(t, out, "Student added successfully.")
	assert.Contains(t, out, "Enter roll number to fetch: Roll No: 101\nName: Asha\nMarks:\n  Math: 92\n  Science: 88\n")
	assert.Contains(t, out, "Grade: A")
	assert.NotContains(t, out, "Report Card")
	assert.Equal(t, 1, store.Len())
}

func TestPromptPrintsPersistedGrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	content := `{"7": {"roll_no": 7, "name": "Mia", "marks": {"Art": 40}, "grade": "Z"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	out := runScript(t, store, "2", "7", "3")
	assert.Contains(t, out, "Enter roll number to fetch: Roll No: 7\nName: Mia\nMarks:\n  Art: 40\nGrade: Z\n")
}

func TestPromptRejections(t *testing.T) {
	store := newPromptStore(t)

	out := runScript(t, store,
		"1", "101", "Asha", "Math", "92",
		"1", "101", "Raj", "Math", "50",
		"1", "102", "Lee", "Math", "105",
		"1", "103", "", "Math", "50",
		"2", "999",
		"3",
	)

	assert.Contains(t, out, "Roll number already exists.")
	assert.Contains(t, out, "Invalid marks. Must be between 0 and 100.")
	assert.Contains(t, out, "Invalid entry. Please check the details.")
	assert.Contains(t, out, "Student not found.")
	assert.Equal(t, 1, store.Len())
}

func TestPromptBadInput(t *testing.T) {
	store := newPromptStore(t)

	out := runScript(t, store,
		"9",
		"1", "abc",
		"1", "104", "Mia", "Math", "ninety",
		"2", "xyz",
		"3",
	)

	assert.Contains(t, out, "Invalid choice.")
	assert.Equal(t, 3, strings.Count(out, "Error: "))
	assert.Equal(t, 0, store.Len())
}

func TestPromptStopsAtEndOfInput(t *testing.T) {
	store := newPromptStore(t)

	// Input ends in the middle of adding a student.
	out := runScript(t, store, "1", "101")
	assert.Contains(t, out, "Enter name: ")
	assert.Equal(t, 0, store.Len())
}
