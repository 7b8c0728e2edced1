package student

import (
	"fmt"
	"math"

	"github.com/ukane-philemon/reportcard/internal/db"
)

const (
	// MinMark and MaxMark bound every subject mark (inclusive).
	MinMark = 0
	MaxMark = 100
)

// Letter grades, best first.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"
)

// gradeThresholds is checked in order, the first threshold the average reaches
// wins. Anything below the last threshold is GradeF.
var gradeThresholds = []struct {
	minAverage float64
	grade      string
}{
	{90, GradeA},
	{80, GradeB},
	{70, GradeC},
	{60, GradeD},
}

// Student is one student's record and also its persisted representation.
type Student struct {
	RollNo int                `json:"roll_no"`
	Name   string             `json:"name"`
	Marks  map[string]float64 `json:"marks"`
	Grade  string             `json:"grade"`
}

// Marks is a non-empty map of subject to mark where every mark is a finite
// number in [MinMark, MaxMark]. Use NewMarks to build one.
type Marks map[string]float64

// NewMarks validates marks and returns a copy of it as Marks. Returns
// db.ErrorInvalidMarks if marks is empty or any mark is not a finite number
// within range.
func NewMarks(marks map[string]float64) (Marks, error) {
	if len(marks) == 0 {
		return nil, fmt.Errorf("%w: at least one subject is required", db.ErrorInvalidMarks)
	}

	validMarks := make(Marks, len(marks))
	for subject, mark := range marks {
		if math.IsNaN(mark) || math.IsInf(mark, 0) {
			return nil, fmt.Errorf("%w: subject %s has a non-numeric mark", db.ErrorInvalidMarks, subject)
		}

		if mark < MinMark || mark > MaxMark {
			return nil, fmt.Errorf("%w: subject %s has an invalid mark %v", db.ErrorInvalidMarks, subject, mark)
		}

		validMarks[subject] = mark
	}

	return validMarks, nil
}

// Average returns the arithmetic mean of the marks. An empty Marks (only
// possible when NewMarks was bypassed) averages to 0.
func (m Marks) Average() float64 {
	if len(m) == 0 {
		return 0
	}

	var total float64
	for _, mark := range m {
		total += mark
	}
	return total / float64(len(m))
}

// GradeFor returns the letter grade for a marks average.
func GradeFor(average float64) string {
	for _, threshold := range gradeThresholds {
		if average >= threshold.minAverage {
			return threshold.grade
		}
	}
	return GradeF
}

// New creates a student record and derives its grade from marks. The grade is
// never recomputed afterwards.
func New(rollNo int, name string, marks Marks) *Student {
	return &Student{
		RollNo: rollNo,
		Name:   name,
		Marks:  map[string]float64(marks),
		Grade:  GradeFor(marks.Average()),
	}
}

// Clone returns a deep copy of s.
func (s *Student) Clone() *Student {
	marks := make(map[string]float64, len(s.Marks))
	for subject, mark := range s.Marks {
		marks[subject] = mark
	}

	return &Student{
		RollNo: s.RollNo,
		Name:   s.Name,
		Marks:  marks,
		Grade:  s.Grade,
	}
}

// Build runs the checks every repository applies before saving a new record
// and returns the record to save. The checks run in order and stop at the
// first failure:
//  1. name must not be empty and marks must not be nil (db.ErrorInvalidEntry).
//  2. rollNo must not exist yet (db.ErrorDuplicateRollNo).
//  3. marks must be valid (db.ErrorInvalidMarks).
//
// exists reports whether rollNo is already taken; its errors are returned
// as-is.
func Build(rollNo int, name string, marks map[string]float64, exists func(rollNo int) (bool, error)) (*Student, error) {
	if name == "" || marks == nil {
		return nil, fmt.Errorf("%w: name and marks are required", db.ErrorInvalidEntry)
	}

	found, err := exists(rollNo)
	if err != nil {
		return nil, err
	}

	if found {
		return nil, fmt.Errorf("%w: %d", db.ErrorDuplicateRollNo, rollNo)
	}

	validMarks, err := NewMarks(marks)
	if err != nil {
		return nil, err
	}

	return New(rollNo, name, validMarks), nil
}
