package student

import "context"

type Repository interface {
	// Add validates and saves a new student record and returns it. Returns
	// db.ErrorInvalidEntry, db.ErrorDuplicateRollNo or db.ErrorInvalidMarks
	// if the record is rejected, nothing is saved in that case.
	Add(rollNo int, name string, marks map[string]float64) (*Student, error)
	// Student returns the record for rollNo. Returns db.ErrorNotFound if no
	// record exists.
	Student(rollNo int) (*Student, error)
	// Shutdown releases the resources held by the repository.
	Shutdown(ctx context.Context) error
}
