package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ukane-philemon/reportcard/internal/db"
	"github.com/ukane-philemon/reportcard/internal/student"
)

const (
	fileIndent = "    "
	filePerm   = 0o644
)

// Check that *Store implements student.Repository.
var _ student.Repository = (*Store)(nil)

// Store keeps every student record in memory and mirrors the whole collection
// to a single JSON file. The file is rewritten in full after each successful
// Add. Store assumes it is the only writer of the file.
type Store struct {
	mtx      sync.RWMutex
	path     string
	students map[int]*student.Student
}

// New creates a Store backed by the file at path and loads the records it
// holds. A missing or malformed file gives an empty store. Other read errors
// are returned.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}

	students, err := load(path)
	if err != nil {
		return nil, err
	}

	return &Store{
		path:     path,
		students: students,
	}, nil
}

// load reads the records persisted at path. On-disk keys are roll numbers
// encoded as strings.
func load(path string) (map[int]*student.Student, error) {
	students := make(map[int]*student.Student)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Data file %s does not exist, starting with an empty store", path)
			return students, nil
		}
		return nil, fmt.Errorf("os.ReadFile error: %w", err)
	}

	persisted, err := decode(data)
	if err != nil {
		log.Printf("Data file %s is malformed (%v), starting with an empty store", path, err)
		return students, nil
	}

	return persisted, nil
}

func decode(data []byte) (map[int]*student.Student, error) {
	var raw map[string]*student.Student
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	students := make(map[int]*student.Student, len(raw))
	for key, record := range raw {
		rollNo, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid roll number key %q", key)
		}

		if record == nil {
			return nil, fmt.Errorf("missing record for roll number %d", rollNo)
		}

		students[rollNo] = record
	}

	return students, nil
}

func encode(students map[int]*student.Student) ([]byte, error) {
	raw := make(map[string]*student.Student, len(students))
	for rollNo, record := range students {
		raw[strconv.Itoa(rollNo)] = record
	}
	return json.MarshalIndent(raw, "", fileIndent)
}

// save replaces the data file with every record held in memory. The records
// are written to a temporary file in the same directory which is then renamed
// over the data file, so a failed write leaves the previous file intact. The
// caller must hold the write lock.
func (s *Store) save() error {
	data, err := encode(s.students)
	if err != nil {
		return fmt.Errorf("json.MarshalIndent error: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp error: %w", err)
	}
	tmpPath := tmp.Name()

	err = writeTemp(tmp, data)
	if err == nil {
		err = os.Rename(tmpPath, s.path)
		if err != nil {
			err = fmt.Errorf("os.Rename error: %w", err)
		}
	}

	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

func writeTemp(tmp *os.File, data []byte) error {
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Write error: %w", err)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Chmod error: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close error: %w", err)
	}

	return nil
}

// Add validates and saves a new student record and returns a copy of it.
// If the file cannot be written the error is returned and the record stays
// in memory, so memory and disk differ until the next successful Add.
// Implements student.Repository.
func (s *Store) Add(rollNo int, name string, marks map[string]float64) (*student.Student, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	record, err := student.Build(rollNo, name, marks, func(rollNo int) (bool, error) {
		_, found := s.students[rollNo]
		return found, nil
	})
	if err != nil {
		return nil, err
	}

	s.students[rollNo] = record
	if err := s.save(); err != nil {
		return nil, err
	}

	return record.Clone(), nil
}

// Student returns a copy of the record for rollNo from memory. The data file
// is not read. Returns db.ErrorNotFound if no record exists.
// Implements student.Repository.
func (s *Store) Student(rollNo int) (*student.Student, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	record, found := s.students[rollNo]
	if !found {
		return nil, fmt.Errorf("%w: roll number %d", db.ErrorNotFound, rollNo)
	}

	return record.Clone(), nil
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.students)
}

// Shutdown implements student.Repository. Every Add is already on disk so
// there is nothing to flush.
func (s *Store) Shutdown(_ context.Context) error {
	return nil
}
