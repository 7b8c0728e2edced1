package db

import (
	"errors"
	"fmt"
)

// ErrorInvalidRequest is a user facing error returned by repositories.
var ErrorInvalidRequest = errors.New("invalid request")

// Rejection reasons for student records. All of them wrap ErrorInvalidRequest.
var (
	ErrorInvalidEntry    = fmt.Errorf("%w: invalid entry", ErrorInvalidRequest)
	ErrorDuplicateRollNo = fmt.Errorf("%w: roll number already exists", ErrorInvalidRequest)
	ErrorInvalidMarks    = fmt.Errorf("%w: marks must be between 0 and 100", ErrorInvalidRequest)
	ErrorNotFound        = fmt.Errorf("%w: student not found", ErrorInvalidRequest)
)
