package entities

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

// Employee represents one record in the directory
type Employee struct {
	ID        int    `json:"id" yaml:"id" db:"id"`
	FirstName string `json:"firstName" yaml:"firstName" db:"first_name"`
	LastName  string `json:"lastName" yaml:"lastName" db:"last_name"`
	Title     string `json:"title" yaml:"title" db:"title"`
}

// Document is the single persisted unit holding every employee
type Document struct {
	Employees []Employee `json:"employees" yaml:"employees"`
}

// SeedDocument returns the document written when no storage exists yet
func SeedDocument() *Document {
	return &Document{
		Employees: []Employee{
			{ID: 1, FirstName: "Ada", LastName: "Lovelace", Title: "Engineer"},
			{ID: 2, FirstName: "Grace", LastName: "Hopper", Title: "Rear Admiral"},
		},
	}
}

// NextID returns 1 + the highest id in the document, or 1 when it is empty.
// Ids freed by deleting the highest record are handed out again.
func (d *Document) NextID() int {
	maxID := 0
	for _, e := range d.Employees {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

// IndexOf returns the position of the employee with the given id, or -1
func (d *Document) IndexOf(id int) int {
	for i, e := range d.Employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose employee slice can be mutated independently
func (d *Document) Clone() *Document {
	employees := make([]Employee, len(d.Employees))
	copy(employees, d.Employees)
	return &Document{Employees: employees}
}

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a reference to an employee id that does not exist
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps failures reading, parsing or writing the document
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err as a storage failure of the given operation
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
