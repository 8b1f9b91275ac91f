package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/infrastructure/logger"
	"github.com/employeedir/core/internal/ports"
)

// EmployeeService applies the directory rules on top of a DocumentStore.
// Mutations hold the write lock across the whole load, mutate, save sequence.
type EmployeeService struct {
	store    ports.DocumentStore
	validate *validator.Validate
	logger   *logger.Logger
	mu       sync.RWMutex
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(store ports.DocumentStore, logger *logger.Logger) *EmployeeService {
	return &EmployeeService{
		store:    store,
		validate: validator.New(),
		logger:   logger.WithComponent("employee_service"),
	}
}

// ListAll returns every employee in insertion order
func (s *EmployeeService) ListAll(ctx context.Context) ([]entities.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	return doc.Clone().Employees, nil
}

// Create appends a new employee with id max+1
func (s *EmployeeService) Create(ctx context.Context, req ports.EmployeeRequest) (*entities.Employee, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	employee := entities.Employee{
		ID:        doc.NextID(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Title:     req.Title,
	}
	doc.Employees = append(doc.Employees, employee)

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	s.logger.Infow("Employee created", "employee_id", employee.ID)
	return &employee, nil
}

// Update replaces the employee with the given id in place. The title is
// replaced too, so an omitted title clears the previous one.
func (s *EmployeeService) Update(ctx context.Context, id int, req ports.EmployeeRequest) (*entities.Employee, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}

	idx := doc.IndexOf(id)
	if idx == -1 {
		return nil, &entities.NotFoundError{ID: id}
	}

	employee := entities.Employee{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Title:     req.Title,
	}
	doc.Employees[idx] = employee

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}

	s.logger.Infow("Employee updated", "employee_id", id)
	return &employee, nil
}

// Delete removes the employee with the given id
func (s *EmployeeService) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}

	idx := doc.IndexOf(id)
	if idx == -1 {
		return &entities.NotFoundError{ID: id}
	}

	doc.Employees = append(doc.Employees[:idx], doc.Employees[idx+1:]...)

	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}

	s.logger.Infow("Employee deleted", "employee_id", id)
	return nil
}

func (s *EmployeeService) validateRequest(req ports.EmployeeRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return entities.NewValidationError("", "firstName and lastName are required")
	}
	return entities.NewValidationError("", err.Error())
}
