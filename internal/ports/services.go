package ports

import (
	"context"
	"time"

	"github.com/employeedir/core/internal/domain/entities"
)

// EmployeeService interface for employee record operations
type EmployeeService interface {
	ListAll(ctx context.Context) ([]entities.Employee, error)
	Create(ctx context.Context, req EmployeeRequest) (*entities.Employee, error)
	Update(ctx context.Context, id int, req EmployeeRequest) (*entities.Employee, error)
	Delete(ctx context.Context, id int) error
}

// TokenService interface for issuing and checking write tokens
type TokenService interface {
	Issue(subject string) (string, time.Time, error)
	Validate(tokenString string) (*Claims, error)
}

// EmployeeRequest is the payload for both create and update.
// Title is optional and defaults to the empty string.
type EmployeeRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Title     string `json:"title"`
}

// Claims carries the identity extracted from a valid token
type Claims struct {
	Subject string
	TokenID string
}
