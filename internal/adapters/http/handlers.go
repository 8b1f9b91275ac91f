package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/infrastructure/logger"
	"github.com/employeedir/core/internal/ports"
)

// maxBodyBytes bounds request payloads; an employee record is tiny
const maxBodyBytes = 64 << 10

// EmployeeHandler handles employee-related requests
type EmployeeHandler struct {
	employeeService ports.EmployeeService
	logger          *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employeeService ports.EmployeeService, logger *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		logger:          logger,
	}
}

// ListEmployees godoc
// @Summary List employees
// @Description Return every employee in insertion order
// @Tags employees
// @Produce json
// @Success 200 {array} entities.Employee
// @Failure 500 {object} ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) ListEmployees(c echo.Context) error {
	employees, err := h.employeeService.ListAll(c.Request().Context())
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, employees)
}

// CreateEmployee godoc
// @Summary Create an employee
// @Description Create an employee; the id is assigned by the store
// @Tags employees
// @Accept json
// @Produce json
// @Param request body ports.EmployeeRequest true "Employee data"
// @Success 201 {object} entities.Employee
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	req, err := decodeEmployeeRequest(c)
	if err != nil {
		return h.mapError(err)
	}

	employee, err := h.employeeService.Create(c.Request().Context(), req)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee godoc
// @Summary Replace an employee
// @Description Replace every field of an employee; an omitted title becomes empty
// @Tags employees
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param request body ports.EmployeeRequest true "Employee data"
// @Success 200 {object} entities.Employee
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c echo.Context) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return h.mapError(err)
	}

	req, err := decodeEmployeeRequest(c)
	if err != nil {
		return h.mapError(err)
	}

	employee, err := h.employeeService.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, employee)
}

// DeleteEmployee godoc
// @Summary Delete an employee
// @Tags employees
// @Param id path int true "Employee ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c echo.Context) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return h.mapError(err)
	}

	if err := h.employeeService.Delete(c.Request().Context(), id); err != nil {
		return h.mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// mapError turns service errors into HTTP errors. Storage failures keep their
// detail only as the internal error so it is logged but never sent.
func (h *EmployeeHandler) mapError(err error) error {
	var verr *entities.ValidationError
	var nf *entities.NotFoundError
	var he *echo.HTTPError

	switch {
	case errors.As(err, &he):
		return he
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.As(err, &nf):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, ServerErrorMessage).SetInternal(err)
	}
}

func parseEmployeeID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, entities.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// decodeEmployeeRequest decodes the body strictly. The body must hold exactly
// one JSON object with no unknown fields, no wrong types and nothing after it.
func decodeEmployeeRequest(c echo.Context) (ports.EmployeeRequest, error) {
	var req ports.EmployeeRequest

	data, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body too large (limit %d bytes)", tooLarge.Limit))
		}
		return req, entities.NewValidationError("", "failed to read request body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return req, entities.NewValidationError("", "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return req, entities.NewValidationError("", fmt.Sprintf("invalid request body: %v", err))
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return req, entities.NewValidationError("", "request body must contain a single JSON object")
	}
	return req, nil
}

// Request/Response types

// ServerErrorMessage is the only detail a client sees for unexpected failures
const ServerErrorMessage = "Server error"

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}
