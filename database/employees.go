package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mbolis/keeper-responses/model"
	"github.com/pkg/errors"
)

type employeeRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Role         string    `db:"role"`
	Department   string    `db:"department"`
	Departments  string    `db:"departments"`
	KPI          float64   `db:"kpi"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row employeeRow) toModel() (model.Employee, error) {
	e := model.Employee{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Role:       model.Role(row.Role),
		Department: row.Department,
		KPI:        row.KPI,
		CreatedAt:  &row.CreatedAt,
		UpdatedAt:  &row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Departments), &e.Departments); err != nil {
		return e, errors.Wrapf(err, "employee %s: departments", row.ID)
	}
	return e, nil
}

const selectEmployee = `
	SELECT id, name, email, password_hash, role, department, departments, kpi, created_at, updated_at
	FROM employee`

// CreateEmployee stores employee with an already hashed password.
func (s *Storage) CreateEmployee(ctx context.Context, employee *model.Employee, passwordHash []byte, now time.Time) error {
	if employee.Role == "" {
		employee.Role = model.RoleManager
	}
	if employee.Departments == nil {
		employee.Departments = []string{}
	}
	departments, err := json.Marshal(employee.Departments)
	if err != nil {
		return errors.Wrap(err, "encode departments")
	}

	row := employeeRow{
		ID:           uuid.NewString(),
		Name:         employee.Name,
		Email:        employee.Email,
		PasswordHash: passwordHash,
		Role:         string(employee.Role),
		Department:   employee.Department,
		Departments:  string(departments),
		KPI:          employee.KPI,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO employee
			(id, name, email, password_hash, role, department, departments, kpi, created_at, updated_at)
		VALUES
			(:id, :name, :email, :password_hash, :role, :department, :departments, :kpi, :created_at, :updated_at)`,
		row,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(ErrDuplicate, "employee %s", employee.Email)
	}
	if err != nil {
		return errors.Wrap(err, "insert employee")
	}

	employee.ID = row.ID
	employee.CreatedAt = &row.CreatedAt
	employee.UpdatedAt = &row.UpdatedAt
	return nil
}

func (s *Storage) getEmployee(ctx context.Context, column, value string) (employeeRow, error) {
	var row employeeRow
	err := s.db.GetContext(ctx, &row, selectEmployee+" WHERE "+column+" = ?", value)
	if errors.Is(err, sql.ErrNoRows) {
		return row, errors.Wrapf(ErrNotFound, "employee %s", value)
	}
	if err != nil {
		return row, errors.Wrap(err, "select employee")
	}
	return row, nil
}

func (s *Storage) GetEmployee(ctx context.Context, id string) (model.Employee, error) {
	row, err := s.getEmployee(ctx, "id", id)
	if err != nil {
		return model.Employee{}, err
	}
	return row.toModel()
}

func (s *Storage) GetEmployeeByEmail(ctx context.Context, email string) (model.Employee, error) {
	row, err := s.getEmployee(ctx, "email", email)
	if err != nil {
		return model.Employee{}, err
	}
	return row.toModel()
}

func (s *Storage) GetPasswordHash(ctx context.Context, email string) ([]byte, error) {
	row, err := s.getEmployee(ctx, "email", email)
	if err != nil {
		return nil, err
	}
	return row.PasswordHash, nil
}

func (s *Storage) SetEmployeeKPI(ctx context.Context, id string, kpi float64, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE employee SET kpi = ?, updated_at = ?
		WHERE id = ?`,
		kpi,
		now,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "update employee kpi")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update employee kpi")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "employee %s", id)
	}
	return nil
}

func (s *Storage) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows := []employeeRow{}
	if err := s.db.SelectContext(ctx, &rows, selectEmployee+" ORDER BY name ASC"); err != nil {
		return nil, errors.Wrap(err, "select employees")
	}

	employees := make([]model.Employee, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// UpdateEmployee overwrites the profile of the employee with the same id.
// Password and creation time are left untouched.
func (s *Storage) UpdateEmployee(ctx context.Context, employee *model.Employee, now time.Time) error {
	departments, err := json.Marshal(nonNil(employee.Departments))
	if err != nil {
		return errors.Wrap(err, "encode departments")
	}

	res, err := s.db.NamedExecContext(ctx, `
		UPDATE employee SET
			name = :name,
			email = :email,
			role = :role,
			department = :department,
			departments = :departments,
			kpi = :kpi,
			updated_at = :updated_at
		WHERE id = :id`,
		employeeRow{
			ID:          employee.ID,
			Name:        employee.Name,
			Email:       employee.Email,
			Role:        string(employee.Role),
			Department:  employee.Department,
			Departments: string(departments),
			KPI:         employee.KPI,
			UpdatedAt:   now,
		},
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(ErrDuplicate, "employee %s", employee.Email)
	}
	if err != nil {
		return errors.Wrap(err, "update employee")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "update employee")
	} else if n == 0 {
		return errors.Wrapf(ErrNotFound, "employee %s", employee.ID)
	}

	stored, err := s.GetEmployee(ctx, employee.ID)
	if err != nil {
		return err
	}
	*employee = stored
	return nil
}

// DeleteEmployee removes an employee, their responses and their refresh tokens.
func (s *Storage) DeleteEmployee(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM token
		WHERE username = (SELECT email FROM employee WHERE id = ?)`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete tokens")
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM employee WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete employee")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete employee")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "employee %s", id)
	}

	return errors.Wrap(tx.Commit(), "commit")
}
