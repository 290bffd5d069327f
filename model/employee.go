package model

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDirector    Role = "director"
	RoleCoordinator Role = "coordinator"
	RoleManager     Role = "manager"
	RoleEmployee    Role = "employee"
)

type Employee struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	Role        Role       `json:"role" validate:"omitempty,oneof=admin director coordinator manager employee"`
	Department  string     `json:"department,omitempty"`
	Departments []string   `json:"departments,omitempty"`
	KPI         float64    `json:"kpi" validate:"gte=0"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (e Employee) Summary() EmployeeSummary {
	return EmployeeSummary{ID: e.ID, Name: e.Name, Email: e.Email}
}

func (e Employee) Validate() error {
	return validate.Struct(e)
}
