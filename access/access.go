// Package access holds the role hierarchy rules that decide who may submit
// or read which responses.
package access

import (
	"strings"

	"github.com/mbolis/keeper-responses/model"
)

var ranks = map[model.Role]int{
	model.RoleEmployee:    1,
	model.RoleManager:     2,
	model.RoleCoordinator: 3,
	model.RoleDirector:    4,
	model.RoleAdmin:       99,
}

// Rank of a role in the hierarchy, 0 when unknown. Higher is more senior.
func Rank(role model.Role) int {
	return ranks[model.Role(strings.ToLower(string(role)))]
}

// IsManagerSurvey tells manager evaluation forms apart by title.
func IsManagerSurvey(title string) bool {
	return strings.Contains(strings.ToLower(title), "yönetici")
}

// IsTeammateSurvey tells peer evaluation forms apart by title.
func IsTeammateSurvey(title string) bool {
	return strings.Contains(strings.ToLower(title), "takım arkadaşı")
}

// CanSubmitManagerSurveyFor reports whether actor may fill a manager
// evaluation about target. Evaluations only go upwards, within a department.
func CanSubmitManagerSurveyFor(actor, target model.Employee) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}

	actorRank, targetRank := Rank(actor.Role), Rank(target.Role)
	if actorRank == 0 || targetRank == 0 {
		return false
	}

	if actor.Department != "" && target.Department != "" && actor.Department != target.Department {
		return false
	}

	// nobody above a director but admins
	if actorRank == Rank(model.RoleDirector) {
		return false
	}

	return targetRank > actorRank
}

// Departments merges the single and multi department fields of e.
func Departments(e model.Employee) []string {
	all := make([]string, 0, len(e.Departments)+1)
	seen := make(map[string]bool, len(e.Departments)+1)
	for _, d := range append(append([]string{}, e.Departments...), e.Department) {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		all = append(all, d)
	}
	return all
}

// CanViewResult reports whether actor may see the results of employee.
func CanViewResult(actor, employee model.Employee) bool {
	if actor.Role == model.RoleAdmin || actor.ID == employee.ID {
		return true
	}
	if Rank(actor.Role) < Rank(model.RoleManager) {
		return false
	}

	target := Departments(employee)
	for _, d := range Departments(actor) {
		for _, t := range target {
			if d == t {
				return true
			}
		}
	}
	return false
}

// CanViewEmployee reports whether actor may read the profile of e: admins
// read all, managers their primary department, everybody else themselves.
func CanViewEmployee(actor, e model.Employee) bool {
	switch {
	case actor.Role == model.RoleAdmin, actor.ID == e.ID:
		return true
	case actor.Role == model.RoleManager:
		return actor.Department != "" && e.Department == actor.Department
	}
	return false
}

// EmployeeFilter returns which employees actor may list, or false when
// actor may not list employees at all. With forEvaluation the list holds
// the people actor may fill surveys about: for a manager anybody in the
// department, for an employee their peers and every possible superior.
func EmployeeFilter(actor model.Employee, forEvaluation bool) (func(model.Employee) bool, bool) {
	switch actor.Role {
	case model.RoleAdmin:
		return func(model.Employee) bool { return true }, true

	case model.RoleManager:
		dept := actor.Department
		if dept == "" {
			return nil, false
		}
		if !forEvaluation {
			return func(e model.Employee) bool { return e.Department == dept }, true
		}
		return func(e model.Employee) bool {
			for _, d := range Departments(e) {
				if d == dept {
					return true
				}
			}
			return false
		}, true

	case model.RoleEmployee:
		if !forEvaluation {
			return nil, false
		}
		return func(e model.Employee) bool {
			if Rank(e.Role) >= Rank(model.RoleManager) {
				return true
			}
			return e.Role == model.RoleEmployee && e.Department == actor.Department
		}, true
	}
	return nil, false
}
