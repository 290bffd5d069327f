package access_test

import (
	"testing"

	"github.com/mbolis/keeper-responses/access"
	"github.com/mbolis/keeper-responses/model"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	require.Equal(t, 1, access.Rank(model.RoleEmployee))
	require.Equal(t, 4, access.Rank("Director"))
	require.Equal(t, 99, access.Rank(model.RoleAdmin))
	require.Zero(t, access.Rank("intern"))
}

func TestIsManagerSurvey(t *testing.T) {
	require.True(t, access.IsManagerSurvey("Yönetici Değerlendirme 2024"))
	require.True(t, access.IsManagerSurvey("q3 yönetici formu"))
	require.False(t, access.IsManagerSurvey("Culture harmony"))
}

func TestCanSubmitManagerSurveyFor(t *testing.T) {
	emp := func(role model.Role, dept string) model.Employee {
		return model.Employee{Role: role, Department: dept}
	}

	tests := []struct {
		name   string
		actor  model.Employee
		target model.Employee
		want   bool
	}{
		{"admin always", emp(model.RoleAdmin, "it"), emp(model.RoleEmployee, "sales"), true},
		{"employee rates manager", emp(model.RoleEmployee, "it"), emp(model.RoleManager, "it"), true},
		{"manager rates coordinator", emp(model.RoleManager, ""), emp(model.RoleCoordinator, "it"), true},
		{"employee rates peer", emp(model.RoleEmployee, "it"), emp(model.RoleEmployee, "it"), false},
		{"manager rates employee", emp(model.RoleManager, "it"), emp(model.RoleEmployee, "it"), false},
		{"other department", emp(model.RoleEmployee, "it"), emp(model.RoleManager, "sales"), false},
		{"director has no superior", emp(model.RoleDirector, "it"), emp(model.RoleAdmin, "it"), false},
		{"unknown role", emp("intern", "it"), emp(model.RoleManager, "it"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, access.CanSubmitManagerSurveyFor(tt.actor, tt.target))
		})
	}
}

func TestDepartments(t *testing.T) {
	e := model.Employee{Department: " it ", Departments: []string{"sales", "it", "", "hr"}}
	require.Equal(t, []string{"sales", "it", "hr"}, access.Departments(e))
	require.Empty(t, access.Departments(model.Employee{}))
}

func TestCanViewResult(t *testing.T) {
	target := model.Employee{ID: "e1", Role: model.RoleEmployee, Department: "it"}

	require.True(t, access.CanViewResult(model.Employee{ID: "a", Role: model.RoleAdmin}, target))
	require.True(t, access.CanViewResult(target, target))
	require.True(t, access.CanViewResult(model.Employee{ID: "m", Role: model.RoleManager, Department: "it"}, target))
	require.True(t, access.CanViewResult(model.Employee{ID: "d", Role: model.RoleDirector, Departments: []string{"hr", "it"}}, target))
	require.False(t, access.CanViewResult(model.Employee{ID: "m", Role: model.RoleManager, Department: "sales"}, target))
	require.False(t, access.CanViewResult(model.Employee{ID: "e2", Role: model.RoleEmployee, Department: "it"}, target))
}

func TestIsTeammateSurvey(t *testing.T) {
	require.True(t, access.IsTeammateSurvey("Takım Arkadaşı Değerlendirme"))
	require.False(t, access.IsTeammateSurvey("Yönetici Değerlendirme"))
}

func TestCanViewEmployee(t *testing.T) {
	target := model.Employee{ID: "e1", Role: model.RoleEmployee, Department: "it"}

	require.True(t, access.CanViewEmployee(model.Employee{ID: "a", Role: model.RoleAdmin}, target))
	require.True(t, access.CanViewEmployee(target, target))
	require.True(t, access.CanViewEmployee(model.Employee{ID: "m", Role: model.RoleManager, Department: "it"}, target))
	require.False(t, access.CanViewEmployee(model.Employee{ID: "m", Role: model.RoleManager}, target))
	require.False(t, access.CanViewEmployee(model.Employee{ID: "d", Role: model.RoleDirector, Department: "it"}, target))
	require.False(t, access.CanViewEmployee(model.Employee{ID: "e2", Role: model.RoleEmployee, Department: "it"}, target))
}

func TestEmployeeFilter(t *testing.T) {
	var (
		peer     = model.Employee{ID: "e2", Role: model.RoleEmployee, Department: "it"}
		stranger = model.Employee{ID: "e3", Role: model.RoleEmployee, Department: "sales"}
		boss     = model.Employee{ID: "m2", Role: model.RoleDirector, Department: "sales"}
		helper   = model.Employee{ID: "e4", Role: model.RoleEmployee, Department: "ops", Departments: []string{"it"}}
		all      = []model.Employee{peer, stranger, boss, helper}
	)
	ids := func(keep func(model.Employee) bool) []string {
		var out []string
		for _, e := range all {
			if keep(e) {
				out = append(out, e.ID)
			}
		}
		return out
	}

	tests := []struct {
		name          string
		actor         model.Employee
		forEvaluation bool
		want          []string
		denied        bool
	}{
		{"admin", model.Employee{Role: model.RoleAdmin}, false, []string{"e2", "e3", "m2", "e4"}, false},
		{"manager", model.Employee{Role: model.RoleManager, Department: "it"}, false, []string{"e2"}, false},
		{"manager evaluating", model.Employee{Role: model.RoleManager, Department: "it"}, true, []string{"e2", "e4"}, false},
		{"manager without department", model.Employee{Role: model.RoleManager}, false, nil, true},
		{"employee evaluating", model.Employee{Role: model.RoleEmployee, Department: "it"}, true, []string{"e2", "m2"}, false},
		{"employee", model.Employee{Role: model.RoleEmployee, Department: "it"}, false, nil, true},
		{"coordinator", model.Employee{Role: model.RoleCoordinator, Department: "it"}, true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep, ok := access.EmployeeFilter(tt.actor, tt.forEvaluation)
			require.Equal(t, !tt.denied, ok)
			if ok {
				require.Equal(t, tt.want, ids(keep))
			}
		})
	}
}
