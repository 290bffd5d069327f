package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEmployees(t *testing.T) {
	store := openStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	e := model.Employee{Name: "Ada", Email: "ada@example.com", Departments: []string{"it", "hr"}}
	require.NoError(t, store.CreateEmployee(ctx, &e, []byte("hash"), now))
	require.NotEmpty(t, e.ID)
	require.Equal(t, model.RoleManager, e.Role)

	got, err := store.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", got.Name)
	require.Equal(t, []string{"it", "hr"}, got.Departments)

	got, err = store.GetEmployeeByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)

	hash, err := store.GetPasswordHash(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, []byte("hash"), hash)

	require.NoError(t, store.SetEmployeeKPI(ctx, e.ID, 72.5, now))
	got, err = store.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 72.5, got.KPI)

	require.True(t, errors.Is(store.SetEmployeeKPI(ctx, "nope", 1, now), database.ErrNotFound))
	_, err = store.GetEmployee(ctx, "nope")
	require.True(t, errors.Is(err, database.ErrNotFound))

	dup := model.Employee{Name: "Ada 2", Email: "ada@example.com"}
	require.True(t, errors.Is(store.CreateEmployee(ctx, &dup, []byte("hash"), now), database.ErrDuplicate))
}

func TestSurveys(t *testing.T) {
	store := openStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s := model.Survey{
		Title:      "Yönetici değerlendirme",
		Categories: []string{"leadership"},
		Questions:  []model.Question{{ID: "q1", Text: "Executive observation", Options: []string{"1", "5"}}},
	}
	require.NoError(t, store.CreateSurvey(ctx, &s, now))
	require.NotEmpty(t, s.ID)
	require.Equal(t, model.SurveyDraft, s.Status)

	got, err := store.GetSurvey(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.Title, got.Title)
	require.Equal(t, s.Questions, got.Questions)
	require.Equal(t, []string{"leadership"}, got.Categories)

	other := model.Survey{Title: "Culture"}
	require.NoError(t, store.CreateSurvey(ctx, &other, now))

	all, err := store.ListSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Culture", all[0].Title)

	_, err = store.GetSurvey(ctx, "nope")
	require.True(t, errors.Is(err, database.ErrNotFound))
}

func TestTokens(t *testing.T) {
	store := openStorage(t)
	ctx := context.Background()
	expiration := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, store.StoreToken(ctx, "ada@example.com", "t1", "r1", expiration))

	got, err := store.ConsumeToken(ctx, "ada@example.com", "t1", "r1")
	require.NoError(t, err)
	require.True(t, expiration.Equal(got))

	_, err = store.ConsumeToken(ctx, "ada@example.com", "t1", "r1")
	require.True(t, errors.Is(err, database.ErrNotFound))
}

func TestUpdateAndDeleteSurvey(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)
	ctx := context.Background()
	later := time.Now().UTC().Add(time.Hour)

	_, err := store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID}, later)
	require.NoError(t, err)

	update := model.Survey{
		ID:        survey.ID,
		Title:     "Culture check v2",
		Questions: []model.Question{{ID: "q1", Text: "Fits the culture"}, {ID: "q2", Text: "Team effect"}},
	}
	require.NoError(t, store.UpdateSurvey(ctx, &update, later))
	require.Equal(t, "Culture check v2", update.Title)
	require.Equal(t, model.SurveyActive, update.Status)
	require.Len(t, update.Questions, 2)
	require.Equal(t, []string{}, update.Categories)
	require.True(t, later.Equal(*update.UpdatedAt))
	require.True(t, survey.CreatedAt.Equal(*update.CreatedAt))

	missing := model.Survey{ID: "nope", Title: "x"}
	require.True(t, errors.Is(store.UpdateSurvey(ctx, &missing, later), database.ErrNotFound))

	require.NoError(t, store.DeleteSurvey(ctx, survey.ID))
	_, err = store.GetSurvey(ctx, survey.ID)
	require.True(t, errors.Is(err, database.ErrNotFound))

	responses, err := store.ListResponses(ctx, database.ResponseFilter{})
	require.NoError(t, err)
	require.Empty(t, responses)

	require.True(t, errors.Is(store.DeleteSurvey(ctx, survey.ID), database.ErrNotFound))
}

func TestUpdateAndDeleteEmployee(t *testing.T) {
	store := openStorage(t)
	survey, ada := seed(t, store)
	ctx := context.Background()
	now := time.Now().UTC()

	bob := model.Employee{Name: "Bob", Email: "bob@example.com", Role: model.RoleEmployee}
	require.NoError(t, store.CreateEmployee(ctx, &bob, []byte("hash"), now))

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Ada", all[0].Name)
	require.Equal(t, "Bob", all[1].Name)

	bob.Role = model.RoleCoordinator
	bob.Departments = []string{"ops", "it"}
	bob.KPI = 64
	require.NoError(t, store.UpdateEmployee(ctx, &bob, now))
	require.Equal(t, model.RoleCoordinator, bob.Role)
	require.Equal(t, []string{"ops", "it"}, bob.Departments)

	hash, err := store.GetPasswordHash(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, []byte("hash"), hash)

	bob.Email = ada.Email
	require.True(t, errors.Is(store.UpdateEmployee(ctx, &bob, now), database.ErrDuplicate))

	ghost := model.Employee{ID: "nope", Name: "Ghost", Email: "ghost@example.com"}
	require.True(t, errors.Is(store.UpdateEmployee(ctx, &ghost, now), database.ErrNotFound))

	_, err = store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: ada.ID}, now)
	require.NoError(t, err)
	require.NoError(t, store.StoreToken(ctx, ada.Email, "t1", "r1", now.Add(time.Hour)))

	require.NoError(t, store.DeleteEmployee(ctx, ada.ID))
	_, err = store.GetEmployee(ctx, ada.ID)
	require.True(t, errors.Is(err, database.ErrNotFound))
	_, err = store.ConsumeToken(ctx, ada.Email, "t1", "r1")
	require.True(t, errors.Is(err, database.ErrNotFound))

	responses, err := store.ListResponses(ctx, database.ResponseFilter{})
	require.NoError(t, err)
	require.Empty(t, responses)

	require.True(t, errors.Is(store.DeleteEmployee(ctx, ada.ID), database.ErrNotFound))
}
