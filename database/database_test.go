package database_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mbolis/keeper-responses/config"
	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func openStorage(t *testing.T) *database.Storage {
	t.Helper()
	db, err := database.Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewStorage(db)
}

func seed(t *testing.T, store *database.Storage) (model.Survey, model.Employee) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	employee := model.Employee{Name: "Ada", Email: "ada@example.com", Role: model.RoleEmployee, Department: "it"}
	require.NoError(t, store.CreateEmployee(ctx, &employee, []byte("hash"), now))

	survey := model.Survey{
		Title:     "Culture check",
		Status:    model.SurveyActive,
		Questions: []model.Question{{ID: "q1", Text: "Fits the culture", Type: "scale"}},
	}
	require.NoError(t, store.CreateSurvey(ctx, &survey, now))

	return survey, employee
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	for i := 0; i < 2; i++ {
		db, err := database.Open(config.Config{DBUrl: path})
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
}

func TestSubmitResponseDraftThenSubmitted(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	draft, err := store.SubmitResponse(ctx, model.SubmitResponseData{
		Survey:   survey.ID,
		Employee: employee.ID,
		Answers:  []model.Answer{{QuestionID: "q1", Value: json.RawMessage(`"yes"`)}},
		Status:   model.StatusDraft,
	}, created)
	require.NoError(t, err)

	require.NotEmpty(t, draft.ID)
	require.Equal(t, survey.ID, draft.Survey.ID())
	require.Equal(t, employee.ID, draft.Employee.ID())
	require.Equal(t, model.StatusDraft, draft.Status)
	require.Nil(t, draft.SubmittedAt)
	require.True(t, created.Equal(*draft.CreatedAt))
	require.True(t, created.Equal(*draft.UpdatedAt))
	require.NoError(t, draft.CheckLifecycle())

	submittedAt := created.Add(time.Hour)
	submitted, err := store.SubmitResponse(ctx, model.SubmitResponseData{
		Survey:   survey.ID,
		Employee: employee.ID,
		Answers:  []model.Answer{{QuestionID: "q1", Value: json.RawMessage(`4`)}},
		Status:   model.StatusSubmitted,
	}, submittedAt)
	require.NoError(t, err)

	require.Equal(t, draft.ID, submitted.ID)
	require.NotNil(t, submitted.SubmittedAt)
	require.True(t, submittedAt.Equal(*submitted.SubmittedAt))
	require.NoError(t, submitted.CheckLifecycle())

	stored, err := store.GetResponse(ctx, survey.ID, employee.ID)
	require.NoError(t, err)
	require.Equal(t, draft.ID, stored.ID)
	require.True(t, created.Equal(*stored.CreatedAt))
	require.True(t, submittedAt.Equal(*stored.UpdatedAt))
	require.JSONEq(t, `4`, string(stored.Answers[0].Value))

	surveyRef, ok := stored.Survey.Expanded()
	require.True(t, ok)
	require.Equal(t, "Culture check", surveyRef.Title)
	employeeRef, ok := stored.Employee.Expanded()
	require.True(t, ok)
	require.Equal(t, "ada@example.com", employeeRef.Email)
}

func TestSubmitResponseDefaultsAndKeepsStatus(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)
	ctx := context.Background()
	now := time.Now().UTC()

	r, err := store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusDraft, r.Status)
	require.NotNil(t, r.Answers)
	require.Empty(t, r.Answers)

	_, err = store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID, Status: model.StatusSubmitted}, now)
	require.NoError(t, err)

	r, err = store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID}, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, model.StatusSubmitted, r.Status)
	require.NoError(t, r.CheckLifecycle())
}

func TestSubmitResponseCreatedAsSubmitted(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)

	r, err := store.SubmitResponse(context.Background(), model.SubmitResponseData{
		Survey:   survey.ID,
		Employee: employee.ID,
		Status:   model.StatusSubmitted,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, r.SubmittedAt)
}

func TestSubmitResponseRejectsRegression(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID, Status: model.StatusSubmitted}, now)
	require.NoError(t, err)

	_, err = store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID, Status: model.StatusDraft}, now)
	require.True(t, errors.Is(err, database.ErrStatusRegression))
}

func TestSubmitResponseUnknownReferences(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := store.SubmitResponse(ctx, model.SubmitResponseData{Survey: "nope", Employee: employee.ID}, now)
	require.True(t, errors.Is(err, database.ErrNotFound))
	require.Contains(t, err.Error(), "survey nope")

	_, err = store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: "nope"}, now)
	require.True(t, errors.Is(err, database.ErrNotFound))
	require.Contains(t, err.Error(), "employee nope")
}

func TestListResponses(t *testing.T) {
	store := openStorage(t)
	survey, employee := seed(t, store)
	ctx := context.Background()
	now := time.Now().UTC()

	other := model.Employee{Name: "Bob", Email: "bob@example.com", Role: model.RoleManager}
	require.NoError(t, store.CreateEmployee(ctx, &other, []byte("hash"), now))

	_, err := store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: employee.ID, Status: model.StatusSubmitted}, now)
	require.NoError(t, err)
	_, err = store.SubmitResponse(ctx, model.SubmitResponseData{Survey: survey.ID, Employee: other.ID}, now.Add(time.Second))
	require.NoError(t, err)

	all, err := store.ListResponses(ctx, database.ResponseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	first, ok := all[0].Employee.Expanded()
	require.True(t, ok)
	require.Equal(t, "Bob", first.Name)

	submitted, err := store.ListResponses(ctx, database.ResponseFilter{SubmittedOnly: true})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	require.Equal(t, employee.ID, submitted[0].Employee.ID())

	bobs, err := store.ListResponses(ctx, database.ResponseFilter{EmployeeID: other.ID})
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	require.Equal(t, other.ID, bobs[0].Employee.ID())

	none, err := store.ListResponses(ctx, database.ResponseFilter{SubmittedOnly: true, EmployeeID: other.ID})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetResponseNotFound(t *testing.T) {
	store := openStorage(t)
	_, err := store.GetResponse(context.Background(), "s", "e")
	require.True(t, errors.Is(err, database.ErrNotFound))
}
