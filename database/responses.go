package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mbolis/keeper-responses/model"
	"github.com/pkg/errors"
)

type responseRow struct {
	ID          string     `db:"id"`
	SurveyID    string     `db:"survey_id"`
	EmployeeID  string     `db:"employee_id"`
	Answers     string     `db:"answers"`
	Status      string     `db:"status"`
	SubmittedAt *time.Time `db:"submitted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (row responseRow) toModel() (model.Response, error) {
	r := model.Response{
		ID:          row.ID,
		Survey:      model.SurveyByID(row.SurveyID),
		Employee:    model.EmployeeByID(row.EmployeeID),
		Status:      model.Status(row.Status),
		SubmittedAt: row.SubmittedAt,
		CreatedAt:   &row.CreatedAt,
		UpdatedAt:   &row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Answers), &r.Answers); err != nil {
		return r, errors.Wrapf(err, "response %s: answers", row.ID)
	}
	if r.Answers == nil {
		r.Answers = []model.Answer{}
	}
	return r, nil
}

type expandedResponseRow struct {
	responseRow
	SurveyTitle   string `db:"survey_title"`
	EmployeeName  string `db:"employee_name"`
	EmployeeEmail string `db:"employee_email"`
}

func (row expandedResponseRow) toModel() (model.Response, error) {
	r, err := row.responseRow.toModel()
	if err != nil {
		return r, err
	}
	r.Survey = model.ExpandedSurvey(model.SurveySummary{
		ID:    row.SurveyID,
		Title: row.SurveyTitle,
	})
	r.Employee = model.ExpandedEmployee(model.EmployeeSummary{
		ID:    row.EmployeeID,
		Name:  row.EmployeeName,
		Email: row.EmployeeEmail,
	})
	return r, nil
}

const selectResponse = `
	SELECT id, survey_id, employee_id, answers, status, submitted_at, created_at, updated_at
	FROM response`

const selectExpandedResponse = `
	SELECT
		r.id, r.survey_id, r.employee_id, r.answers, r.status,
		r.submitted_at, r.created_at, r.updated_at,
		s.title AS survey_title,
		e.name AS employee_name, e.email AS employee_email
	FROM response r
	JOIN survey s ON (s.id = r.survey_id)
	JOIN employee e ON (e.id = r.employee_id)`

// SubmitResponse stores data as the one response of its employee to its
// survey, creating it on first submission. submittedAt follows the status:
// set to now whenever the result is submitted, cleared while draft.
func (s *Storage) SubmitResponse(ctx context.Context, data model.SubmitResponseData, now time.Time) (model.Response, error) {
	answers := data.Answers
	if answers == nil {
		answers = []model.Answer{}
	}
	answersJson, err := json.Marshal(answers)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "encode answers")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	for _, ref := range []struct{ table, id string }{
		{"survey", data.Survey},
		{"employee", data.Employee},
	} {
		var n int
		err = tx.GetContext(ctx, &n, "SELECT COUNT(1) FROM "+ref.table+" WHERE id = ?", ref.id)
		if err != nil {
			return model.Response{}, errors.Wrapf(err, "check %s", ref.table)
		}
		if n == 0 {
			return model.Response{}, errors.Wrapf(ErrNotFound, "%s %s", ref.table, ref.id)
		}
	}

	var row responseRow
	err = tx.GetContext(ctx, &row, selectResponse+`
		WHERE survey_id = ? AND employee_id = ?`,
		data.Survey,
		data.Employee,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		row = responseRow{
			ID:         uuid.NewString(),
			SurveyID:   data.Survey,
			EmployeeID: data.Employee,
			Status:     string(model.StatusDraft),
			CreatedAt:  now,
		}
		if data.Status != "" {
			row.Status = string(data.Status)
		}
	case err != nil:
		return model.Response{}, errors.Wrap(err, "select response")
	default:
		if data.Status != "" {
			if row.Status == string(model.StatusSubmitted) && data.Status == model.StatusDraft {
				return model.Response{}, errors.Wrapf(ErrStatusRegression, "response %s", row.ID)
			}
			row.Status = string(data.Status)
		}
	}

	row.Answers = string(answersJson)
	row.UpdatedAt = now
	row.SubmittedAt = nil
	if row.Status == string(model.StatusSubmitted) {
		row.SubmittedAt = &now
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO response
			(id, survey_id, employee_id, answers, status, submitted_at, created_at, updated_at)
		VALUES
			(:id, :survey_id, :employee_id, :answers, :status, :submitted_at, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			answers = excluded.answers,
			status = excluded.status,
			submitted_at = excluded.submitted_at,
			updated_at = excluded.updated_at`,
		row,
	)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "upsert response")
	}

	if err = tx.Commit(); err != nil {
		return model.Response{}, errors.Wrap(err, "commit")
	}

	return row.toModel()
}

type ResponseFilter struct {
	SubmittedOnly bool
	EmployeeID    string
}

// ListResponses returns responses with survey and employee expanded. Only
// submitted ones come newest submission first; otherwise newest first.
func (s *Storage) ListResponses(ctx context.Context, filter ResponseFilter) ([]model.Response, error) {
	var (
		where []string
		args  []any
		order = "r.created_at DESC"
	)
	if filter.SubmittedOnly {
		where = append(where, "r.status = 'submitted'")
		order = "r.submitted_at DESC"
	}
	if filter.EmployeeID != "" {
		where = append(where, "r.employee_id = ?")
		args = append(args, filter.EmployeeID)
	}

	query := selectExpandedResponse
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + order

	rows := []expandedResponseRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select responses")
	}

	responses := make([]model.Response, 0, len(rows))
	for _, row := range rows {
		r, err := row.toModel()
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, nil
}

func (s *Storage) GetResponse(ctx context.Context, surveyID, employeeID string) (model.Response, error) {
	var row expandedResponseRow
	err := s.db.GetContext(ctx, &row, selectExpandedResponse+`
		WHERE r.survey_id = ? AND r.employee_id = ?`,
		surveyID,
		employeeID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Response{}, errors.Wrapf(ErrNotFound, "response %s/%s", surveyID, employeeID)
	}
	if err != nil {
		return model.Response{}, errors.Wrap(err, "select response")
	}
	return row.toModel()
}
