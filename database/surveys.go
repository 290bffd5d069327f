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

type surveyRow struct {
	ID         string         `db:"id"`
	Title      string         `db:"title"`
	Categories string         `db:"categories"`
	Status     string         `db:"status"`
	Questions  string         `db:"questions"`
	CreatedBy  sql.NullString `db:"created_by"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row surveyRow) toModel() (model.Survey, error) {
	s := model.Survey{
		ID:        row.ID,
		Title:     row.Title,
		Status:    model.SurveyStatus(row.Status),
		CreatedBy: row.CreatedBy.String,
		CreatedAt: &row.CreatedAt,
		UpdatedAt: &row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Categories), &s.Categories); err != nil {
		return s, errors.Wrapf(err, "survey %s: categories", row.ID)
	}
	if err := json.Unmarshal([]byte(row.Questions), &s.Questions); err != nil {
		return s, errors.Wrapf(err, "survey %s: questions", row.ID)
	}
	return s, nil
}

const selectSurvey = `
	SELECT id, title, categories, status, questions, created_by, created_at, updated_at
	FROM survey`

// CreateSurvey assigns an id and timestamps to survey and stores it.
func (s *Storage) CreateSurvey(ctx context.Context, survey *model.Survey, now time.Time) error {
	if survey.Status == "" {
		survey.Status = model.SurveyDraft
	}
	if survey.Categories == nil {
		survey.Categories = []string{}
	}
	if survey.Questions == nil {
		survey.Questions = []model.Question{}
	}

	categories, err := json.Marshal(survey.Categories)
	if err != nil {
		return errors.Wrap(err, "encode categories")
	}
	questions, err := json.Marshal(survey.Questions)
	if err != nil {
		return errors.Wrap(err, "encode questions")
	}

	row := surveyRow{
		ID:         uuid.NewString(),
		Title:      survey.Title,
		Categories: string(categories),
		Status:     string(survey.Status),
		Questions:  string(questions),
		CreatedBy:  sql.NullString{String: survey.CreatedBy, Valid: survey.CreatedBy != ""},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO survey
			(id, title, categories, status, questions, created_by, created_at, updated_at)
		VALUES
			(:id, :title, :categories, :status, :questions, :created_by, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return errors.Wrap(err, "insert survey")
	}

	survey.ID = row.ID
	survey.CreatedAt = &row.CreatedAt
	survey.UpdatedAt = &row.UpdatedAt
	return nil
}

func (s *Storage) GetSurvey(ctx context.Context, id string) (model.Survey, error) {
	var row surveyRow
	err := s.db.GetContext(ctx, &row, selectSurvey+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, errors.Wrapf(ErrNotFound, "survey %s", id)
	}
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "select survey")
	}
	return row.toModel()
}

func (s *Storage) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	rows := []surveyRow{}
	if err := s.db.SelectContext(ctx, &rows, selectSurvey+" ORDER BY title ASC"); err != nil {
		return nil, errors.Wrap(err, "select surveys")
	}

	surveys := make([]model.Survey, 0, len(rows))
	for _, row := range rows {
		survey, err := row.toModel()
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return surveys, nil
}

// UpdateSurvey replaces title, categories and questions of the stored survey
// with the same id. An empty status keeps the stored one. Stored responses
// are kept: answers to removed questions no longer count in scoring.
func (s *Storage) UpdateSurvey(ctx context.Context, survey *model.Survey, now time.Time) error {
	categories, err := json.Marshal(nonNil(survey.Categories))
	if err != nil {
		return errors.Wrap(err, "encode categories")
	}
	questions, err := json.Marshal(nonNil(survey.Questions))
	if err != nil {
		return errors.Wrap(err, "encode questions")
	}

	res, err := s.db.NamedExecContext(ctx, `
		UPDATE survey SET
			title = :title,
			categories = :categories,
			status = COALESCE(NULLIF(:status, ''), status),
			questions = :questions,
			updated_at = :updated_at
		WHERE id = :id`,
		surveyRow{
			ID:         survey.ID,
			Title:      survey.Title,
			Categories: string(categories),
			Status:     string(survey.Status),
			Questions:  string(questions),
			UpdatedAt:  now,
		},
	)
	if err != nil {
		return errors.Wrap(err, "update survey")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "update survey")
	} else if n == 0 {
		return errors.Wrapf(ErrNotFound, "survey %s", survey.ID)
	}

	stored, err := s.GetSurvey(ctx, survey.ID)
	if err != nil {
		return err
	}
	*survey = stored
	return nil
}

// DeleteSurvey removes a survey along with its responses.
func (s *Storage) DeleteSurvey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM survey WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete survey")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete survey")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "survey %s", id)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
