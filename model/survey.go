package model

import (
	"fmt"
	"time"
)

type SurveyStatus string

const (
	SurveyActive   SurveyStatus = "active"
	SurveyInactive SurveyStatus = "inactive"
	SurveyDraft    SurveyStatus = "draft"
)

type Survey struct {
	ID         string       `json:"id"`
	Title      string       `json:"title" validate:"required"`
	Categories []string     `json:"categories"`
	Status     SurveyStatus `json:"status" validate:"omitempty,oneof=active inactive draft"`
	Questions  []Question   `json:"questions" validate:"dive"`
	CreatedBy  string       `json:"createdBy,omitempty"`
	CreatedAt  *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time   `json:"updatedAt,omitempty"`
}

// Question type is free-form ("kpi", "scale", ...); Category names the
// scoring group the question belongs to, if any.
type Question struct {
	ID       string   `json:"id" validate:"required"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Category string   `json:"category,omitempty"`
	Options  []string `json:"options,omitempty"`
}

func (s Survey) Summary() SurveySummary {
	return SurveySummary{ID: s.ID, Title: s.Title}
}

// Validate checks required fields and that question ids are unique, as
// answers refer to questions by id.
func (s Survey) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(s.Questions))
	for i, q := range s.Questions {
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("questions[%d]: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
