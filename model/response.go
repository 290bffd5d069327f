package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the lifecycle state of a Response. The only forward transition
// is draft -> submitted.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// UnmarshalJSON accepts the two known statuses, and the empty string
// meaning "not given".
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	status := Status(str)
	if status != "" && !status.Valid() {
		return fmt.Errorf("status: unknown value %q", str)
	}
	*s = status
	return nil
}

// Answer to one question of a survey. Value is kept as raw JSON: its shape
// depends on the question type.
type Answer struct {
	QuestionID string          `json:"questionId" validate:"required"`
	Value      json.RawMessage `json:"value"`
}

type Response struct {
	ID          string      `json:"id"`
	Survey      SurveyRef   `json:"survey"`
	Employee    EmployeeRef `json:"employee"`
	Answers     []Answer    `json:"answers"`
	Status      Status      `json:"status"`
	SubmittedAt *time.Time  `json:"submittedAt,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	type response Response
	if r.Answers == nil {
		r.Answers = []Answer{}
	}
	return json.Marshal(response(r))
}

// UnmarshalJSON rejects records without a status: unlike a submission, a
// stored Response is always either draft or submitted.
func (r *Response) UnmarshalJSON(data []byte) error {
	type response Response
	var v response
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !v.Status.Valid() {
		return fmt.Errorf("status: missing or unknown value %q", v.Status)
	}
	*r = Response(v)
	return nil
}

// Compact returns a copy of r with both references reduced to bare ids.
func (r Response) Compact() Response {
	r.Survey = r.Survey.ByID()
	r.Employee = r.Employee.ByID()
	return r
}

// SubmitData returns the payload that would produce r.
func (r Response) SubmitData() SubmitResponseData {
	return SubmitResponseData{
		Survey:   r.Survey.ID(),
		Employee: r.Employee.ID(),
		Answers:  r.Answers,
		Status:   r.Status,
	}
}

var (
	ErrSubmittedWithoutTime = errors.New("submitted response has no submittedAt")
	ErrDraftWithTime        = errors.New("draft response has submittedAt")
)

// CheckLifecycle reports whether submittedAt agrees with status.
func (r Response) CheckLifecycle() error {
	switch r.Status {
	case StatusDraft:
		if r.SubmittedAt != nil {
			return ErrDraftWithTime
		}
	case StatusSubmitted:
		if r.SubmittedAt == nil {
			return ErrSubmittedWithoutTime
		}
	default:
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return nil
}

// SubmitResponseData is what a client sends to create or update a Response.
// References are ids only; identity and timestamps belong to the store.
type SubmitResponseData struct {
	Survey   string   `json:"survey" validate:"required"`
	Employee string   `json:"employee" validate:"required"`
	Answers  []Answer `json:"answers" validate:"dive"`
	Status   Status   `json:"status" validate:"omitempty,oneof=draft submitted"`
}

var validate = validator.New()

// Validate checks required fields, the status value, and that no question
// is answered twice.
func (d SubmitResponseData) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(d.Answers))
	for i, a := range d.Answers {
		if _, ok := seen[a.QuestionID]; ok {
			return fmt.Errorf("answers[%d]: duplicate questionId %q", i, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}
