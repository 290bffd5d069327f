package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type SurveySummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type EmployeeSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SurveyRef points to a survey either by bare id or as an expanded summary.
// On the wire it is a JSON string or a JSON object respectively.
type SurveyRef struct {
	id       string
	expanded *SurveySummary
}

func SurveyByID(id string) SurveyRef {
	return SurveyRef{id: id}
}

func ExpandedSurvey(s SurveySummary) SurveyRef {
	return SurveyRef{id: s.ID, expanded: &s}
}

func (r SurveyRef) ID() string {
	return r.id
}

func (r SurveyRef) Expanded() (SurveySummary, bool) {
	if r.expanded == nil {
		return SurveySummary{}, false
	}
	return *r.expanded, true
}

func (r SurveyRef) ByID() SurveyRef {
	return SurveyRef{id: r.id}
}

func (r SurveyRef) MarshalJSON() ([]byte, error) {
	if r.expanded != nil {
		return json.Marshal(r.expanded)
	}
	return json.Marshal(r.id)
}

func (r *SurveyRef) UnmarshalJSON(data []byte) error {
	var summary SurveySummary
	id, expanded, err := decodeRef(data, &summary)
	if err != nil {
		return fmt.Errorf("survey: %w", err)
	}
	if !expanded {
		*r = SurveyByID(id)
		return nil
	}
	summary.ID = id
	*r = ExpandedSurvey(summary)
	return nil
}

// EmployeeRef points to an employee either by bare id or as an expanded
// summary.
type EmployeeRef struct {
	id       string
	expanded *EmployeeSummary
}

func EmployeeByID(id string) EmployeeRef {
	return EmployeeRef{id: id}
}

func ExpandedEmployee(e EmployeeSummary) EmployeeRef {
	return EmployeeRef{id: e.ID, expanded: &e}
}

func (r EmployeeRef) ID() string {
	return r.id
}

func (r EmployeeRef) Expanded() (EmployeeSummary, bool) {
	if r.expanded == nil {
		return EmployeeSummary{}, false
	}
	return *r.expanded, true
}

func (r EmployeeRef) ByID() EmployeeRef {
	return EmployeeRef{id: r.id}
}

func (r EmployeeRef) MarshalJSON() ([]byte, error) {
	if r.expanded != nil {
		return json.Marshal(r.expanded)
	}
	return json.Marshal(r.id)
}

func (r *EmployeeRef) UnmarshalJSON(data []byte) error {
	var summary EmployeeSummary
	id, expanded, err := decodeRef(data, &summary)
	if err != nil {
		return fmt.Errorf("employee: %w", err)
	}
	if !expanded {
		*r = EmployeeByID(id)
		return nil
	}
	summary.ID = id
	*r = ExpandedEmployee(summary)
	return nil
}

var errBadRef = errors.New("reference must be an id string or an object")

// decodeRef reads either a bare id or an object into summary. Objects may
// carry their id as "id" or "_id".
func decodeRef(data []byte, summary any) (id string, expanded bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false, errBadRef
	}

	switch data[0] {
	case '"':
		err = json.Unmarshal(data, &id)
		return id, false, err
	case '{':
		if err = json.Unmarshal(data, summary); err != nil {
			return "", false, err
		}
		var ids struct {
			ID       string `json:"id"`
			LegacyID string `json:"_id"`
		}
		if err = json.Unmarshal(data, &ids); err != nil {
			return "", false, err
		}
		id = ids.ID
		if id == "" {
			id = ids.LegacyID
		}
		if id == "" {
			return "", false, errors.New("expanded reference has no id")
		}
		return id, true, nil
	default:
		return "", false, errBadRef
	}
}
