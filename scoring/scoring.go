// Package scoring turns submitted answers into keeper scores.
//
// Answers on a 1-5 scale are grouped into four buckets by the category,
// type or text of their question, averaged, and combined with the
// employee's KPI:
//
//	performance  = kpi*0.5 + team*10
//	contribution = performance*0.5 + culture*10*0.3 + executive*10*0.2
//	potential    = potentialAvg*20
//	keeper       = contribution*0.6 + potential*0.4
package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mbolis/keeper-responses/model"
)

type Scores struct {
	KPIScore             float64 `json:"kpiScore"`
	Potential            float64 `json:"potential"`
	CultureHarmony       float64 `json:"cultureHarmony"`
	TeamEffect           float64 `json:"teamEffect"`
	ExecutiveObservation float64 `json:"executiveObservation"`
	PerformanceScore     float64 `json:"performanceScore"`
	ContributionScore    float64 `json:"contributionScore"`
	PotentialScore       float64 `json:"potentialScore"`
	KeeperScore          float64 `json:"keeperScore"`
}

type bucket int

const (
	none bucket = iota
	potential
	culture
	team
	executive
)

// checked in order, first match wins
var keywords = []struct {
	bucket     bucket
	categories []string
	texts      []string
}{
	{potential, []string{"potential", "potansiyel"}, []string{"potential", "potansiyel"}},
	{culture, []string{"culture", "harmony", "kültür uyumu"}, []string{"culture", "harmony"}},
	{team, []string{"team", "takım etkisi"}, []string{"team"}},
	{executive, []string{"executive", "observation", "yönetici gözlemi", "manager evaluation"}, []string{"executive", "observation", "manager evaluation", "yönetici"}},
}

func classify(q model.Question) bucket {
	category := strings.ToLower(q.Category)
	text := strings.ToLower(q.Text)
	if strings.ToLower(q.Type) == "potential" {
		return potential
	}
	for _, k := range keywords {
		if containsAny(category, k.categories) || containsAny(text, k.texts) {
			return k.bucket
		}
	}
	return none
}

func containsAny(s string, subs []string) bool {
	if s == "" {
		return false
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// numeric reads a JSON number, or a string holding one.
func numeric(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Calculate scores one response against the questions of its survey.
func Calculate(answers []model.Answer, questions []model.Question, kpi float64) Scores {
	values := make(map[string]json.RawMessage, len(answers))
	for _, a := range answers {
		values[a.QuestionID] = a.Value
	}

	var sums, counts [executive + 1]float64
	for _, q := range questions {
		raw, ok := values[q.ID]
		if !ok {
			raw, ok = values["question-"+q.ID]
		}
		if !ok {
			continue
		}
		n, ok := numeric(raw)
		if !ok {
			continue
		}
		b := classify(q)
		if b == none {
			continue
		}
		sums[b] += n
		counts[b]++
	}

	avg := func(b bucket) float64 {
		if counts[b] == 0 {
			return 0
		}
		return sums[b] / counts[b]
	}

	if math.IsNaN(kpi) {
		kpi = 0
	}

	s := Scores{
		KPIScore:             kpi,
		Potential:            avg(potential),
		CultureHarmony:       avg(culture),
		TeamEffect:           avg(team),
		ExecutiveObservation: avg(executive),
	}
	s.PerformanceScore = kpi*0.5 + s.TeamEffect*10
	s.ContributionScore = s.PerformanceScore*0.5 + s.CultureHarmony*10*0.3 + s.ExecutiveObservation*10*0.2
	s.PotentialScore = s.Potential * 20
	s.KeeperScore = s.ContributionScore*0.6 + s.PotentialScore*0.4
	return s
}

// Aggregate averages several score sets field by field.
func Aggregate(all []Scores) Scores {
	var total Scores
	if len(all) == 0 {
		return total
	}
	for _, s := range all {
		total.KPIScore += s.KPIScore
		total.Potential += s.Potential
		total.CultureHarmony += s.CultureHarmony
		total.TeamEffect += s.TeamEffect
		total.ExecutiveObservation += s.ExecutiveObservation
		total.PerformanceScore += s.PerformanceScore
		total.ContributionScore += s.ContributionScore
		total.PotentialScore += s.PotentialScore
		total.KeeperScore += s.KeeperScore
	}
	n := float64(len(all))
	return Scores{
		KPIScore:             total.KPIScore / n,
		Potential:            total.Potential / n,
		CultureHarmony:       total.CultureHarmony / n,
		TeamEffect:           total.TeamEffect / n,
		ExecutiveObservation: total.ExecutiveObservation / n,
		PerformanceScore:     total.PerformanceScore / n,
		ContributionScore:    total.ContributionScore / n,
		PotentialScore:       total.PotentialScore / n,
		KeeperScore:          total.KeeperScore / n,
	}
}

// Mean is a running average of numeric answer values, whatever question
// they answer.
type Mean struct {
	sum float64
	n   int
}

func (m *Mean) Add(answers []model.Answer) {
	for _, a := range answers {
		if v, ok := numeric(a.Value); ok {
			m.sum += v
			m.n++
		}
	}
}

// Value is 0 until some numeric value is added.
func (m Mean) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
