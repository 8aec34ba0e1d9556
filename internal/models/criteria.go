// Package models defines the data structures for the broker quote engine.
package models

import "strings"

// CriteriaFlag is a semantic marker attached to known criteria questions at
// ingestion, replacing label pattern-matching at filter time.
type CriteriaFlag string

const (
	FlagNone                CriteriaFlag = ""
	FlagFlatAboveCommercial CriteriaFlag = "flat_above_commercial"
	FlagAdverseCredit       CriteriaFlag = "adverse_credit"
	FlagFirstTimeLandlord   CriteriaFlag = "first_time_landlord"
)

// CriteriaFlagMapping maps known question keys to semantic flags. Keys not
// listed here carry no flag.
var CriteriaFlagMapping = map[string]CriteriaFlag{
	"flat_above_commercial": FlagFlatAboveCommercial,
	"flat_above_shop":       FlagFlatAboveCommercial,
	"adverse_credit":        FlagAdverseCredit,
	"first_time_landlord":   FlagFirstTimeLandlord,
}

// CriteriaRow is a single qualifying-criteria option as ingested: one row per
// (question, option) pair, segmented by criteria set and product scope.
type CriteriaRow struct {
	ID            string       `json:"id" db:"id"`
	CriteriaSet   string       `json:"criteria_set" db:"criteria_set"`
	Scope         string       `json:"scope" db:"scope"`
	QuestionKey   string       `json:"question_key" db:"question_key"`
	QuestionLabel string       `json:"question_label" db:"question_label"`
	OptionLabel   string       `json:"option_label" db:"option_label"`
	TierText      string       `json:"tier_text" db:"tier_text"`
	Tier          int          `json:"tier" db:"tier"` // 0 when no numeric tier could be extracted
	InfoTip       string       `json:"info_tip" db:"info_tip"`
	DisplayOrder  int          `json:"display_order" db:"display_order"`
	Flag          CriteriaFlag `json:"flag,omitempty" db:"flag"`
}

// Option is one selectable answer to a criteria question.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Tier  int    `json:"tier"`
}

// Question is a criteria question built per (criteriaSet, productScope) with
// its deduplicated, ordered options.
type Question struct {
	Key          string       `json:"key"`
	Label        string       `json:"label"`
	Options      []Option     `json:"options"`
	InfoTip      string       `json:"info_tip,omitempty"`
	DisplayOrder int          `json:"display_order"`
	Flag         CriteriaFlag `json:"flag,omitempty"`
}

// AnswerSet maps question keys to the selected option. A nil entry (or a
// missing key) means the question is unanswered.
type AnswerSet map[string]*Option

// FlagAnsweredYes reports whether the question carrying the given flag has
// been answered with a "Yes" option.
func (a AnswerSet) FlagAnsweredYes(questions []Question, flag CriteriaFlag) bool {
	for _, q := range questions {
		if q.Flag != flag {
			continue
		}
		opt := a[q.Key]
		if opt == nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(opt.Label), "yes")
	}
	return false
}
