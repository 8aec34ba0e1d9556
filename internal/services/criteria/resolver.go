// Package criteria builds qualifying-criteria questions and derives the
// borrower tier from selected answers.
package criteria

import (
	"sort"
	"strings"

	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/overlay"
)

// OptionOrder selects how a question's options are sorted.
type OptionOrder int

const (
	// OrderByTier sorts options ascending by tier (buy-to-let cards).
	OrderByTier OptionOrder = iota
	// OrderByLabel sorts options by label, case-insensitive (bridging cards).
	OrderByLabel
)

// BuildQuestions groups criteria rows into questions for a product scope.
// Grouping preserves first-encounter order; the first non-empty info tip and
// display order per question win; options deduplicate by id-or-label,
// case-insensitive. Deterministic given identical input ordering.
func BuildQuestions(rows []*models.CriteriaRow, scope string, order OptionOrder) []models.Question {
	normalized := overlay.NormalizeScope(scope)

	byKey := make(map[string]*models.Question)
	seenOptions := make(map[string]map[string]bool)
	var keys []string

	for _, row := range rows {
		if row == nil || row.QuestionKey == "" {
			continue
		}
		if !scopeApplies(normalized, row.Scope) {
			continue
		}

		q, ok := byKey[row.QuestionKey]
		if !ok {
			q = &models.Question{
				Key:   row.QuestionKey,
				Label: row.QuestionLabel,
				Flag:  row.Flag,
			}
			byKey[row.QuestionKey] = q
			seenOptions[row.QuestionKey] = make(map[string]bool)
			keys = append(keys, row.QuestionKey)
		}

		if q.InfoTip == "" && row.InfoTip != "" {
			q.InfoTip = row.InfoTip
		}
		if q.DisplayOrder == 0 && row.DisplayOrder != 0 {
			q.DisplayOrder = row.DisplayOrder
		}
		if q.Label == "" {
			q.Label = row.QuestionLabel
		}

		optKey := strings.ToLower(strings.TrimSpace(row.ID))
		if optKey == "" {
			optKey = strings.ToLower(strings.TrimSpace(row.OptionLabel))
		}
		if seenOptions[row.QuestionKey][optKey] {
			continue
		}
		seenOptions[row.QuestionKey][optKey] = true

		q.Options = append(q.Options, models.Option{
			ID:    row.ID,
			Label: row.OptionLabel,
			Tier:  row.Tier,
		})
	}

	questions := make([]models.Question, 0, len(keys))
	for _, key := range keys {
		q := byKey[key]
		sortOptions(q.Options, order)
		questions = append(questions, *q)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].DisplayOrder < questions[j].DisplayOrder
	})

	return questions
}

// ComputeTier returns the borrower tier for an answer set: the maximum tier
// among answered options, never below 1. Malformed tiers were already dropped
// at ingestion (Tier 0) and are ignored here, never errored.
func ComputeTier(answers models.AnswerSet) int {
	tier := 1
	for _, opt := range answers {
		if opt == nil {
			continue
		}
		if opt.Tier > tier {
			tier = opt.Tier
		}
	}
	return tier
}

// DefaultAnswers selects the first option for every question, the defined
// default for unanswered questions.
func DefaultAnswers(questions []models.Question) models.AnswerSet {
	answers := make(models.AnswerSet, len(questions))
	for _, q := range questions {
		if len(q.Options) == 0 {
			answers[q.Key] = nil
			continue
		}
		opt := q.Options[0]
		answers[q.Key] = &opt
	}
	return answers
}

// ResolveAnswers maps selected option IDs onto the questions, defaulting any
// unanswered question to its first option.
func ResolveAnswers(questions []models.Question, selected map[string]string) models.AnswerSet {
	answers := DefaultAnswers(questions)
	for _, q := range questions {
		id, ok := selected[q.Key]
		if !ok {
			continue
		}
		for i := range q.Options {
			if strings.EqualFold(q.Options[i].ID, id) || strings.EqualFold(q.Options[i].Label, id) {
				opt := q.Options[i]
				answers[q.Key] = &opt
				break
			}
		}
	}
	return answers
}

func sortOptions(options []models.Option, order OptionOrder) {
	switch order {
	case OrderByLabel:
		sort.SliceStable(options, func(i, j int) bool {
			return strings.ToLower(options[i].Label) < strings.ToLower(options[j].Label)
		})
	default:
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Tier < options[j].Tier
		})
	}
}

// scopeApplies reports whether a criteria row belongs to the requested scope.
// Rows without a scope apply everywhere.
func scopeApplies(normalizedScope, rowScope string) bool {
	if strings.TrimSpace(rowScope) == "" || normalizedScope == "" {
		return true
	}
	rowNorm := overlay.NormalizeScope(rowScope)
	return strings.Contains(rowNorm, normalizedScope) || strings.Contains(normalizedScope, rowNorm)
}
