package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"broker-quote-engine/internal/models"
)

// criteriaRequiredColumns are the columns a criteria card must carry.
var criteriaRequiredColumns = []string{
	"question_key",
	"question",
	"option",
}

// criteriaColumnAliases maps alternative criteria-card column names to
// canonical names.
var criteriaColumnAliases = map[string]string{
	"set":            "criteria_set",
	"criteriaset":    "criteria_set",

	"property_type":  "scope",
	"product_scope":  "scope",
	"category":       "scope",

	"key":            "question_key",
	"questionkey":    "question_key",

	"question_label": "question",
	"label":          "question",

	"option_label":   "option",
	"answer":         "option",
	"choice":         "option",

	"band":           "tier",
	"risk_tier":      "tier",

	"tooltip":        "info_tip",
	"info":           "info_tip",
	"tip":            "info_tip",

	"order":          "display_order",
	"sort_order":     "display_order",

	"option_id":      "id",
	"row_id":         "id",
}

// CriteriaCardParser parses criteria card CSV content into CriteriaRows.
type CriteriaCardParser struct {
	columnMapping map[string]int
}

// NewCriteriaCardParser creates a criteria card parser.
func NewCriteriaCardParser() *CriteriaCardParser {
	return &CriteriaCardParser{}
}

// Parse parses CSV content into CriteriaRows for the given criteria set.
// Semantic flags are resolved here from the question key mapping so the
// filters never pattern-match question labels.
func (p *CriteriaCardParser) Parse(content, criteriaSet string) ([]*models.CriteriaRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCard}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	p.columnMapping = make(map[string]int)
	for i, col := range header {
		normalized := normalizeKey(col)
		if alias, ok := criteriaColumnAliases[normalized]; ok {
			normalized = alias
		}
		if _, exists := p.columnMapping[normalized]; !exists {
			p.columnMapping[normalized] = i
		}
	}

	var missing []string
	for _, col := range criteriaRequiredColumns {
		if _, ok := p.columnMapping[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, []error{fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))}
	}

	var rows []*models.CriteriaRow
	var parseErrors []error
	lineNum := 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		row := p.parseRow(record, criteriaSet)
		if row.QuestionKey == "" || row.OptionLabel == "" {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: missing question key or option", lineNum))
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

func (p *CriteriaCardParser) parseRow(record []string, criteriaSet string) *models.CriteriaRow {
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	questionKey := normalizeKey(get("question_key"))
	tierText := get("tier")

	id := get("id")
	if id == "" {
		id = uuid.NewString()
	}

	set := get("criteria_set")
	if set == "" {
		set = criteriaSet
	}

	displayOrder := 0
	if orderStr := get("display_order"); orderStr != "" {
		if v, err := strconv.Atoi(orderStr); err == nil {
			displayOrder = v
		}
	}

	return &models.CriteriaRow{
		ID:            id,
		CriteriaSet:   set,
		Scope:         get("scope"),
		QuestionKey:   questionKey,
		QuestionLabel: get("question"),
		OptionLabel:   get("option"),
		TierText:      tierText,
		Tier:          ExtractTier(tierText),
		InfoTip:       get("info_tip"),
		DisplayOrder:  displayOrder,
		Flag:          models.CriteriaFlagMapping[questionKey],
	}
}

// normalizeKey converts question keys to snake_case for flag mapping.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
