// Package models defines the data structures for the broker quote engine.
package models

import (
	"math"
	"strconv"
	"strings"
)

// Figure is a derived or ingested numeric value that may be unavailable.
// Unavailable figures marshal as JSON null so downstream consumers never
// see NaN or Infinity.
type Figure struct {
	Value float64
	Valid bool
}

// Num returns a valid Figure, or an unavailable one if v is not finite.
func Num(v float64) Figure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Figure{}
	}
	return Figure{Value: v, Valid: true}
}

// Unavailable returns the explicit "no value" marker.
func Unavailable() Figure {
	return Figure{}
}

// ParseFigure parses a numeric string, tolerating currency symbols, commas,
// percent signs and surrounding whitespace. Unparsable input yields an
// unavailable Figure, never an error.
func ParseFigure(s string) Figure {
	s = strings.TrimSpace(s)
	if s == "" {
		return Figure{}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Figure{}
	}
	return Num(v)
}

// Or returns the figure's value, or fallback when unavailable.
func (f Figure) Or(fallback float64) float64 {
	if f.Valid {
		return f.Value
	}
	return fallback
}

// MarshalJSON encodes unavailable figures as null.
func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (f *Figure) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = Figure{}
		return nil
	}
	v, err := strconv.ParseFloat(strings.Trim(s, `"`), 64)
	if err != nil {
		*f = Figure{}
		return nil
	}
	*f = Num(v)
	return nil
}

// SafeDiv divides a by b, returning an unavailable Figure when the result
// would not be finite.
func SafeDiv(a, b float64) Figure {
	if b == 0 {
		return Figure{}
	}
	return Num(a / b)
}
