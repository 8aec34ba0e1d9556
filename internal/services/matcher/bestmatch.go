package matcher

import (
	"math"

	"broker-quote-engine/internal/models"
)

// BestMatch picks a single representative row for a family when multiple
// bucketed rows qualify. Preference order: the first row whose [min,max]
// bucket contains the metric exactly; else the row minimizing absolute
// distance to its bucket midpoint; else the lowest-rate row; else the first
// row encountered. Ties break to the earlier row in source order.
func BestMatch(rows []*models.RateRow, metric float64, bucket func(*models.RateRow) (models.Figure, models.Figure)) *models.RateRow {
	if len(rows) == 0 {
		return nil
	}

	for _, row := range rows {
		min, max := bucket(row)
		if min.Valid && max.Valid && metric >= min.Value && metric <= max.Value {
			return row
		}
	}

	var nearest *models.RateRow
	bestDistance := math.Inf(1)
	for _, row := range rows {
		min, max := bucket(row)
		if !min.Valid || !max.Valid {
			continue
		}
		midpoint := (min.Value + max.Value) / 2
		distance := math.Abs(metric - midpoint)
		if distance < bestDistance {
			bestDistance = distance
			nearest = row
		}
	}
	if nearest != nil {
		return nearest
	}

	var cheapest *models.RateRow
	for _, row := range rows {
		if !row.Rate.Valid {
			continue
		}
		if cheapest == nil || row.Rate.Value < cheapest.Rate.Value {
			cheapest = row
		}
	}
	if cheapest != nil {
		return cheapest
	}

	return rows[0]
}
