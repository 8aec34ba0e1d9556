package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"broker-quote-engine/internal/models"
)

func TestBestMatch_Empty(t *testing.T) {
	assert.Nil(t, BestMatch(nil, 50, ltvBucket))
	assert.Nil(t, BestMatch([]*models.RateRow{}, 50, ltvBucket))
}

func TestBestMatch_ExactContainmentWins(t *testing.T) {
	rows := []*models.RateRow{
		mockBridgeRow(map[string]interface{}{"id": "miss", "min_ltv": 0.0, "max_ltv": 40.0}),
		mockBridgeRow(map[string]interface{}{"id": "hit", "min_ltv": 40.0, "max_ltv": 60.0}),
	}

	best := BestMatch(rows, 50, ltvBucket)

	assert.NotNil(t, best)
	assert.Equal(t, "hit", best.ID)
}

func TestBestMatch_FirstContainingBucketWins(t *testing.T) {
	rows := []*models.RateRow{
		mockBridgeRow(map[string]interface{}{"id": "a", "min_ltv": 0.0, "max_ltv": 75.0}),
		mockBridgeRow(map[string]interface{}{"id": "b", "min_ltv": 40.0, "max_ltv": 60.0}),
	}

	best := BestMatch(rows, 50, ltvBucket)

	assert.Equal(t, "a", best.ID)
}

func TestBestMatch_NearestMidpointWhenNoneContain(t *testing.T) {
	rows := []*models.RateRow{
		mockBridgeRow(map[string]interface{}{"id": "far", "min_ltv": 0.0, "max_ltv": 20.0}),   // midpoint 10
		mockBridgeRow(map[string]interface{}{"id": "near", "min_ltv": 60.0, "max_ltv": 70.0}), // midpoint 65
	}

	best := BestMatch(rows, 80, ltvBucket)

	assert.Equal(t, "near", best.ID)
}

func TestBestMatch_EquidistantTieKeepsEarlier(t *testing.T) {
	rows := []*models.RateRow{
		mockBridgeRow(map[string]interface{}{"id": "a", "min_ltv": 20.0, "max_ltv": 40.0}), // midpoint 30
		mockBridgeRow(map[string]interface{}{"id": "b", "min_ltv": 60.0, "max_ltv": 80.0}), // midpoint 70
	}

	best := BestMatch(rows, 50, ltvBucket)

	assert.Equal(t, "a", best.ID)
}

func TestBestMatch_LowestRateWhenNoBuckets(t *testing.T) {
	a := mockBridgeRow(map[string]interface{}{"id": "a", "rate": 1.09})
	b := mockBridgeRow(map[string]interface{}{"id": "b", "rate": 0.89})
	a.MinLTV, a.MaxLTV = models.Unavailable(), models.Unavailable()
	b.MinLTV, b.MaxLTV = models.Unavailable(), models.Unavailable()

	best := BestMatch([]*models.RateRow{a, b}, 50, ltvBucket)

	assert.Equal(t, "b", best.ID)
}

func TestBestMatch_FirstRowWhenNothingComparable(t *testing.T) {
	a := mockBridgeRow(map[string]interface{}{"id": "a"})
	b := mockBridgeRow(map[string]interface{}{"id": "b"})
	for _, row := range []*models.RateRow{a, b} {
		row.MinLTV, row.MaxLTV = models.Unavailable(), models.Unavailable()
		row.Rate = models.Unavailable()
	}

	best := BestMatch([]*models.RateRow{a, b}, 50, ltvBucket)

	assert.Equal(t, "a", best.ID)
}

func TestBestMatch_LoanBucket(t *testing.T) {
	rows := []*models.RateRow{
		mockBridgeRow(map[string]interface{}{"id": "small", "min_loan": 75000.0, "max_loan": 200000.0}),
		mockBridgeRow(map[string]interface{}{"id": "large", "min_loan": 200000.0, "max_loan": 5000000.0}),
	}

	best := BestMatch(rows, 500000, loanBucket)

	assert.Equal(t, "large", best.ID)
}
