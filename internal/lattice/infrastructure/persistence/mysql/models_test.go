package mysql

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/latticepricing/internal/lattice/domain"
)

func TestValuationModelMapping(t *testing.T) {
	result := &domain.ValuationResult{
		ValuationID:       "VAL-42",
		Symbol:            "AAPL",
		OptionValue:       decimal.NewFromFloat(6.0892),
		StrikePrice:       decimal.NewFromInt(100),
		InitialPrice:      decimal.NewFromInt(100),
		Volatility:        0.2,
		AnnualRate:        0.06,
		ExpirationYears:   1,
		NumPeriods:        300,
		Discount:          0.9998,
		UpProbability:     0.5057,
		ImmediateExercise: false,
		CriticalPrices:    []float64{0, 82.5, 84.1},
		CalculatedAt:      1756600000,
		PricingModel:      domain.PricingModelBinomialLattice,
	}

	model, err := toModel(result)
	require.NoError(t, err)
	assert.Equal(t, "VAL-42", model.ValuationID)
	assert.Equal(t, "6.0892", model.OptionValue)
	assert.Equal(t, "[0,82.5,84.1]", model.CriticalPrices)

	back, err := toDomain(model)
	require.NoError(t, err)
	assert.Equal(t, result.Symbol, back.Symbol)
	assert.True(t, result.OptionValue.Equal(back.OptionValue))
	assert.True(t, result.StrikePrice.Equal(back.StrikePrice))
	assert.Equal(t, result.CriticalPrices, back.CriticalPrices)
	assert.Equal(t, result.NumPeriods, back.NumPeriods)
	assert.Equal(t, result.CalculatedAt, back.CalculatedAt)
}

func TestValuationModelMapping_EmptyCriticalPrices(t *testing.T) {
	model := &ValuationModel{
		ValuationID:  "VAL-7",
		Symbol:       "TSLA",
		OptionValue:  "0",
		StrikePrice:  "50",
		InitialPrice: "60",
	}

	back, err := toDomain(model)
	require.NoError(t, err)
	assert.Nil(t, back.CriticalPrices)
}

func TestValuationModelMapping_BadDecimal(t *testing.T) {
	model := &ValuationModel{
		OptionValue:  "not-a-number",
		StrikePrice:  "1",
		InitialPrice: "1",
	}

	_, err := toDomain(model)
	assert.Error(t, err)
}

func TestValuationModelTableName(t *testing.T) {
	assert.Equal(t, "lattice_valuations", ValuationModel{}.TableName())
}
