package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() ModelParams {
	return ModelParams{
		ExpirationYears: 1,
		Volatility:      0.2,
		AnnualRate:      0.06,
		StrikePrice:     100,
		InitialPrice:    100,
		NumPeriods:      4,
	}
}

func TestModelParams_Validate(t *testing.T) {
	assert.NoError(t, validParams().Validate())

	tests := []struct {
		name   string
		mutate func(*ModelParams)
	}{
		{"zero expiration", func(p *ModelParams) { p.ExpirationYears = 0 }},
		{"negative volatility", func(p *ModelParams) { p.Volatility = -0.2 }},
		{"zero rate", func(p *ModelParams) { p.AnnualRate = 0 }},
		{"negative strike", func(p *ModelParams) { p.StrikePrice = -1 }},
		{"zero initial price", func(p *ModelParams) { p.InitialPrice = 0 }},
		{"nan volatility", func(p *ModelParams) { p.Volatility = math.NaN() }},
		{"infinite strike", func(p *ModelParams) { p.StrikePrice = math.Inf(1) }},
		{"zero periods", func(p *ModelParams) { p.NumPeriods = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
		})
	}
}

func TestBuildPutModel_DerivedQuantities(t *testing.T) {
	// T=1, σ=0.2, r=0.06, N=4 → τ=0.25, β=e^-0.015, u=e^0.1, q=0.55
	model, err := BuildPutModel(validParams())
	require.NoError(t, err)

	assert.InDelta(t, 0.25, model.PeriodLength, 1e-15)
	assert.InDelta(t, math.Exp(-0.015), model.Discount, 1e-15)
	assert.InDelta(t, math.Exp(0.1), model.UpFactor, 1e-15)
	assert.InDelta(t, 0.55, model.UpProbability, 1e-12)
}

func TestBuildPutModel_PriceLattice(t *testing.T) {
	p := validParams()
	model, err := BuildPutModel(p)
	require.NoError(t, err)

	n := p.NumPeriods
	require.Len(t, model.Prices, 2*n+1)

	// 格点中心为初始价格，各点为 u^(k-N)·S0，严格升序
	assert.InDelta(t, p.InitialPrice, model.Prices[n], 1e-12)
	for k, price := range model.Prices {
		want := math.Pow(model.UpFactor, float64(k-n)) * p.InitialPrice
		assert.InDelta(t, want, price, 1e-9)
		if k > 0 {
			assert.Greater(t, price, model.Prices[k-1])
		}
	}

	assert.Equal(t, 2*n+2, model.NumStates())
	assert.Equal(t, 2*n+1, model.AbsorbingState())
	assert.Equal(t, n, model.InitialState())
}

func TestBuildPutModel_PairEnumeration(t *testing.T) {
	p := validParams()
	model, err := BuildPutModel(p)
	require.NoError(t, err)

	numPrices := len(model.Prices)
	require.Equal(t, 2*numPrices+1, model.Process.NumPairs())

	for k := 0; k < numPrices; k++ {
		actions := model.Process.Actions(k)
		require.Len(t, actions, 2)

		hold, exercise := actions[0], actions[1]
		assert.Equal(t, ActionHold, hold.Action)
		assert.Equal(t, 0.0, hold.Reward)

		assert.Equal(t, ActionExercise, exercise.Action)
		assert.InDelta(t, p.StrikePrice-model.Prices[k], exercise.Reward, 1e-12)
		require.Len(t, exercise.Transitions, 1)
		assert.Equal(t, model.AbsorbingState(), exercise.Transitions[0].Next)
		assert.Equal(t, 1.0, exercise.Transitions[0].Prob)
	}

	absorbing := model.Process.Actions(model.AbsorbingState())
	require.Len(t, absorbing, 1)
	assert.Equal(t, ActionHold, absorbing[0].Action)
	assert.Equal(t, 0.0, absorbing[0].Reward)
	require.Len(t, absorbing[0].Transitions, 1)
	assert.Equal(t, model.AbsorbingState(), absorbing[0].Transitions[0].Next)
	assert.Equal(t, 1.0, absorbing[0].Transitions[0].Prob)
}

func TestBuildPutModel_BoundaryClamping(t *testing.T) {
	model, err := BuildPutModel(validParams())
	require.NoError(t, err)

	q := model.UpProbability
	top := len(model.Prices) - 1

	bottom := model.Process.Actions(0)[0]
	require.Len(t, bottom.Transitions, 2)
	assert.Equal(t, 0, bottom.Transitions[0].Next)
	assert.InDelta(t, 1-q, bottom.Transitions[0].Prob, 1e-15)
	assert.Equal(t, 1, bottom.Transitions[1].Next)
	assert.InDelta(t, q, bottom.Transitions[1].Prob, 1e-15)

	upper := model.Process.Actions(top)[0]
	require.Len(t, upper.Transitions, 2)
	assert.Equal(t, top-1, upper.Transitions[0].Next)
	assert.InDelta(t, 1-q, upper.Transitions[0].Prob, 1e-15)
	assert.Equal(t, top, upper.Transitions[1].Next)
	assert.InDelta(t, q, upper.Transitions[1].Prob, 1e-15)

	interior := model.Process.Actions(2)[0]
	require.Len(t, interior.Transitions, 2)
	assert.Equal(t, 1, interior.Transitions[0].Next)
	assert.Equal(t, 3, interior.Transitions[1].Next)
}

func TestBuildPutModel_WellFormedProcess(t *testing.T) {
	model, err := BuildPutModel(validParams())
	require.NoError(t, err)
	assert.NoError(t, model.Process.Validate())
}

func TestBuildPutModel_NegativeUpProbabilityRejectedAtSolve(t *testing.T) {
	// 高波动低利率使 q < 0：构建成功，求解阶段因负概率拒绝
	p := validParams()
	p.Volatility = 3
	p.AnnualRate = 0.01
	p.NumPeriods = 1

	model, err := BuildPutModel(p)
	require.NoError(t, err)
	assert.Less(t, model.UpProbability, 0.0)

	_, err = model.Solve()
	assert.ErrorIs(t, err, ErrMalformedProcess)
}
