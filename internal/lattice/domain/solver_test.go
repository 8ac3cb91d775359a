package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// putLatticeProcess 手工构造的三价格格点
// 价格 {1.8, 2.0, 2.2}，执行价 2.1，β=0.99，q=0.5，状态 3 为吸收态。
func putLatticeProcess(t *testing.T) *DecisionProcess {
	t.Helper()

	prices := []float64{1.8, 2.0, 2.2}
	strike := 2.1
	q := 0.5
	absorbing := 3

	pairs := make([]StateAction, 0, 7)
	for k := range prices {
		down := k - 1
		if down < 0 {
			down = 0
		}
		up := k + 1
		if up > len(prices)-1 {
			up = len(prices) - 1
		}
		pairs = append(pairs,
			StateAction{
				State:  k,
				Action: ActionHold,
				Transitions: []Transition{
					{Next: down, Prob: 1 - q},
					{Next: up, Prob: q},
				},
			},
			StateAction{
				State:       k,
				Action:      ActionExercise,
				Reward:      strike - prices[k],
				Transitions: []Transition{{Next: absorbing, Prob: 1}},
			},
		)
	}
	pairs = append(pairs, StateAction{
		State:       absorbing,
		Action:      ActionHold,
		Transitions: []Transition{{Next: absorbing, Prob: 1}},
	})

	dp, err := NewDecisionProcess(4, 0.99, pairs)
	require.NoError(t, err)
	return dp
}

func TestSolve_PutLattice(t *testing.T) {
	dp := putLatticeProcess(t)

	sol, err := Solve(dp, 2, nil)
	require.NoError(t, err)
	require.Len(t, sol.Values, 3)
	require.Len(t, sol.Policies, 2)
	assert.Equal(t, 2, sol.Horizon())

	// 终值为零向量
	assert.Equal(t, []float64{0, 0, 0, 0}, sol.Values[2])

	// 最后一期：凡行权收益为正处行权最优
	wantV1 := []float64{0.3, 0.1, 0, 0}
	for s, want := range wantV1 {
		assert.InDelta(t, want, sol.Values[1][s], 1e-12, "V1[%d]", s)
	}
	assert.Equal(t, []int{ActionExercise, ActionExercise, ActionHold, ActionHold}, sol.Policies[1])

	// 期间 0：中间价格状态继续持有的贴现期望超过立即行权
	wantV0 := []float64{0.3, 0.1485, 0.0495, 0}
	for s, want := range wantV0 {
		assert.InDelta(t, want, sol.Values[0][s], 1e-12, "V0[%d]", s)
	}
	assert.Equal(t, []int{ActionExercise, ActionHold, ActionHold, ActionHold}, sol.Policies[0])
}

func TestSolve_InvalidHorizon(t *testing.T) {
	dp := putLatticeProcess(t)

	_, err := Solve(dp, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidHorizon)

	_, err = Solve(dp, -3, nil)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestSolve_TerminalLengthMismatch(t *testing.T) {
	dp := putLatticeProcess(t)

	_, err := Solve(dp, 2, []float64{1, 2})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSolve_TerminalValuePropagation(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 1}}},
	}
	dp, err := NewDecisionProcess(1, 0.5, pairs)
	require.NoError(t, err)

	sol, err := Solve(dp, 3, []float64{2})
	require.NoError(t, err)

	assert.InDelta(t, 2, sol.Values[3][0], 1e-15)
	assert.InDelta(t, 1, sol.Values[2][0], 1e-15)
	assert.InDelta(t, 0.5, sol.Values[1][0], 1e-15)
	assert.InDelta(t, 0.25, sol.Values[0][0], 1e-15)
}

func TestSolve_TieBreaksToLowestAction(t *testing.T) {
	// 两个动作 Q 值相同，策略取较小动作编号
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Reward: 1, Transitions: []Transition{{Next: 0, Prob: 1}}},
		{State: 0, Action: ActionExercise, Reward: 1, Transitions: []Transition{{Next: 0, Prob: 1}}},
	}
	dp, err := NewDecisionProcess(1, 1, pairs)
	require.NoError(t, err)

	sol, err := Solve(dp, 4, nil)
	require.NoError(t, err)

	for t0 := 0; t0 < sol.Horizon(); t0++ {
		assert.Equal(t, ActionHold, sol.Policies[t0][0])
	}
}

func TestSolve_RejectsMalformedProcess(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 0.7}}},
	}
	dp, err := NewDecisionProcess(1, 0.9, pairs)
	require.NoError(t, err)

	_, err = Solve(dp, 1, nil)
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestSolve_DoesNotMutateProcess(t *testing.T) {
	dp := putLatticeProcess(t)
	before := make([]StateAction, len(dp.Pairs))
	copy(before, dp.Pairs)

	_, err := Solve(dp, 5, nil)
	require.NoError(t, err)

	assert.Equal(t, before, dp.Pairs)
}

func TestSolve_PolicyConsistency(t *testing.T) {
	model, err := BuildPutModel(ModelParams{
		ExpirationYears: 1,
		Volatility:      0.2,
		AnnualRate:      0.06,
		StrikePrice:     100,
		InitialPrice:    100,
		NumPeriods:      6,
	})
	require.NoError(t, err)

	sol, err := model.Solve()
	require.NoError(t, err)

	// 每期每状态：所选动作的 Q 值等于 V，且不存在 Q 值更高的可行动作
	dp := model.Process
	for t0 := 0; t0 < sol.Horizon(); t0++ {
		next := sol.Values[t0+1]
		for s := 0; s < dp.NumStates; s++ {
			chosenQ := 0.0
			found := false
			for _, pair := range dp.Actions(s) {
				expected := 0.0
				for _, tr := range pair.Transitions {
					expected += tr.Prob * next[tr.Next]
				}
				q := pair.Reward + dp.Discount*expected
				assert.LessOrEqual(t, q, sol.Values[t0][s]+1e-12, "period %d state %d action %d", t0, s, pair.Action)
				if pair.Action == sol.Policies[t0][s] {
					chosenQ = q
					found = true
				}
			}
			require.True(t, found)
			assert.InDelta(t, sol.Values[t0][s], chosenQ, 1e-12, "period %d state %d", t0, s)
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	dp := putLatticeProcess(t)

	first, err := Solve(dp, 6, nil)
	require.NoError(t, err)
	second, err := Solve(dp, 6, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Policies, second.Policies)
}
