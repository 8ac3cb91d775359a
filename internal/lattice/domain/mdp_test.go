package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStateProcess(t *testing.T) *DecisionProcess {
	t.Helper()
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Reward: 0, Transitions: []Transition{{Next: 0, Prob: 0.5}, {Next: 1, Prob: 0.5}}},
		{State: 0, Action: ActionExercise, Reward: 1, Transitions: []Transition{{Next: 1, Prob: 1}}},
		{State: 1, Action: ActionHold, Reward: 0, Transitions: []Transition{{Next: 1, Prob: 1}}},
	}
	dp, err := NewDecisionProcess(2, 0.9, pairs)
	require.NoError(t, err)
	return dp
}

func TestNewDecisionProcess(t *testing.T) {
	dp := twoStateProcess(t)

	assert.Equal(t, 2, dp.NumStates)
	assert.Equal(t, 3, dp.NumPairs())
	assert.InDelta(t, 0.9, dp.Discount, 1e-15)
}

func TestNewDecisionProcess_InvalidArguments(t *testing.T) {
	_, err := NewDecisionProcess(0, 0.9, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewDecisionProcess(1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewDecisionProcess(1, 1.5, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNewDecisionProcess_RejectsUnorderedPairs(t *testing.T) {
	pairs := []StateAction{
		{State: 1, Action: ActionHold, Transitions: []Transition{{Next: 1, Prob: 1}}},
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 1}}},
	}
	_, err := NewDecisionProcess(2, 0.9, pairs)
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestNewDecisionProcess_RejectsOutOfRangeState(t *testing.T) {
	pairs := []StateAction{
		{State: 5, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 1}}},
	}
	_, err := NewDecisionProcess(2, 0.9, pairs)
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestActions_GroupsByState(t *testing.T) {
	dp := twoStateProcess(t)

	actions0 := dp.Actions(0)
	require.Len(t, actions0, 2)
	assert.Equal(t, ActionHold, actions0[0].Action)
	assert.Equal(t, ActionExercise, actions0[1].Action)

	actions1 := dp.Actions(1)
	require.Len(t, actions1, 1)
	assert.Equal(t, ActionHold, actions1[0].Action)
}

func TestValidate_AcceptsWellFormedProcess(t *testing.T) {
	dp := twoStateProcess(t)
	assert.NoError(t, dp.Validate())
}

func TestValidate_RejectsStateWithoutActions(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 1}}},
	}
	dp, err := NewDecisionProcess(2, 0.9, pairs)
	require.NoError(t, err)

	err = dp.Validate()
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestValidate_RejectsNegativeProbability(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 1.2}, {Next: 0, Prob: -0.2}}},
	}
	dp, err := NewDecisionProcess(1, 0.9, pairs)
	require.NoError(t, err)

	err = dp.Validate()
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestValidate_RejectsOutOfRangeTransition(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 3, Prob: 1}}},
	}
	dp, err := NewDecisionProcess(1, 0.9, pairs)
	require.NoError(t, err)

	err = dp.Validate()
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestValidate_RejectsRowNotSummingToOne(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 0.6}, {Next: 0, Prob: 0.3}}},
	}
	dp, err := NewDecisionProcess(1, 0.9, pairs)
	require.NoError(t, err)

	err = dp.Validate()
	assert.ErrorIs(t, err, ErrMalformedProcess)
}

func TestValidate_ToleratesRoundingNoise(t *testing.T) {
	pairs := []StateAction{
		{State: 0, Action: ActionHold, Transitions: []Transition{{Next: 0, Prob: 0.5}, {Next: 0, Prob: 0.5 + 1e-12}}},
	}
	dp, err := NewDecisionProcess(1, 0.9, pairs)
	require.NoError(t, err)

	assert.NoError(t, dp.Validate())
}
