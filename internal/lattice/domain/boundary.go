package domain

import "fmt"

// EarliestExercise 返回每个价格状态首次行权最优的期间下标，从未行权为 -1
// 吸收态不在结果中（只统计价格状态）。
func (m *PutModel) EarliestExercise(sol *Solution) ([]int, error) {
	if err := m.checkSolution(sol); err != nil {
		return nil, err
	}

	earliest := make([]int, len(m.Prices))
	for k := range earliest {
		earliest[k] = -1
		for t := 0; t < sol.Horizon(); t++ {
			if sol.Policies[t][k] == ActionExercise {
				earliest[k] = t
				break
			}
		}
	}
	return earliest, nil
}

// CriticalPrices 返回每个期间的行权临界价
// 即该期间行权最优的最高价格状态对应的格点价格；该期间无任何行权时为 0。
// 看跌期权在临界价之下行权最优，曲线即行权边界。
func (m *PutModel) CriticalPrices(sol *Solution) ([]float64, error) {
	if err := m.checkSolution(sol); err != nil {
		return nil, err
	}

	critical := make([]float64, sol.Horizon())
	for t := 0; t < sol.Horizon(); t++ {
		for k := len(m.Prices) - 1; k >= 0; k-- {
			if sol.Policies[t][k] == ActionExercise {
				critical[t] = m.Prices[k]
				break
			}
		}
	}
	return critical, nil
}

// checkSolution 校验解的形状与模型匹配
func (m *PutModel) checkSolution(sol *Solution) error {
	if sol == nil || sol.Horizon() == 0 {
		return fmt.Errorf("%w: empty solution", ErrInvalidParameter)
	}
	for t, row := range sol.Policies {
		if len(row) != m.NumStates() {
			return fmt.Errorf("%w: policy row %d has %d states, want %d", ErrInvalidParameter, t, len(row), m.NumStates())
		}
	}
	return nil
}
