package domain

import "fmt"

// Solution 逆向归纳求解结果
// Values 共 horizon+1 行，第 horizon 行为终值向量；Policies 共 horizon 行，
// Policies[t][s] 为期间 t 状态 s 的最优动作编号。
type Solution struct {
	Values   [][]float64 `json:"values"`
	Policies [][]int     `json:"policies"`
}

// Solve 有限期限逆向归纳
// 对 t = horizon-1 .. 0 逐期回溯：Q(s,a) = r(s,a) + β·Σ P(s,a,s')·V_{t+1}(s')，
// V_t(s) = max_a Q(s,a)，策略取 argmax，并列时取最小动作编号。
// terminal 为终值向量，nil 表示零向量。求解不修改决策过程本身。
func Solve(dp *DecisionProcess, horizon int, terminal []float64) (*Solution, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}
	if err := dp.Validate(); err != nil {
		return nil, err
	}

	n := dp.NumStates
	if terminal == nil {
		terminal = make([]float64, n)
	} else if len(terminal) != n {
		return nil, fmt.Errorf("%w: terminal value length %d, want %d", ErrInvalidParameter, len(terminal), n)
	}

	values := make([][]float64, horizon+1)
	policies := make([][]int, horizon)
	values[horizon] = append([]float64(nil), terminal...)

	for t := horizon - 1; t >= 0; t-- {
		next := values[t+1]
		v := make([]float64, n)
		pol := make([]int, n)

		for s := 0; s < n; s++ {
			best := 0.0
			bestAction := 0
			for i, pair := range dp.Actions(s) {
				expected := 0.0
				for _, tr := range pair.Transitions {
					expected += tr.Prob * next[tr.Next]
				}
				q := pair.Reward + dp.Discount*expected
				if i == 0 || q > best {
					best = q
					bestAction = pair.Action
				}
			}
			v[s] = best
			pol[s] = bestAction
		}

		values[t] = v
		policies[t] = pol
	}

	return &Solution{Values: values, Policies: policies}, nil
}

// Horizon 求解期限（策略行数）
func (s *Solution) Horizon() int {
	return len(s.Policies)
}
