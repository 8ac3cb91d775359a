package domain

import (
	"fmt"
	"math"
)

// 动作编号约定：价格状态有 hold 和 exercise 两个动作，吸收态只有 hold（自环）
const (
	ActionHold     = 0
	ActionExercise = 1
)

// 转移概率行校验容差
const probTolerance = 1e-8

// Transition 稀疏转移项：以概率 Prob 转移到状态 Next
type Transition struct {
	Next int     `json:"next"`
	Prob float64 `json:"prob"`
}

// StateAction 状态-动作对
// 以 state-major, action-minor 的固定顺序平铺枚举，每对携带即时收益和稀疏转移行。
// 本模型中每行至多 2 项，无需通用稀疏矩阵。
type StateAction struct {
	State       int          `json:"state"`
	Action      int          `json:"action"`
	Reward      float64      `json:"reward"`
	Transitions []Transition `json:"transitions"`
}

// DecisionProcess 有限状态-动作对形式的马尔可夫决策过程
// 构建后不可变；求解器只读取，不修改。
type DecisionProcess struct {
	NumStates int
	Discount  float64
	Pairs     []StateAction

	// first[s] 为状态 s 的第一个状态-动作对下标，first[NumStates] == len(Pairs)
	first []int
}

// NewDecisionProcess 由状态-动作对列表构建决策过程并建立每状态索引
// pairs 必须按 state-major 顺序排列，状态编号连续覆盖 0..numStates-1。
func NewDecisionProcess(numStates int, discount float64, pairs []StateAction) (*DecisionProcess, error) {
	if numStates < 1 {
		return nil, fmt.Errorf("%w: state count %d", ErrInvalidParameter, numStates)
	}
	if math.IsNaN(discount) || discount <= 0 || discount > 1 {
		return nil, fmt.Errorf("%w: discount %v not in (0, 1]", ErrInvalidParameter, discount)
	}

	first := make([]int, numStates+1)
	prev := -1
	for i, p := range pairs {
		if p.State < 0 || p.State >= numStates {
			return nil, fmt.Errorf("%w: pair %d references state %d", ErrMalformedProcess, i, p.State)
		}
		if p.State < prev {
			return nil, fmt.Errorf("%w: pairs not in state-major order at index %d", ErrMalformedProcess, i)
		}
		for s := prev + 1; s <= p.State; s++ {
			first[s] = i
		}
		prev = p.State
	}
	for s := prev + 1; s <= numStates; s++ {
		first[s] = len(pairs)
	}

	return &DecisionProcess{
		NumStates: numStates,
		Discount:  discount,
		Pairs:     pairs,
		first:     first,
	}, nil
}

// Actions 返回状态 s 的全部可行状态-动作对（枚举顺序即动作顺序）
func (dp *DecisionProcess) Actions(s int) []StateAction {
	return dp.Pairs[dp.first[s]:dp.first[s+1]]
}

// NumPairs 状态-动作对总数
func (dp *DecisionProcess) NumPairs() int {
	return len(dp.Pairs)
}

// Validate 校验决策过程的概率结构
// 每个状态至少一个可行动作；每行概率非负、目标状态合法、总和与 1 的偏差不超过容差。
func (dp *DecisionProcess) Validate() error {
	for s := 0; s < dp.NumStates; s++ {
		actions := dp.Actions(s)
		if len(actions) == 0 {
			return fmt.Errorf("%w: state %d has no feasible actions", ErrMalformedProcess, s)
		}
		for _, pair := range actions {
			sum := 0.0
			for _, tr := range pair.Transitions {
				if tr.Next < 0 || tr.Next >= dp.NumStates {
					return fmt.Errorf("%w: state %d action %d transitions to out-of-range state %d",
						ErrMalformedProcess, pair.State, pair.Action, tr.Next)
				}
				if tr.Prob < 0 || math.IsNaN(tr.Prob) {
					return fmt.Errorf("%w: state %d action %d has negative probability %v",
						ErrMalformedProcess, pair.State, pair.Action, tr.Prob)
				}
				sum += tr.Prob
			}
			if math.Abs(sum-1) > probTolerance {
				return fmt.Errorf("%w: state %d action %d transition row sums to %v",
					ErrMalformedProcess, pair.State, pair.Action, sum)
			}
		}
	}
	return nil
}
