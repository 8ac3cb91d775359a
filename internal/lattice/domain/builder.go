package domain

import (
	"fmt"
	"math"
)

// ModelParams 美式看跌期权二叉格点模型参数
type ModelParams struct {
	// 到期时间（年）
	ExpirationYears float64 `json:"expiration_years"`
	// 年化波动率
	Volatility float64 `json:"volatility"`
	// 无风险年利率
	AnnualRate float64 `json:"annual_rate"`
	// 执行价格
	StrikePrice float64 `json:"strike_price"`
	// 标的初始价格
	InitialPrice float64 `json:"initial_price"`
	// 到期前的离散时间步数 N
	NumPeriods int `json:"num_periods"`
}

// Validate 校验模型参数：标量必须为正且有限，步数至少为 1
func (p ModelParams) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidParameter, name, v)
		}
		return nil
	}
	if err := check("expiration_years", p.ExpirationYears); err != nil {
		return err
	}
	if err := check("volatility", p.Volatility); err != nil {
		return err
	}
	if err := check("annual_rate", p.AnnualRate); err != nil {
		return err
	}
	if err := check("strike_price", p.StrikePrice); err != nil {
		return err
	}
	if err := check("initial_price", p.InitialPrice); err != nil {
		return err
	}
	if p.NumPeriods < 1 {
		return fmt.Errorf("%w: num_periods must be at least 1, got %d", ErrInvalidParameter, p.NumPeriods)
	}
	return nil
}

// PutModel 构建完成的格点定价模型
// 状态 0..2N 为升序排列的价格状态，状态 2N+1 为"已行权"吸收态。
type PutModel struct {
	Params  ModelParams
	Process *DecisionProcess
	// 价格格点，Prices[k] = u^(k-N) * S0，严格升序
	Prices []float64
	// 单期时长 τ = T/N
	PeriodLength float64
	// 单期贴现因子 β = exp(-r·τ)
	Discount float64
	// 上行乘数 u = exp(σ·√τ)
	UpFactor float64
	// 上行概率 q，未截断到 [0,1]；超界时求解阶段会因负概率拒绝该模型
	UpProbability float64
}

// BuildPutModel 由格点参数构建美式看跌期权的决策过程
// 价格状态的 hold 动作只转移到相邻价格状态（边界处夹取为自环分量），
// exercise 动作以概率 1 进入吸收态并获得 K - price 的收益。
func BuildPutModel(p ModelParams) (*PutModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.NumPeriods
	tau := p.ExpirationYears / float64(n)
	beta := math.Exp(-p.AnnualRate * tau)
	u := math.Exp(p.Volatility * math.Sqrt(tau))
	q := 0.5 + math.Sqrt(tau)*(p.AnnualRate-p.Volatility*p.Volatility/2)/(2*p.Volatility)

	numPrices := 2*n + 1
	prices := make([]float64, numPrices)
	for k := 0; k < numPrices; k++ {
		prices[k] = math.Pow(u, float64(k-n)) * p.InitialPrice
	}

	absorbing := numPrices
	pairs := make([]StateAction, 0, 2*numPrices+1)
	for k := 0; k < numPrices; k++ {
		down := k - 1
		if down < 0 {
			down = 0
		}
		up := k + 1
		if up > numPrices-1 {
			up = numPrices - 1
		}
		pairs = append(pairs, StateAction{
			State:  k,
			Action: ActionHold,
			Reward: 0,
			Transitions: []Transition{
				{Next: down, Prob: 1 - q},
				{Next: up, Prob: q},
			},
		})
		pairs = append(pairs, StateAction{
			State:       k,
			Action:      ActionExercise,
			Reward:      p.StrikePrice - prices[k],
			Transitions: []Transition{{Next: absorbing, Prob: 1}},
		})
	}
	pairs = append(pairs, StateAction{
		State:       absorbing,
		Action:      ActionHold,
		Reward:      0,
		Transitions: []Transition{{Next: absorbing, Prob: 1}},
	})

	process, err := NewDecisionProcess(numPrices+1, beta, pairs)
	if err != nil {
		return nil, err
	}

	return &PutModel{
		Params:        p,
		Process:       process,
		Prices:        prices,
		PeriodLength:  tau,
		Discount:      beta,
		UpFactor:      u,
		UpProbability: q,
	}, nil
}

// NumStates 状态总数（价格状态 + 吸收态）
func (m *PutModel) NumStates() int {
	return len(m.Prices) + 1
}

// AbsorbingState 吸收态下标
func (m *PutModel) AbsorbingState() int {
	return len(m.Prices)
}

// InitialState 初始价格 S0 对应的状态下标（格点中心）
func (m *PutModel) InitialState() int {
	return m.Params.NumPeriods
}

// Solve 对模型执行整个期限上的逆向归纳（终值为零向量）
func (m *PutModel) Solve() (*Solution, error) {
	return Solve(m.Process, m.Params.NumPeriods, nil)
}
