package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 定价模型标识
const PricingModelBinomialLattice = "BINOMIAL_LATTICE"

// ValuationResult 估值结果实体
// 记录一次格点估值的输入回显与输出摘要，供查询与下游消费。
type ValuationResult struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ValuationID string    `json:"valuation_id"`
	Symbol      string    `json:"symbol"`

	// 期权在期间 0、初始价格状态下的最优价值
	OptionValue  decimal.Decimal `json:"option_value"`
	StrikePrice  decimal.Decimal `json:"strike_price"`
	InitialPrice decimal.Decimal `json:"initial_price"`

	Volatility      float64 `json:"volatility"`
	AnnualRate      float64 `json:"annual_rate"`
	ExpirationYears float64 `json:"expiration_years"`
	NumPeriods      int     `json:"num_periods"`
	Discount        float64 `json:"discount"`
	UpProbability   float64 `json:"up_probability"`

	// 期间 0 初始状态是否立即行权最优
	ImmediateExercise bool `json:"immediate_exercise"`
	// 每期间的行权临界价（行权边界曲线）
	CriticalPrices []float64 `json:"critical_prices"`

	CalculatedAt int64  `json:"calculated_at"`
	PricingModel string `json:"pricing_model"`
}
