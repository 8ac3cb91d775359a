package domain

import "time"

// 领域事件类型
const (
	AmericanPutValuedEventType = "lattice.american_put_valued"
)

// AmericanPutValuedEvent 美式看跌期权估值完成事件
type AmericanPutValuedEvent struct {
	ValuationID     string    `json:"valuation_id"`
	Symbol          string    `json:"symbol"`
	OptionValue     float64   `json:"option_value"`
	StrikePrice     float64   `json:"strike_price"`
	InitialPrice    float64   `json:"initial_price"`
	Volatility      float64   `json:"volatility"`
	AnnualRate      float64   `json:"annual_rate"`
	ExpirationYears float64   `json:"expiration_years"`
	NumPeriods      int       `json:"num_periods"`
	PricingModel    string    `json:"pricing_model"`
	CalculatedAt    int64     `json:"calculated_at"`
	OccurredOn      time.Time `json:"occurred_on"`
}
