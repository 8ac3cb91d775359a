package application

// ValuePutCommand 美式看跌期权估值命令
type ValuePutCommand struct {
	Symbol          string  `json:"symbol"`
	StrikePrice     float64 `json:"strike_price"`
	InitialPrice    float64 `json:"initial_price"`
	Volatility      float64 `json:"volatility"`
	AnnualRate      float64 `json:"annual_rate"`
	ExpirationYears float64 `json:"expiration_years"`
	// 为 0 时使用服务配置的默认步数
	NumPeriods int `json:"num_periods"`
}

// ExerciseBoundaryView 行权边界查询结果
type ExerciseBoundaryView struct {
	Symbol string `json:"symbol"`
	// 每期间的行权临界价
	CriticalPrices []float64 `json:"critical_prices"`
	// 每个价格状态首次行权最优的期间，-1 表示从未行权
	EarliestExercise []int `json:"earliest_exercise"`
	// 价格格点
	Prices []float64 `json:"prices"`
	// 期间 0 各价格状态的期权价值
	InitialValues []float64 `json:"initial_values"`
}
