package mysql

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/latticepricing/internal/lattice/domain"
)

// ValuationModel 估值结果表模型
type ValuationModel struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	ValuationID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Symbol      string `gorm:"type:varchar(32);index:idx_symbol_created;not null"`

	OptionValue  string `gorm:"type:decimal(32,16);not null"`
	StrikePrice  string `gorm:"type:decimal(32,16);not null"`
	InitialPrice string `gorm:"type:decimal(32,16);not null"`

	Volatility      float64 `gorm:"type:double;not null"`
	AnnualRate      float64 `gorm:"type:double;not null"`
	ExpirationYears float64 `gorm:"type:double;not null"`
	NumPeriods      int     `gorm:"not null"`
	Discount        float64 `gorm:"type:double;not null"`
	UpProbability   float64 `gorm:"type:double;not null"`

	ImmediateExercise bool   `gorm:"not null"`
	CriticalPrices    string `gorm:"type:text"`

	CalculatedAt int64  `gorm:"not null"`
	PricingModel string `gorm:"type:varchar(32);not null"`
}

// TableName 指定表名
func (ValuationModel) TableName() string {
	return "lattice_valuations"
}

func toModel(result *domain.ValuationResult) (*ValuationModel, error) {
	critical, err := json.Marshal(result.CriticalPrices)
	if err != nil {
		return nil, err
	}
	return &ValuationModel{
		ID:                result.ID,
		ValuationID:       result.ValuationID,
		Symbol:            result.Symbol,
		OptionValue:       result.OptionValue.String(),
		StrikePrice:       result.StrikePrice.String(),
		InitialPrice:      result.InitialPrice.String(),
		Volatility:        result.Volatility,
		AnnualRate:        result.AnnualRate,
		ExpirationYears:   result.ExpirationYears,
		NumPeriods:        result.NumPeriods,
		Discount:          result.Discount,
		UpProbability:     result.UpProbability,
		ImmediateExercise: result.ImmediateExercise,
		CriticalPrices:    string(critical),
		CalculatedAt:      result.CalculatedAt,
		PricingModel:      result.PricingModel,
	}, nil
}

func toDomain(model *ValuationModel) (*domain.ValuationResult, error) {
	optionValue, err := decimal.NewFromString(model.OptionValue)
	if err != nil {
		return nil, err
	}
	strikePrice, err := decimal.NewFromString(model.StrikePrice)
	if err != nil {
		return nil, err
	}
	initialPrice, err := decimal.NewFromString(model.InitialPrice)
	if err != nil {
		return nil, err
	}

	var critical []float64
	if model.CriticalPrices != "" {
		if err := json.Unmarshal([]byte(model.CriticalPrices), &critical); err != nil {
			return nil, err
		}
	}

	return &domain.ValuationResult{
		ID:                model.ID,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
		ValuationID:       model.ValuationID,
		Symbol:            model.Symbol,
		OptionValue:       optionValue,
		StrikePrice:       strikePrice,
		InitialPrice:      initialPrice,
		Volatility:        model.Volatility,
		AnnualRate:        model.AnnualRate,
		ExpirationYears:   model.ExpirationYears,
		NumPeriods:        model.NumPeriods,
		Discount:          model.Discount,
		UpProbability:     model.UpProbability,
		ImmediateExercise: model.ImmediateExercise,
		CriticalPrices:    critical,
		CalculatedAt:      model.CalculatedAt,
		PricingModel:      model.PricingModel,
	}, nil
}
