package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/latticepricing/internal/lattice/domain"
	"github.com/wyfcoding/latticepricing/pkg/metrics"
	"github.com/wyfcoding/latticepricing/pkg/utils"
)

// ValuationCache 最新估值缓存接口
type ValuationCache interface {
	GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, bool, error)
	SaveLatest(ctx context.Context, result *domain.ValuationResult) error
}

// ValuationService 估值应用服务
// 编排格点构建与逆向归纳求解，负责结果落库、缓存与事件发布。
type ValuationService struct {
	repo      domain.ValuationRepository
	cache     ValuationCache
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	idgen     *utils.SnowflakeID

	defaultPeriods int
	maxPeriods     int
}

// NewValuationService 创建估值应用服务
func NewValuationService(
	repo domain.ValuationRepository,
	cache ValuationCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	defaultPeriods, maxPeriods int,
) *ValuationService {
	return &ValuationService{
		repo:           repo,
		cache:          cache,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
		idgen:          utils.NewSnowflakeID(1),
		defaultPeriods: defaultPeriods,
		maxPeriods:     maxPeriods,
	}
}

// ValuePut 对美式看跌期权执行格点估值
func (s *ValuationService) ValuePut(ctx context.Context, cmd ValuePutCommand) (*domain.ValuationResult, error) {
	if cmd.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidParameter)
	}

	params, err := s.toParams(cmd)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	model, sol, err := s.solve(params)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ValuationErrorsTotal.Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ValuationsTotal.Inc()
		s.metrics.ValuationDuration.Observe(time.Since(start).Seconds())
		s.metrics.LatticeStates.Set(float64(model.NumStates()))
	}

	critical, err := model.CriticalPrices(sol)
	if err != nil {
		return nil, err
	}

	initial := model.InitialState()
	result := &domain.ValuationResult{
		ValuationID:       fmt.Sprintf("VAL-%d", s.idgen.Generate()),
		Symbol:            cmd.Symbol,
		OptionValue:       decimal.NewFromFloat(sol.Values[0][initial]),
		StrikePrice:       decimal.NewFromFloat(params.StrikePrice),
		InitialPrice:      decimal.NewFromFloat(params.InitialPrice),
		Volatility:        params.Volatility,
		AnnualRate:        params.AnnualRate,
		ExpirationYears:   params.ExpirationYears,
		NumPeriods:        params.NumPeriods,
		Discount:          model.Discount,
		UpProbability:     model.UpProbability,
		ImmediateExercise: sol.Policies[0][initial] == domain.ActionExercise,
		CriticalPrices:    critical,
		CalculatedAt:      time.Now().Unix(),
		PricingModel:      domain.PricingModelBinomialLattice,
	}

	if err := s.repo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save valuation: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SaveLatest(ctx, result); err != nil {
			s.logger.WarnContext(ctx, "failed to cache valuation", "symbol", cmd.Symbol, "error", err)
		}
	}

	if s.publisher != nil {
		event := domain.AmericanPutValuedEvent{
			ValuationID:     result.ValuationID,
			Symbol:          result.Symbol,
			OptionValue:     sol.Values[0][initial],
			StrikePrice:     params.StrikePrice,
			InitialPrice:    params.InitialPrice,
			Volatility:      params.Volatility,
			AnnualRate:      params.AnnualRate,
			ExpirationYears: params.ExpirationYears,
			NumPeriods:      params.NumPeriods,
			PricingModel:    result.PricingModel,
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.AmericanPutValuedEventType, cmd.Symbol, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish valuation event", "symbol", cmd.Symbol, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "valuation completed",
		"valuation_id", result.ValuationID,
		"symbol", result.Symbol,
		"option_value", result.OptionValue,
		"num_periods", params.NumPeriods,
	)
	return result, nil
}

// GetLatestValuation 查询标的的最新估值，优先读缓存
func (s *ValuationService) GetLatestValuation(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidParameter)
	}

	if s.cache != nil {
		result, ok, err := s.cache.GetLatest(ctx, symbol)
		if err != nil {
			s.logger.WarnContext(ctx, "valuation cache read failed", "symbol", symbol, "error", err)
		} else if ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			return result, nil
		}
	}

	result, err := s.repo.FindLatestBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SaveLatest(ctx, result); err != nil {
			s.logger.WarnContext(ctx, "failed to backfill valuation cache", "symbol", symbol, "error", err)
		}
	}
	return result, nil
}

// ListValuations 分页查询历史估值
func (s *ValuationService) ListValuations(ctx context.Context, symbol string, limit, offset int) ([]*domain.ValuationResult, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, symbol, limit, offset)
}

// GetExerciseBoundary 计算行权边界（纯计算，不落库）
func (s *ValuationService) GetExerciseBoundary(ctx context.Context, cmd ValuePutCommand) (*ExerciseBoundaryView, error) {
	params, err := s.toParams(cmd)
	if err != nil {
		return nil, err
	}

	model, sol, err := s.solve(params)
	if err != nil {
		return nil, err
	}

	critical, err := model.CriticalPrices(sol)
	if err != nil {
		return nil, err
	}
	earliest, err := model.EarliestExercise(sol)
	if err != nil {
		return nil, err
	}

	return &ExerciseBoundaryView{
		Symbol:           cmd.Symbol,
		CriticalPrices:   critical,
		EarliestExercise: earliest,
		Prices:           model.Prices,
		InitialValues:    sol.Values[0][:len(model.Prices)],
	}, nil
}

// toParams 将命令转换为模型参数并套用步数默认值与上限
func (s *ValuationService) toParams(cmd ValuePutCommand) (domain.ModelParams, error) {
	periods := cmd.NumPeriods
	if periods == 0 {
		periods = s.defaultPeriods
	}
	if s.maxPeriods > 0 && periods > s.maxPeriods {
		return domain.ModelParams{}, fmt.Errorf("%w: num_periods %d exceeds limit %d",
			domain.ErrInvalidParameter, periods, s.maxPeriods)
	}

	return domain.ModelParams{
		ExpirationYears: cmd.ExpirationYears,
		Volatility:      cmd.Volatility,
		AnnualRate:      cmd.AnnualRate,
		StrikePrice:     cmd.StrikePrice,
		InitialPrice:    cmd.InitialPrice,
		NumPeriods:      periods,
	}, nil
}

// solve 构建模型并执行逆向归纳
func (s *ValuationService) solve(params domain.ModelParams) (*domain.PutModel, *domain.Solution, error) {
	model, err := domain.BuildPutModel(params)
	if err != nil {
		return nil, nil, err
	}
	sol, err := model.Solve()
	if err != nil {
		return nil, nil, err
	}
	return model, sol, nil
}
