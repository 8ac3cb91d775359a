package domain

import "context"

// ValuationRepository 估值结果仓储接口
type ValuationRepository interface {
	Save(ctx context.Context, result *ValuationResult) error
	FindLatestBySymbol(ctx context.Context, symbol string) (*ValuationResult, error)
	List(ctx context.Context, symbol string, limit, offset int) ([]*ValuationResult, int64, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}
