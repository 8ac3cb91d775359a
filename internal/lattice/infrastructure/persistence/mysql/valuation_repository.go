package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/latticepricing/internal/lattice/domain"
	"gorm.io/gorm"
)

// ValuationRepository 估值结果仓储的 MySQL 实现
type ValuationRepository struct {
	db *gorm.DB
}

// NewValuationRepository 创建估值仓储
func NewValuationRepository(db *gorm.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// Save 保存估值结果
func (r *ValuationRepository) Save(ctx context.Context, result *domain.ValuationResult) error {
	model, err := toModel(result)
	if err != nil {
		return fmt.Errorf("failed to encode valuation: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save valuation: %w", err)
	}
	result.ID = model.ID
	result.CreatedAt = model.CreatedAt
	result.UpdatedAt = model.UpdatedAt
	return nil
}

// FindLatestBySymbol 查询标的最新一次估值
func (r *ValuationRepository) FindLatestBySymbol(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	var model ValuationModel
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrValuationNotFound
		}
		return nil, fmt.Errorf("failed to find valuation: %w", err)
	}
	return toDomain(&model)
}

// List 分页查询估值历史，symbol 为空时查询全部
func (r *ValuationRepository) List(ctx context.Context, symbol string, limit, offset int) ([]*domain.ValuationResult, int64, error) {
	query := r.db.WithContext(ctx).Model(&ValuationModel{})
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count valuations: %w", err)
	}

	var models []*ValuationModel
	err := query.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list valuations: %w", err)
	}

	results := make([]*domain.ValuationResult, 0, len(models))
	for _, model := range models {
		result, err := toDomain(model)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode valuation %s: %w", model.ValuationID, err)
		}
		results = append(results, result)
	}
	return results, total, nil
}
