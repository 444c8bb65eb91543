package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReorderRule struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ProductId int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Product   *Product        `gorm:"foreignKey:ProductId" json:"product,omitempty"`
	MinQty    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"min_qty"`
	TargetQty decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"target_qty"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewReorderRule struct {
	ProductId int             `json:"product_id" binding:"required"`
	MinQty    decimal.Decimal `json:"min_qty"`
	TargetQty decimal.Decimal `json:"target_qty"`
	IsActive  *bool           `json:"is_active"`
}

func (input *NewReorderRule) validate(ctx context.Context, db *gorm.DB) error {
	if err := utils.ValidateResourceId[Product](ctx, db, input.ProductId); err != nil {
		return utils.NewValidationError("product %d not found", input.ProductId)
	}
	if input.MinQty.IsNegative() || input.TargetQty.IsNegative() {
		return utils.NewValidationError("quantities cannot be negative")
	}
	if input.TargetQty.LessThan(input.MinQty) {
		return utils.NewValidationError("target qty cannot be less than min qty")
	}
	return nil
}

func CreateReorderRule(ctx context.Context, db *gorm.DB, input *NewReorderRule) (*ReorderRule, error) {

	if err := input.validate(ctx, db); err != nil {
		return nil, err
	}

	rule := ReorderRule{
		ProductId: input.ProductId,
		MinQty:    input.MinQty,
		TargetQty: input.TargetQty,
		IsActive:  input.IsActive,
	}
	if rule.IsActive == nil {
		rule.IsActive = utils.NewTrue()
	}
	if err := db.WithContext(ctx).Create(&rule).Error; err != nil {
		return nil, err
	}
	invalidateRestockSuggestionCache(ctx)
	return &rule, nil
}

func UpdateReorderRule(ctx context.Context, db *gorm.DB, id int, input *NewReorderRule) (*ReorderRule, error) {

	rule, err := GetResource[ReorderRule](ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db); err != nil {
		return nil, err
	}

	rule.ProductId = input.ProductId
	rule.MinQty = input.MinQty
	rule.TargetQty = input.TargetQty
	if input.IsActive != nil {
		rule.IsActive = input.IsActive
	}
	if err := db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	invalidateRestockSuggestionCache(ctx)
	return rule, nil
}

func DeleteReorderRule(ctx context.Context, db *gorm.DB, id int) error {
	if err := DeleteResource[ReorderRule](ctx, db, id); err != nil {
		return err
	}
	invalidateRestockSuggestionCache(ctx)
	return nil
}

// RestockSuggestion is a product whose on-hand total has fallen below its rule's minimum.
type RestockSuggestion struct {
	ProductId    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	OnHand       decimal.Decimal `json:"on_hand"`
	MinQty       decimal.Decimal `json:"min_qty"`
	TargetQty    decimal.Decimal `json:"target_qty"`
	SuggestedQty decimal.Decimal `json:"suggested_qty"`
}

const (
	restockSuggestionCacheKey = "cache:restock-suggestions"
	restockSuggestionCacheTTL = time.Minute
)

func invalidateRestockSuggestionCache(ctx context.Context) {
	_ = config.RemoveRedisKey(ctx, restockSuggestionCacheKey)
}

// ListRestockSuggestions sums on-hand stock per product against active rules.
// The result is cached briefly; rule mutations invalidate it, quantity drift
// is bounded by the TTL.
func ListRestockSuggestions(ctx context.Context, db *gorm.DB) ([]*RestockSuggestion, error) {

	var cached []*RestockSuggestion
	if hit, err := config.GetRedisObject(ctx, restockSuggestionCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	var suggestions []*RestockSuggestion
	if err := db.WithContext(ctx).Raw(`
		SELECT
			r.product_id AS product_id,
			p.name AS product_name,
			COALESCE(SUM(b.quantity), 0) AS on_hand,
			r.min_qty AS min_qty,
			r.target_qty AS target_qty,
			r.target_qty - COALESCE(SUM(b.quantity), 0) AS suggested_qty
		FROM reorder_rules r
		JOIN products p ON p.id = r.product_id
		LEFT JOIN inventory_batches b ON b.product_id = r.product_id
		WHERE r.is_active = true
		GROUP BY r.product_id, p.name, r.min_qty, r.target_qty
		HAVING COALESCE(SUM(b.quantity), 0) < r.min_qty
		ORDER BY p.name
	`).Scan(&suggestions).Error; err != nil {
		return nil, err
	}
	_ = config.SetRedisObject(ctx, restockSuggestionCacheKey, suggestions, restockSuggestionCacheTTL)
	return suggestions, nil
}
