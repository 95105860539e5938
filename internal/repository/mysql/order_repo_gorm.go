package mysql

import (
	"context"
	"errors"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOrderRepository(db *gorm.DB, logger *zap.Logger) repository.OrderRepository {
	return &orderRepo{db: db, logger: logger}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateOrder
		}
		r.logger.Error("order save failed", zap.String("order_id", order.ID), zap.Error(result.Error))
		return result.Error
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("FindByID failed", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		r.logger.Error("FindByUserID failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// TransitionStatus is a single UPDATE guarded on the current status, so two
// concurrent deliveries of the same event cannot both apply.
func (r *orderRepo) TransitionStatus(ctx context.Context, id string, change repository.StatusChange) (bool, error) {
	sources := domain.SourcesOf(change.To)
	if len(sources) == 0 {
		return false, nil
	}

	updates := map[string]interface{}{
		"status":     change.To,
		"updated_at": change.At,
	}
	if change.PaymentID != "" {
		updates["payment_id"] = change.PaymentID
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("TransitionStatus failed",
			zap.String("order_id", id),
			zap.String("to", string(change.To)),
			zap.Error(result.Error))
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
