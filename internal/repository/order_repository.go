package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
)

var ErrDuplicateOrder = errors.New("order already exists")

// StatusChange is a guarded write: it only lands when the stored status is
// one of the statuses domain.SourcesOf(To) allows.
type StatusChange struct {
	To        domain.OrderStatus
	PaymentID string
	At        time.Time
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Order, error)
	// TransitionStatus reports applied=false when the guard rejected the
	// write, including when the order is already in the target status.
	TransitionStatus(ctx context.Context, id string, change StatusChange) (applied bool, err error)
}
