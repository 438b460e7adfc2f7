package billing

import "context"

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *PaymentMethod) error
	GetByID(ctx context.Context, id int64) (*PaymentMethod, error)
	Update(ctx context.Context, m *PaymentMethod) error
	Delete(ctx context.Context, id int64) error
	// List returns methods by display order, then id. enabledOnly hides
	// disabled methods.
	List(ctx context.Context, enabledOnly bool) ([]*PaymentMethod, error)
}
