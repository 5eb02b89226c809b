package port

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	// AddItem upserts a line: units are added to an existing line, the price snapshot
	// is replaced and the stale flag is cleared.
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) error
	// UpdateItem sets the units of a line; zero units removes it.
	UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, units decimal.Decimal) (bool, error)
	DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error)
	MarkStale(ctx context.Context, ownerID string, productIDs []uuid.UUID) error
	Clear(ctx context.Context, ownerID string) error
}

// ErrFlashSaleSoldOut is returned by Checkout when a flash sale line exceeds the
// remaining sale stock.
var ErrFlashSaleSoldOut = errors.New("flash sale stock exhausted")

type CheckoutRepository interface {
	// Checkout records flash sale sales for the given lines and empties the cart in a
	// single transaction.
	Checkout(ctx context.Context, ownerID string, items []domain.CartItem) error
}
