package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
)

// FlashSaleSource is the live view of flash sales used for pricing and validation.
type FlashSaleSource interface {
	Membership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error)
	Active(ctx context.Context, now time.Time) ([]domain.FlashSale, error)
}

type FlashSaleRepository interface {
	FlashSaleSource

	Create(ctx context.Context, sale domain.FlashSale) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (domain.FlashSale, error)
	InfoFor(ctx context.Context, productID uuid.UUID, now time.Time) (domain.FlashSaleInfo, bool, error)
}
