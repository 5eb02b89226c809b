package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/db"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
)

type checkoutRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCheckout(pool *pgxpool.Pool) (port.CheckoutRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &checkoutRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func (r *checkoutRepository) Checkout(ctx context.Context, ownerID string, items []domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	// the cart is cleared through a cart repository bound to the same transaction
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		q := r.q.WithTx(tx)

		for _, item := range items {
			if item.FlashSale == nil {
				continue
			}

			// weighed goods consume one unit of flash sale stock per line
			amount := int32(item.Quantity)
			if item.Type == domain.ProductTypeWeight {
				amount = 1
			}

			rowsAffected, err := q.IncrementSold(ctx, db.IncrementSoldParams{
				FlashSaleID: item.FlashSale.FlashSaleID,
				ProductID:   item.ProductID,
				Amount:      amount,
			})
			if err != nil {
				return fmt.Errorf("q.IncrementSold: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("product[%s]: %w", item.ProductID, port.ErrFlashSaleSoldOut)
			}
		}

		if err := NewCartWithTx(tx).Clear(ctx, ownerID); err != nil {
			return fmt.Errorf("carts.Clear: %w", err)
		}

		return nil
	})
}
