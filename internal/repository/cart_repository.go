package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/db"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	dbCartItems, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	items, err := mapGetCartRowsToDomain(dbCartItems)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *cartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("item.Validate: %w", err)
	}

	params := db.AddItemParams{
		OwnerID:       ownerID,
		ProductID:     item.ProductID,
		ProductType:   string(item.Type),
		PriceAmount:   item.Price.Amount,
		PriceCurrency: item.Price.Currency.String(),
		Quantity:      int32(item.Quantity),
		Weight:        item.Weight,
	}

	if fs := item.FlashSale; fs != nil {
		params.FlashSaleID = uuid.NullUUID{UUID: fs.FlashSaleID, Valid: true}
		params.FlashOriginalAmount = decimal.NewNullDecimal(fs.OriginalPrice.Amount)
		params.FlashDiscountPercentage = pgtype.Int4{Int32: int32(fs.DiscountPercentage), Valid: true}
		params.FlashEndTime = pgtype.Timestamptz{Time: fs.EndTime, Valid: true}
	}

	if err := r.q.AddItem(ctx, params); err != nil {
		return fmt.Errorf("q.AddItem: %w", err)
	}

	return nil
}

func (r *cartRepository) UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, units decimal.Decimal) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if units.IsNegative() {
		return false, fmt.Errorf("units are negative")
	}

	if units.IsZero() {
		return r.DeleteItem(ctx, ownerID, productID)
	}

	rowsAffected, err := r.q.UpdateItemUnits(ctx, db.UpdateItemUnitsParams{
		OwnerID:   ownerID,
		ProductID: productID,
		Units:     units,
	})
	if err != nil {
		return false, fmt.Errorf("q.UpdateItemUnits: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.DeleteItem(ctx, db.DeleteItemParams{
		OwnerID:   ownerID,
		ProductID: productID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) MarkStale(ctx context.Context, ownerID string, productIDs []uuid.UUID) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if len(productIDs) == 0 {
		return nil
	}

	if _, err := r.q.MarkStale(ctx, db.MarkStaleParams{
		OwnerID:    ownerID,
		ProductIds: productIDs,
	}); err != nil {
		return fmt.Errorf("q.MarkStale: %w", err)
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.q.ClearCart(ctx, ownerID); err != nil {
		return fmt.Errorf("q.ClearCart: %w", err)
	}

	return nil
}

func mapGetCartRowToDomain(row db.GetCartRow) (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	productType, err := domain.ParseProductType(row.ProductType)
	if err != nil {
		return domain.CartItem{}, err
	}

	item := domain.CartItem{
		ProductID: row.ProductID,
		Type:      productType,
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:  int(row.Quantity),
		Weight:    row.Weight,
		Stale:     row.Stale,
		CreatedAt: row.CreatedAt,
	}

	if row.FlashSaleID.Valid {
		item.FlashSale = &domain.FlashSaleSnapshot{
			FlashSaleID:        row.FlashSaleID.UUID,
			OriginalPrice:      domain.Money{Amount: row.FlashOriginalAmount.Decimal, Currency: parsedCurrency},
			DiscountPercentage: int(row.FlashDiscountPercentage.Int32),
			EndTime:            row.FlashEndTime.Time,
		}
	}

	return item, nil
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapGetCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
