package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	guestCartKeyPrefix = "cart:"
	guestCartTTL       = 30 * 24 * time.Hour
	maxWatchRetries    = 16
)

// guestCartItem is the JSON record stored for each line of a guest cart.
type guestCartItem struct {
	ProductID uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity,omitempty"`
	Weight    decimal.Decimal `json:"weight"`
	FlashSale *guestFlashSale `json:"flashSale,omitempty"`
	Stale     bool            `json:"stale,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type guestFlashSale struct {
	FlashSaleID        uuid.UUID       `json:"flashSaleId"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	EndTime            time.Time       `json:"endTime"`
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type guestCartRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
	clock  func() time.Time
}

// NewGuestCart stores carts of anonymous shoppers as a JSON array under cart:<owner>.
func NewGuestCart(client redis.UniversalClient) (port.CartRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}

	return &guestCartRepository{
		client: client,
		ttl:    guestCartTTL,
		clock:  time.Now,
	}, nil
}

func (r *guestCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	records, err := r.load(ctx, r.client, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	items := make([]domain.CartItem, 0, len(records))
	for _, rec := range records {
		item, err := rec.toDomain()
		if err != nil {
			return domain.Cart{}, fmt.Errorf("toDomain: %w", err)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		items = nil
	}

	return domain.Cart{OwnerID: ownerID, Items: items}, nil
}

func (r *guestCartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("item.Validate: %w", err)
	}

	_, err := r.update(ctx, ownerID, func(records []guestCartItem) ([]guestCartItem, bool) {
		rec := fromDomain(item)

		for i, existing := range records {
			if existing.ProductID != item.ProductID {
				continue
			}
			rec.Quantity += existing.Quantity
			rec.Weight = rec.Weight.Add(existing.Weight)
			rec.CreatedAt = existing.CreatedAt
			records[i] = rec
			return records, true
		}

		rec.CreatedAt = r.clock().UTC()
		return append(records, rec), true
	})

	return err
}

func (r *guestCartRepository) UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, units decimal.Decimal) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if units.IsNegative() {
		return false, fmt.Errorf("units are negative")
	}

	if units.IsZero() {
		return r.DeleteItem(ctx, ownerID, productID)
	}

	var unitsErr error

	changed, err := r.update(ctx, ownerID, func(records []guestCartItem) ([]guestCartItem, bool) {
		unitsErr = nil

		for i, rec := range records {
			if rec.ProductID != productID {
				continue
			}

			item, err := rec.toDomain()
			if err != nil {
				unitsErr = fmt.Errorf("toDomain: %w", err)
				return records, false
			}
			updated, err := item.WithUnits(units)
			if err != nil {
				unitsErr = fmt.Errorf("item.WithUnits: %w", err)
				return records, false
			}

			records[i] = fromDomain(updated)
			return records, true
		}

		return records, false
	})
	if err != nil {
		return false, err
	}
	if unitsErr != nil {
		return false, unitsErr
	}

	return changed, nil
}

func (r *guestCartRepository) DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	return r.update(ctx, ownerID, func(records []guestCartItem) ([]guestCartItem, bool) {
		for i, rec := range records {
			if rec.ProductID == productID {
				return append(records[:i], records[i+1:]...), true
			}
		}
		return records, false
	})
}

func (r *guestCartRepository) MarkStale(ctx context.Context, ownerID string, productIDs []uuid.UUID) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if len(productIDs) == 0 {
		return nil
	}

	stale := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		stale[id] = struct{}{}
	}

	_, err := r.update(ctx, ownerID, func(records []guestCartItem) ([]guestCartItem, bool) {
		changed := false
		for i := range records {
			if _, ok := stale[records[i].ProductID]; ok && !records[i].Stale {
				records[i].Stale = true
				changed = true
			}
		}
		return records, changed
	})

	return err
}

func (r *guestCartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if err := r.client.Del(ctx, guestCartKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}

// update applies fn under WATCH so concurrent writers to the same cart do not lose
// each other's changes. fn reports whether it changed anything.
func (r *guestCartRepository) update(ctx context.Context, ownerID string, fn func([]guestCartItem) ([]guestCartItem, bool)) (bool, error) {
	key := guestCartKey(ownerID)
	var changed bool

	txf := func(tx *redis.Tx) error {
		records, err := r.load(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		records, changed = fn(records)
		if !changed {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(records) == 0 {
				pipe.Del(ctx, key)
				return nil
			}

			payload, err := json.Marshal(records)
			if err != nil {
				return fmt.Errorf("json.Marshal: %w", err)
			}
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("client.Watch: %w", err)
		}
		return changed, nil
	}

	return false, fmt.Errorf("cart[%s] update: too many concurrent writers", ownerID)
}

func (r *guestCartRepository) load(ctx context.Context, c stringGetter, ownerID string) ([]guestCartItem, error) {
	payload, err := c.Get(ctx, guestCartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	var records []guestCartItem
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return records, nil
}

func guestCartKey(ownerID string) string {
	return guestCartKeyPrefix + ownerID
}

func fromDomain(item domain.CartItem) guestCartItem {
	rec := guestCartItem{
		ProductID: item.ProductID,
		Type:      string(item.Type),
		Price:     item.Price.Amount,
		Currency:  item.Price.Currency.String(),
		Quantity:  item.Quantity,
		Weight:    item.Weight,
		Stale:     item.Stale,
		CreatedAt: item.CreatedAt,
	}

	if fs := item.FlashSale; fs != nil {
		rec.FlashSale = &guestFlashSale{
			FlashSaleID:        fs.FlashSaleID,
			OriginalPrice:      fs.OriginalPrice.Amount,
			DiscountPercentage: fs.DiscountPercentage,
			EndTime:            fs.EndTime,
		}
	}

	return rec
}

func (rec guestCartItem) toDomain() (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(rec.Currency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", rec.Currency, err)
	}

	productType, err := domain.ParseProductType(rec.Type)
	if err != nil {
		return domain.CartItem{}, err
	}

	item := domain.CartItem{
		ProductID: rec.ProductID,
		Type:      productType,
		Price:     domain.Money{Amount: rec.Price, Currency: parsedCurrency},
		Quantity:  rec.Quantity,
		Weight:    rec.Weight,
		Stale:     rec.Stale,
		CreatedAt: rec.CreatedAt,
	}

	if fs := rec.FlashSale; fs != nil {
		item.FlashSale = &domain.FlashSaleSnapshot{
			FlashSaleID:        fs.FlashSaleID,
			OriginalPrice:      domain.Money{Amount: fs.OriginalPrice, Currency: parsedCurrency},
			DiscountPercentage: fs.DiscountPercentage,
			EndTime:            fs.EndTime,
		}
	}

	return item, nil
}
