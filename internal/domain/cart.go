package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	OwnerID string
	Items   []CartItem
}

// CartItem is a point-in-time quote: price and flash sale data are copies taken when
// the item was added and are not refreshed from the catalog.
type CartItem struct {
	ProductID uuid.UUID
	Type      ProductType
	Price     Money
	Quantity  int
	Weight    decimal.Decimal
	FlashSale *FlashSaleSnapshot
	Stale     bool

	CreatedAt time.Time
}

type FlashSaleSnapshot struct {
	FlashSaleID        uuid.UUID
	OriginalPrice      Money
	DiscountPercentage int
	EndTime            time.Time
}

// Units is the multiplier applied to the unit price: weight for weighed goods,
// quantity otherwise.
func (i CartItem) Units() decimal.Decimal {
	if i.Type == ProductTypeWeight {
		return i.Weight
	}

	return decimal.NewFromInt(int64(i.Quantity))
}

func (i CartItem) LineTotal() Money {
	return i.Price.Mul(i.Units())
}

func (i CartItem) IsFlashSale() bool {
	return i.FlashSale != nil
}

func (i CartItem) Validate() error {
	if i.ProductID == uuid.Nil {
		return fmt.Errorf("productID is empty")
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("price is negative")
	}

	switch i.Type {
	case ProductTypeCount:
		if i.Quantity <= 0 {
			return fmt.Errorf("quantity must be positive")
		}
		if !i.Weight.IsZero() {
			return fmt.Errorf("weight must be empty for count items")
		}
	case ProductTypeWeight:
		if !i.Weight.IsPositive() {
			return fmt.Errorf("weight must be positive")
		}
		if i.Quantity != 0 {
			return fmt.Errorf("quantity must be empty for weight items")
		}
	default:
		return fmt.Errorf("product type[%s] is not valid", i.Type)
	}

	return nil
}

// WithUnits returns a copy of the item carrying units in the field matching its type.
func (i CartItem) WithUnits(units decimal.Decimal) (CartItem, error) {
	if units.IsNegative() {
		return CartItem{}, fmt.Errorf("units are negative")
	}

	switch i.Type {
	case ProductTypeCount:
		if !units.Equal(units.Truncate(0)) {
			return CartItem{}, fmt.Errorf("quantity must be a whole number")
		}
		i.Quantity = int(units.IntPart())
		i.Weight = decimal.Zero
	case ProductTypeWeight:
		i.Weight = units
		i.Quantity = 0
	default:
		return CartItem{}, fmt.Errorf("product type[%s] is not valid", i.Type)
	}

	return i, nil
}
