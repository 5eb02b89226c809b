package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type FlashSale struct {
	ID        uuid.UUID
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Products  []FlashSaleProduct
}

type FlashSaleProduct struct {
	ProductID          uuid.UUID
	FlashSalePrice     Money
	OriginalPrice      Money
	DiscountPercentage int
	Quantity           int
	Sold               int
}

// FlashSaleInfo is the pricing view of one product inside an active, not sold out sale.
type FlashSaleInfo struct {
	FlashSaleID        uuid.UUID
	FlashSalePrice     Money
	OriginalPrice      Money
	DiscountPercentage int
	EndTime            time.Time
}

// FlashSaleMembership is what a live source reports for a product.
type FlashSaleMembership struct {
	InFlashSale bool
	FlashSaleID uuid.UUID
	EndTime     time.Time
}

// ActiveAt reports whether now falls in [StartTime, EndTime).
func (s FlashSale) ActiveAt(now time.Time) bool {
	return !now.Before(s.StartTime) && now.Before(s.EndTime)
}

func (s FlashSale) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is empty")
	}
	if !s.EndTime.After(s.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}

	seen := make(map[uuid.UUID]struct{}, len(s.Products))
	for _, p := range s.Products {
		if _, ok := seen[p.ProductID]; ok {
			return fmt.Errorf("product[%s] is listed twice", p.ProductID)
		}
		seen[p.ProductID] = struct{}{}

		if err := p.Validate(); err != nil {
			return fmt.Errorf("product[%s]: %w", p.ProductID, err)
		}
	}

	return nil
}

// InfoFor returns pricing info for productID if the sale is active at now and the
// entry still has stock.
func (s FlashSale) InfoFor(productID uuid.UUID, now time.Time) (FlashSaleInfo, bool) {
	if !s.ActiveAt(now) {
		return FlashSaleInfo{}, false
	}

	for _, p := range s.Products {
		if p.ProductID != productID {
			continue
		}
		if p.SoldOut() {
			return FlashSaleInfo{}, false
		}

		return FlashSaleInfo{
			FlashSaleID:        s.ID,
			FlashSalePrice:     p.FlashSalePrice,
			OriginalPrice:      p.OriginalPrice,
			DiscountPercentage: p.DiscountPercentage,
			EndTime:            s.EndTime,
		}, true
	}

	return FlashSaleInfo{}, false
}

func (p FlashSaleProduct) Validate() error {
	if !p.FlashSalePrice.LessThan(p.OriginalPrice) {
		return fmt.Errorf("flash sale price must be less than original price")
	}
	if p.FlashSalePrice.IsNegative() {
		return fmt.Errorf("flash sale price is negative")
	}
	if p.DiscountPercentage < 0 || p.DiscountPercentage > 100 {
		return fmt.Errorf("discount percentage[%d] is out of range", p.DiscountPercentage)
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if p.Sold < 0 || p.Sold > p.Quantity {
		return fmt.Errorf("sold[%d] is out of range", p.Sold)
	}

	return nil
}

func (p FlashSaleProduct) Remaining() int {
	return p.Quantity - p.Sold
}

func (p FlashSaleProduct) SoldOut() bool {
	return p.Sold >= p.Quantity
}

// CheapestInfo picks the lowest flash price for productID across active sales.
func CheapestInfo(sales []FlashSale, productID uuid.UUID, now time.Time) (FlashSaleInfo, bool) {
	var (
		best  FlashSaleInfo
		found bool
	)

	for _, s := range sales {
		info, ok := s.InfoFor(productID, now)
		if !ok {
			continue
		}
		if !found || info.FlashSalePrice.Amount.LessThan(best.FlashSalePrice.Amount) {
			best, found = info, true
		}
	}

	return best, found
}
