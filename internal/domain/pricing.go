package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ResolvedPrice struct {
	UnitPrice          Money
	OriginalPrice      Money
	IsFlashSale        bool
	DiscountPercentage *int
	FlashSaleID        *uuid.UUID
	FlashSaleEndTime   *time.Time
}

// ResolvePrice picks the effective unit price of a product. An active flash sale wins
// over a regular sale, which wins over the list price. Malformed amounts resolve to
// zero instead of failing.
func ResolvePrice(product Product, info *FlashSaleInfo) ResolvedPrice {
	price := nonNegative(product.Price)

	if info != nil && !info.FlashSalePrice.IsNegative() && info.FlashSalePrice.SameCurrency(product.Price) {
		discount := info.DiscountPercentage
		id := info.FlashSaleID
		endTime := info.EndTime

		original := nonNegative(info.OriginalPrice)
		if !original.SameCurrency(price) {
			original = price
		}

		return ResolvedPrice{
			UnitPrice:          info.FlashSalePrice,
			OriginalPrice:      original,
			IsFlashSale:        true,
			DiscountPercentage: &discount,
			FlashSaleID:        &id,
			FlashSaleEndTime:   &endTime,
		}
	}

	if product.IsSale && product.SalePrice != nil &&
		!product.SalePrice.IsNegative() && product.SalePrice.LessThan(price) {
		return ResolvedPrice{
			UnitPrice:     *product.SalePrice,
			OriginalPrice: price,
		}
	}

	return ResolvedPrice{
		UnitPrice:     price,
		OriginalPrice: price,
	}
}

// Snapshot converts a flash sale resolution into the copy stored on a cart item.
func (r ResolvedPrice) Snapshot() *FlashSaleSnapshot {
	if !r.IsFlashSale || r.FlashSaleID == nil || r.FlashSaleEndTime == nil {
		return nil
	}

	var discount int
	if r.DiscountPercentage != nil {
		discount = *r.DiscountPercentage
	}

	return &FlashSaleSnapshot{
		FlashSaleID:        *r.FlashSaleID,
		OriginalPrice:      r.OriginalPrice,
		DiscountPercentage: discount,
		EndTime:            *r.FlashSaleEndTime,
	}
}

func nonNegative(m Money) Money {
	if m.IsNegative() {
		return Money{Amount: decimal.Zero, Currency: m.Currency}
	}

	return m
}
