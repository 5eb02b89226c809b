package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type DeliveryTier struct {
	MinSubtotal decimal.Decimal
	Fee         decimal.Decimal
}

type FeePolicy struct {
	Currency       currency.Unit
	DeliveryTiers  []DeliveryTier
	ServiceFeeRate decimal.Decimal
	MinServiceFee  decimal.Decimal
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		Currency: VND,
		DeliveryTiers: []DeliveryTier{
			{MinSubtotal: decimal.Zero, Fee: decimal.NewFromInt(30_000)},
			{MinSubtotal: decimal.NewFromInt(300_000), Fee: decimal.Zero},
		},
		ServiceFeeRate: decimal.RequireFromString("0.02"),
		MinServiceFee:  decimal.NewFromInt(15_000),
	}
}

// Validate checks that tiers are ordered by threshold and that fees never grow with
// the subtotal.
func (p FeePolicy) Validate() error {
	if len(p.DeliveryTiers) == 0 {
		return fmt.Errorf("delivery tiers are empty")
	}
	if !p.DeliveryTiers[0].MinSubtotal.IsZero() {
		return fmt.Errorf("first delivery tier must start at zero")
	}

	for i, t := range p.DeliveryTiers {
		if t.Fee.IsNegative() {
			return fmt.Errorf("delivery tier[%d] fee is negative", i)
		}
		if i == 0 {
			continue
		}

		prev := p.DeliveryTiers[i-1]
		if !t.MinSubtotal.GreaterThan(prev.MinSubtotal) {
			return fmt.Errorf("delivery tier[%d] threshold is not increasing", i)
		}
		if t.Fee.GreaterThan(prev.Fee) {
			return fmt.Errorf("delivery tier[%d] fee is greater than previous tier", i)
		}
	}

	if p.ServiceFeeRate.IsNegative() {
		return fmt.Errorf("service fee rate is negative")
	}
	if p.MinServiceFee.IsNegative() {
		return fmt.Errorf("min service fee is negative")
	}

	return nil
}

// FreeShippingThreshold is the lowest subtotal with a zero delivery fee, if any tier
// reaches zero.
func (p FeePolicy) FreeShippingThreshold() (decimal.Decimal, bool) {
	for _, t := range p.DeliveryTiers {
		if t.Fee.IsZero() {
			return t.MinSubtotal, true
		}
	}

	return decimal.Zero, false
}

func (p FeePolicy) DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	fee := decimal.Zero
	for _, t := range p.DeliveryTiers {
		if subtotal.LessThan(t.MinSubtotal) {
			break
		}
		fee = t.Fee
	}

	return fee
}

func (p FeePolicy) ServiceFee(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Max(p.MinServiceFee, p.ServiceFeeRate.Mul(subtotal).Round(0))
}

type Adjustments struct {
	Tip             decimal.Decimal
	VoucherDiscount decimal.Decimal
}

type Totals struct {
	Subtotal        Money
	DeliveryFee     Money
	ServiceFee      Money
	Tip             Money
	VoucherDiscount Money
	Total           Money
}

// ComputeTotals aggregates line totals and applies the fee policy. The total never
// goes below zero.
func ComputeTotals(items []CartItem, policy FeePolicy, adj Adjustments) (Totals, error) {
	if adj.Tip.IsNegative() {
		return Totals{}, fmt.Errorf("tip is negative")
	}
	if adj.VoucherDiscount.IsNegative() {
		return Totals{}, fmt.Errorf("voucher discount is negative")
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Price.Currency.String() != policy.Currency.String() {
			return Totals{}, fmt.Errorf("item[%s] currency[%s] does not match %s",
				item.ProductID, item.Price.Currency, policy.Currency)
		}
		subtotal = subtotal.Add(item.LineTotal().Amount)
	}

	delivery := policy.DeliveryFee(subtotal)
	service := policy.ServiceFee(subtotal)

	total := subtotal.Add(delivery).Add(service).Add(adj.Tip).Sub(adj.VoucherDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	money := func(d decimal.Decimal) Money {
		return Money{Amount: d, Currency: policy.Currency}
	}

	return Totals{
		Subtotal:        money(subtotal),
		DeliveryFee:     money(delivery),
		ServiceFee:      money(service),
		Tip:             money(adj.Tip),
		VoucherDiscount: money(adj.VoucherDiscount),
		Total:           money(total),
	}, nil
}

// EndTimeLookup returns the live end time of the flash sale a product belongs to.
type EndTimeLookup func(productID uuid.UUID) (time.Time, bool)

// VisibleItems drops stale items and flash sale items whose window has closed. It is
// a read-side filter; the input slice is not modified.
func VisibleItems(items []CartItem, now time.Time, lookup EndTimeLookup) (visible []CartItem, hidden []uuid.UUID) {
	for _, item := range items {
		if item.Stale || expired(item, now, lookup) {
			hidden = append(hidden, item.ProductID)
			continue
		}
		visible = append(visible, item)
	}

	return visible, hidden
}

func expired(item CartItem, now time.Time, lookup EndTimeLookup) bool {
	if item.FlashSale == nil {
		return false
	}

	endTime := item.FlashSale.EndTime
	if lookup != nil {
		if live, ok := lookup(item.ProductID); ok {
			endTime = live
		}
	}

	return !now.Before(endTime)
}

// SortTiers orders tiers by threshold; used when tiers come from configuration.
func SortTiers(tiers []DeliveryTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinSubtotal.LessThan(tiers[j].MinSubtotal)
	})
}
