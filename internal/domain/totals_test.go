package domain_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestComputeTotals(t *testing.T) {
	policy := domain.DefaultFeePolicy()

	tests := []struct {
		name         string
		items        []domain.CartItem
		adj          domain.Adjustments
		wantSubtotal int64
		wantDelivery int64
		wantService  int64
		wantTotal    int64
		wantError    string
	}{
		{
			name:         "subtotal below free shipping: delivery and minimum service fee",
			items:        []domain.CartItem{countItem(125_000, 2)},
			wantSubtotal: 250_000,
			wantDelivery: 30_000,
			wantService:  15_000,
			wantTotal:    295_000,
		},
		{
			name:         "subtotal above free shipping: no delivery, percentage service fee",
			items:        []domain.CartItem{countItem(500_000, 1), countItem(250_000, 2)},
			wantSubtotal: 1_000_000,
			wantDelivery: 0,
			wantService:  20_000,
			wantTotal:    1_020_000,
		},
		{
			name:         "exactly at threshold: free shipping",
			items:        []domain.CartItem{countItem(300_000, 1)},
			wantSubtotal: 300_000,
			wantDelivery: 0,
			wantService:  15_000,
			wantTotal:    315_000,
		},
		{
			name:         "weight item: price times weight",
			items:        []domain.CartItem{weightItem(200_000, "1.5")},
			wantSubtotal: 300_000,
			wantDelivery: 0,
			wantService:  15_000,
			wantTotal:    315_000,
		},
		{
			name:  "tip and voucher applied",
			items: []domain.CartItem{countItem(100_000, 1)},
			adj: domain.Adjustments{
				Tip:             decimal.NewFromInt(10_000),
				VoucherDiscount: decimal.NewFromInt(25_000),
			},
			wantSubtotal: 100_000,
			wantDelivery: 30_000,
			wantService:  15_000,
			wantTotal:    130_000,
		},
		{
			name:  "voucher larger than total: clamped at zero",
			items: []domain.CartItem{countItem(10_000, 1)},
			adj: domain.Adjustments{
				VoucherDiscount: decimal.NewFromInt(1_000_000),
			},
			wantSubtotal: 10_000,
			wantDelivery: 30_000,
			wantService:  15_000,
			wantTotal:    0,
		},
		{
			name:         "empty cart: fees only",
			wantSubtotal: 0,
			wantDelivery: 30_000,
			wantService:  15_000,
			wantTotal:    45_000,
		},
		{
			name: "currency mismatch: error",
			items: []domain.CartItem{{
				ProductID: uuid.New(),
				Type:      domain.ProductTypeCount,
				Price:     domain.NewMoney(5, currency.EUR),
				Quantity:  1,
			}},
			wantError: "currency[EUR] does not match VND",
		},
		{
			name:      "negative tip: error",
			adj:       domain.Adjustments{Tip: decimal.NewFromInt(-1)},
			wantError: "tip is negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ComputeTotals(tt.items, policy, tt.adj)
			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assertAmount(t, tt.wantSubtotal, got.Subtotal)
			assertAmount(t, tt.wantDelivery, got.DeliveryFee)
			assertAmount(t, tt.wantService, got.ServiceFee)
			assertAmount(t, tt.wantTotal, got.Total)
		})
	}
}

func TestComputeTotals_OrderInvariant(t *testing.T) {
	policy := domain.DefaultFeePolicy()

	items := make([]domain.CartItem, 0, 20)
	for range 20 {
		items = append(items, countItem(int64(gofakeit.IntRange(1_000, 90_000)), gofakeit.IntRange(1, 5)))
	}

	want, err := domain.ComputeTotals(items, policy, domain.Adjustments{})
	require.NoError(t, err)

	for range 10 {
		shuffled := append([]domain.CartItem(nil), items...)
		gofakeit.ShuffleAnySlice(shuffled)

		got, err := domain.ComputeTotals(shuffled, policy, domain.Adjustments{})
		require.NoError(t, err)
		assert.True(t, want.Subtotal.Amount.Equal(got.Subtotal.Amount))
		assert.True(t, want.Total.Amount.Equal(got.Total.Amount))
	}
}

func TestFeePolicy_Fees(t *testing.T) {
	policy := domain.DefaultFeePolicy()
	require.NoError(t, policy.Validate())
	assert.Equal(t, "VND", policy.Currency.String())

	threshold, ok := policy.FreeShippingThreshold()
	require.True(t, ok)
	assert.True(t, threshold.Equal(decimal.NewFromInt(300_000)))

	prev := policy.DeliveryFee(decimal.Zero)
	for sub := int64(0); sub <= 1_000_000; sub += 10_000 {
		subtotal := decimal.NewFromInt(sub)

		fee := policy.DeliveryFee(subtotal)
		assert.False(t, fee.GreaterThan(prev), "delivery fee grew at %d", sub)
		assert.Equal(t, sub >= 300_000, fee.IsZero(), "free shipping at %d", sub)
		prev = fee

		wantService := decimal.Max(decimal.NewFromInt(15_000), subtotal.Mul(decimal.RequireFromString("0.02")).Round(0))
		assert.True(t, wantService.Equal(policy.ServiceFee(subtotal)), "service fee at %d", sub)
	}
}

func TestFeePolicy_Validate(t *testing.T) {
	tests := []struct {
		name      string
		tiers     []domain.DeliveryTier
		wantError string
	}{
		{
			name: "increasing fee: error",
			tiers: []domain.DeliveryTier{
				{MinSubtotal: decimal.Zero, Fee: decimal.NewFromInt(10)},
				{MinSubtotal: decimal.NewFromInt(100), Fee: decimal.NewFromInt(20)},
			},
			wantError: "delivery tier[1] fee is greater than previous tier",
		},
		{
			name: "first tier not at zero: error",
			tiers: []domain.DeliveryTier{
				{MinSubtotal: decimal.NewFromInt(5), Fee: decimal.NewFromInt(10)},
			},
			wantError: "first delivery tier must start at zero",
		},
		{
			name:      "no tiers: error",
			wantError: "delivery tiers are empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := domain.DefaultFeePolicy()
			policy.DeliveryTiers = tt.tiers

			require.EqualError(t, policy.Validate(), tt.wantError)
		})
	}
}

func TestVisibleItems(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	regular := countItem(10_000, 1)
	active := flashItem(now.Add(time.Hour))
	expiredItem := flashItem(now.Add(-time.Minute))
	stale := countItem(5_000, 1)
	stale.Stale = true

	items := []domain.CartItem{regular, active, expiredItem, stale}
	original := append([]domain.CartItem(nil), items...)

	t.Run("captured end time", func(t *testing.T) {
		visible, hidden := domain.VisibleItems(items, now, nil)

		assert.Equal(t, []domain.CartItem{regular, active}, visible)
		assert.Equal(t, []uuid.UUID{expiredItem.ProductID, stale.ProductID}, hidden)
		assert.Equal(t, original, items)
	})

	t.Run("live lookup extends sale", func(t *testing.T) {
		lookup := func(productID uuid.UUID) (time.Time, bool) {
			if productID == expiredItem.ProductID {
				return now.Add(time.Hour), true
			}
			return time.Time{}, false
		}

		visible, hidden := domain.VisibleItems(items, now, lookup)

		assert.Equal(t, []domain.CartItem{regular, active, expiredItem}, visible)
		assert.Equal(t, []uuid.UUID{stale.ProductID}, hidden)
	})
}

func assertAmount(t *testing.T, want int64, got domain.Money) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got.Amount), "want %d, got %s", want, got)
}

func countItem(price int64, quantity int) domain.CartItem {
	return domain.CartItem{
		ProductID: uuid.MustParse(gofakeit.UUID()),
		Type:      domain.ProductTypeCount,
		Price:     *vnd(price),
		Quantity:  quantity,
	}
}

func weightItem(price int64, weight string) domain.CartItem {
	return domain.CartItem{
		ProductID: uuid.MustParse(gofakeit.UUID()),
		Type:      domain.ProductTypeWeight,
		Price:     *vnd(price),
		Weight:    decimal.RequireFromString(weight),
	}
}

func flashItem(endTime time.Time) domain.CartItem {
	item := countItem(40_000, 1)
	item.FlashSale = &domain.FlashSaleSnapshot{
		FlashSaleID:        uuid.MustParse(gofakeit.UUID()),
		OriginalPrice:      *vnd(80_000),
		DiscountPercentage: 50,
		EndTime:            endTime,
	}
	return item
}
