package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_cart_items.up.sql",
			"../migrations/02_products.up.sql",
			"../migrations/03_flash_sales.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func startRedis(ctx context.Context) (*tcredis.RedisContainer, string, error) {
	redisContainer, err := tcredis.Run(ctx, "redis:7.4-alpine")
	if err != nil {
		return nil, "", fmt.Errorf("tcredis.Run: %w", err)
	}

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("rc.ConnectionString: %w", err)
	}

	return redisContainer, connStr, nil
}

func randomCartItem() domain.CartItem {
	return domain.CartItem{
		ProductID: uuid.MustParse(gofakeit.UUID()),
		Type:      domain.ProductTypeCount,
		Price:     randomMoney(),
		Quantity:  gofakeit.IntRange(1, 10),
		Weight:    decimal.Zero,
	}
}

func randomWeightItem() domain.CartItem {
	return domain.CartItem{
		ProductID: uuid.MustParse(gofakeit.UUID()),
		Type:      domain.ProductTypeWeight,
		Price:     randomMoney(),
		Weight:    decimal.NewFromFloat(gofakeit.Float64Range(0.1, 5)).Round(3),
	}
}

func randomFlashCartItem() domain.CartItem {
	item := randomCartItem()
	item.FlashSale = &domain.FlashSaleSnapshot{
		FlashSaleID:        uuid.MustParse(gofakeit.UUID()),
		OriginalPrice:      domain.Money{Amount: item.Price.Amount.Add(decimal.NewFromInt(10)), Currency: item.Price.Currency},
		DiscountPercentage: gofakeit.IntRange(1, 90),
		EndTime:            time.Now().Add(time.Hour).Truncate(time.Microsecond),
	}
	return item
}

func randomMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Currency: randomCurrency(),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:       uuid.MustParse(gofakeit.UUID()),
		Name:     gofakeit.ProductName(),
		Category: gofakeit.RandomString([]string{"fruit", "dairy", "bakery"}),
		Price:    domain.NewMoney(int64(gofakeit.IntRange(10_000, 500_000)), domain.VND),
		Stock:    gofakeit.IntRange(0, 100),
		Unit:     "pcs",
		Type:     domain.ProductTypeCount,
	}
}

// cmpOptions compares decimals and times by value; NUMERIC columns come back with the
// column scale and TIMESTAMPTZ in the session time zone.
func cmpOptions() cmp.Options {
	return cmp.Options{
		cmp.Comparer(func(x, y currency.Unit) bool {
			return x.String() == y.String()
		}),
		cmp.Comparer(func(x, y decimal.Decimal) bool {
			return x.Equal(y)
		}),
		cmp.Comparer(func(x, y time.Time) bool {
			return x.Equal(y)
		}),
	}
}

func assertCartItem(t *testing.T, expected, actual domain.CartItem) {
	t.Helper()

	// Ignore the CreatedAt field in CartItem
	opts := append(cmpOptions(), cmpopts.IgnoreFields(domain.CartItem{}, "CreatedAt"))

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
}
