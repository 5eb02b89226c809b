package repository_test

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/nikolayk812/grocery-cart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type flashSaleRepositorySuite struct {
	suite.Suite

	repo     port.FlashSaleRepository
	carts    port.CartRepository
	checkout port.CheckoutRepository
	pool     *pgxpool.Pool
}

func TestFlashSaleRepositorySuite(t *testing.T) {
	suite.Run(t, new(flashSaleRepositorySuite))
}

func (suite *flashSaleRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo, err = repository.NewFlashSale(suite.pool)
	suite.Require().NoError(err)

	suite.carts, err = repository.NewCart(suite.pool)
	suite.Require().NoError(err)

	suite.checkout, err = repository.NewCheckout(suite.pool)
	suite.Require().NoError(err)
}

func (suite *flashSaleRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *flashSaleRepositorySuite) TestCreateAndGet() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	sale := randomFlashSale(time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 2)

	id, err := suite.repo.Create(ctx, sale)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, id)

	got, err := suite.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(sortedProducts(sale), sortedProducts(got), cmpOptions()))

	_, err = suite.repo.Get(ctx, uuid.MustParse(gofakeit.UUID()))
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func (suite *flashSaleRepositorySuite) TestCreate_Invalid() {
	sale := randomFlashSale(time.Now(), time.Now().Add(-time.Hour), 1)

	_, err := suite.repo.Create(suite.T().Context(), sale)
	require.EqualError(suite.T(), err, "sale.Validate: end time must be after start time")
}

func (suite *flashSaleRepositorySuite) TestActiveAndMembership() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	now := time.Now()

	active := randomFlashSale(now.Add(-time.Hour), now.Add(time.Hour), 2)
	upcoming := randomFlashSale(now.Add(time.Hour), now.Add(2*time.Hour), 1)
	finished := randomFlashSale(now.Add(-2*time.Hour), now.Add(-time.Hour), 1)

	soldOut := randomFlashSale(now.Add(-time.Hour), now.Add(time.Hour), 1)
	soldOut.Products[0].Sold = soldOut.Products[0].Quantity

	for _, s := range []domain.FlashSale{active, upcoming, finished, soldOut} {
		_, err := suite.repo.Create(ctx, s)
		require.NoError(t, err)
	}

	sales, err := suite.repo.Active(ctx, now)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{active.ID, soldOut.ID}, ids)

	tests := []struct {
		name      string
		productID uuid.UUID
		want      domain.FlashSaleMembership
	}{
		{
			name:      "active member",
			productID: active.Products[0].ProductID,
			want:      domain.FlashSaleMembership{InFlashSale: true, FlashSaleID: active.ID, EndTime: active.EndTime},
		},
		{
			name:      "upcoming sale: not member yet",
			productID: upcoming.Products[0].ProductID,
		},
		{
			name:      "finished sale: not member",
			productID: finished.Products[0].ProductID,
		},
		{
			name:      "sold out: not member",
			productID: soldOut.Products[0].ProductID,
		},
		{
			name:      "unknown product: not member",
			productID: uuid.MustParse(gofakeit.UUID()),
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			got, err := suite.repo.Membership(suite.T().Context(), tt.productID)
			require.NoError(suite.T(), err)
			assert.Empty(suite.T(), cmp.Diff(tt.want, got, cmpOptions()))
		})
	}
}

func (suite *flashSaleRepositorySuite) TestInfoFor_Cheapest() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	now := time.Now()
	productID := uuid.MustParse(gofakeit.UUID())

	pricey := randomFlashSale(now.Add(-time.Hour), now.Add(time.Hour), 1)
	pricey.Products[0].ProductID = productID
	pricey.Products[0].FlashSalePrice = domain.NewMoney(80_000, domain.VND)

	cheap := randomFlashSale(now.Add(-time.Hour), now.Add(time.Hour), 1)
	cheap.Products[0].ProductID = productID
	cheap.Products[0].FlashSalePrice = domain.NewMoney(40_000, domain.VND)

	for _, s := range []domain.FlashSale{pricey, cheap} {
		_, err := suite.repo.Create(ctx, s)
		require.NoError(t, err)
	}

	info, ok, err := suite.repo.InfoFor(ctx, productID, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cheap.ID, info.FlashSaleID)
	assert.True(t, info.FlashSalePrice.Amount.Equal(cheap.Products[0].FlashSalePrice.Amount))
}

func (suite *flashSaleRepositorySuite) TestCheckout() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	now := time.Now()

	sale := randomFlashSale(now.Add(-time.Hour), now.Add(time.Hour), 1)
	sale.Products[0].Quantity = 3
	sale.Products[0].Sold = 0
	_, err := suite.repo.Create(ctx, sale)
	require.NoError(t, err)

	flashLine := func(quantity int) domain.CartItem {
		fp := sale.Products[0]
		return domain.CartItem{
			ProductID: fp.ProductID,
			Type:      domain.ProductTypeCount,
			Price:     fp.FlashSalePrice,
			Quantity:  quantity,
			FlashSale: &domain.FlashSaleSnapshot{
				FlashSaleID:        sale.ID,
				OriginalPrice:      fp.OriginalPrice,
				DiscountPercentage: fp.DiscountPercentage,
				EndTime:            sale.EndTime,
			},
		}
	}

	suite.Run("within stock: cart cleared and sold incremented", func() {
		t := suite.T()
		ownerID := gofakeit.UUID()

		items := []domain.CartItem{flashLine(2), randomCartItem()}
		for _, item := range items {
			require.NoError(t, suite.carts.AddItem(ctx, ownerID, item))
		}

		require.NoError(t, suite.checkout.Checkout(ctx, ownerID, items))

		cart, err := suite.carts.GetCart(ctx, ownerID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		got, err := suite.repo.Get(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Products[0].Sold)
	})

	suite.Run("exceeds stock: rolled back", func() {
		t := suite.T()
		ownerID := gofakeit.UUID()

		items := []domain.CartItem{flashLine(2)}
		require.NoError(t, suite.carts.AddItem(ctx, ownerID, items[0]))

		err := suite.checkout.Checkout(ctx, ownerID, items)
		require.ErrorIs(t, err, port.ErrFlashSaleSoldOut)

		cart, err := suite.carts.GetCart(ctx, ownerID)
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1)

		got, err := suite.repo.Get(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Products[0].Sold)
	})
}

func (suite *flashSaleRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE flash_sales, flash_sale_products, cart_items CASCADE")
	suite.NoError(err)
}

func randomFlashSale(start, end time.Time, products int) domain.FlashSale {
	sale := domain.FlashSale{
		ID:        uuid.MustParse(gofakeit.UUID()),
		Name:      gofakeit.Adjective() + " hour",
		StartTime: start.Truncate(time.Microsecond),
		EndTime:   end.Truncate(time.Microsecond),
	}

	for range products {
		original := int64(gofakeit.IntRange(100_000, 200_000))
		discount := gofakeit.IntRange(10, 60)
		quantity := gofakeit.IntRange(5, 50)

		sale.Products = append(sale.Products, domain.FlashSaleProduct{
			ProductID:          uuid.MustParse(gofakeit.UUID()),
			FlashSalePrice:     domain.NewMoney(original*int64(100-discount)/100, domain.VND),
			OriginalPrice:      domain.NewMoney(original, domain.VND),
			DiscountPercentage: discount,
			Quantity:           quantity,
			Sold:               gofakeit.IntRange(0, quantity-1),
		})
	}

	return sale
}

func sortedProducts(sale domain.FlashSale) domain.FlashSale {
	products := slices.Clone(sale.Products)
	slices.SortFunc(products, func(a, b domain.FlashSaleProduct) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})
	sale.Products = products
	return sale
}
