package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/nikolayk812/grocery-cart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type productRepositorySuite struct {
	suite.Suite

	repo port.ProductRepository
	pool *pgxpool.Pool
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(productRepositorySuite))
}

func (suite *productRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo, err = repository.NewProduct(suite.pool)
	suite.Require().NoError(err)
}

func (suite *productRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *productRepositorySuite) TestCreateAndGet() {
	defer suite.deleteAll()

	onSale := randomProduct()
	onSale.IsSale = true
	onSale.SalePrice = &domain.Money{Amount: onSale.Price.Amount.Div(decimal.NewFromInt(2)), Currency: domain.VND}

	invalidSale := randomProduct()
	invalidSale.IsSale = true
	invalidSale.SalePrice = &onSale.Price

	tests := []struct {
		name      string
		product   domain.Product
		wantError string
	}{
		{
			name:    "regular product: ok",
			product: randomProduct(),
		},
		{
			name:    "product on sale: ok",
			product: onSale,
		},
		{
			name: "product without name: error",
			product: func() domain.Product {
				p := randomProduct()
				p.Name = ""
				return p
			}(),
			wantError: "product.Validate: name is empty",
		},
		{
			name:      "sale price not below price: error",
			product:   invalidSale,
			wantError: "product.Validate: sale price must be less than price",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			id, err := suite.repo.Create(ctx, tt.product)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.product.ID, id)

			got, err := suite.repo.Get(ctx, id)
			require.NoError(t, err)

			opts := append(cmpOptions(), cmpopts.IgnoreFields(domain.Product{}, "CreatedAt"))
			assert.Empty(t, cmp.Diff(tt.product, got, opts))
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func (suite *productRepositorySuite) TestGet_NotFound() {
	_, err := suite.repo.Get(suite.T().Context(), uuid.MustParse(gofakeit.UUID()))
	require.ErrorIs(suite.T(), err, apperr.ErrNotFound)
}

func (suite *productRepositorySuite) TestList() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	apple := productNamed("Green Apple", "fruit", 30_000, 0)
	banana := productNamed("Banana", "fruit", 20_000, 15_000)
	cheese := productNamed("Cheddar Cheese", "dairy", 90_000, 0)
	milk := productNamed("Whole Milk", "dairy", 35_000, 10_000)
	juice := productNamed("100% Orange Juice", "drinks", 25_000, 0)

	for _, p := range []domain.Product{apple, banana, cheese, milk, juice} {
		_, err := suite.repo.Create(ctx, p)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		filter    port.ProductFilter
		wantNames []string
		wantError string
	}{
		{
			name:      "by category sorted by name",
			filter:    port.ProductFilter{Category: "fruit", Sort: port.SortByName},
			wantNames: []string{"Banana", "Green Apple"},
		},
		{
			name:      "name query is case insensitive",
			filter:    port.ProductFilter{NameQuery: "MILK"},
			wantNames: []string{"Whole Milk"},
		},
		{
			name:      "name query matches percent sign literally",
			filter:    port.ProductFilter{NameQuery: "%"},
			wantNames: []string{"100% Orange Juice"},
		},
		{
			name:      "name query underscore is not a wildcard",
			filter:    port.ProductFilter{NameQuery: "A_P"},
			wantNames: []string{},
		},
		{
			name:      "on sale only sorted by effective price",
			filter:    port.ProductFilter{OnSaleOnly: true, Sort: port.SortByPrice},
			wantNames: []string{"Whole Milk", "Banana"},
		},
		{
			name:      "price descending uses sale price",
			filter:    port.ProductFilter{Sort: port.SortByPriceDesc},
			wantNames: []string{"Cheddar Cheese", "Green Apple", "100% Orange Juice", "Banana", "Whole Milk"},
		},
		{
			name:      "pagination",
			filter:    port.ProductFilter{Sort: port.SortByName, Limit: 2, Offset: 1},
			wantNames: []string{"Banana", "Cheddar Cheese"},
		},
		{
			name:      "unknown sort: error",
			filter:    port.ProductFilter{Sort: "popularity"},
			wantError: "sort[popularity] is not valid",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			products, err := suite.repo.List(t.Context(), tt.filter)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			names := make([]string, 0, len(products))
			for _, p := range products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func (suite *productRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE products CASCADE")
	suite.NoError(err)
}

func productNamed(name, category string, price, salePrice int64) domain.Product {
	p := randomProduct()
	p.Name = name
	p.Category = category
	p.Price = domain.NewMoney(price, domain.VND)

	if salePrice > 0 {
		sale := domain.NewMoney(salePrice, domain.VND)
		p.IsSale = true
		p.SalePrice = &sale
	}

	return p
}
