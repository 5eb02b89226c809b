package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/db"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) (port.ProductRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &productRepository{q: db.New(pool)}, nil
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	if err := product.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("product.Validate: %w", err)
	}

	id := product.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var salePrice decimal.NullDecimal
	if product.SalePrice != nil {
		if !product.SalePrice.SameCurrency(product.Price) {
			return uuid.Nil, fmt.Errorf("sale price currency[%s] does not match price", product.SalePrice.Currency)
		}
		salePrice = decimal.NewNullDecimal(product.SalePrice.Amount)
	}

	err := r.q.CreateProduct(ctx, db.CreateProductParams{
		ID:              id,
		Name:            product.Name,
		Category:        product.Category,
		PriceAmount:     product.Price.Amount,
		PriceCurrency:   product.Price.Currency.String(),
		SalePriceAmount: salePrice,
		IsSale:          product.IsSale,
		Stock:           int32(product.Stock),
		Unit:            product.Unit,
		ProductType:     string(product.Type),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("q.CreateProduct: %w", err)
	}

	return id, nil
}

func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, apperr.NotFound("q.GetProduct", fmt.Sprintf("product[%s] not found", id))
		}
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	product, err := mapProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error) {
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("offset is negative")
	}

	switch filter.Sort {
	case "", port.SortByCreated, port.SortByName, port.SortByPrice, port.SortByPriceDesc:
	default:
		return nil, fmt.Errorf("sort[%s] is not valid", filter.Sort)
	}

	rows, err := r.q.ListProducts(ctx, db.ListProductsParams{
		Category:   optionalText(filter.Category),
		NameQuery:  optionalText(filter.NameQuery),
		OnSaleOnly: filter.OnSaleOnly,
		Sort:       string(filter.Sort),
		Limit:      int32(limit),
		Offset:     int32(filter.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		product, err := mapProductToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapProductToDomain: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	productType, err := domain.ParseProductType(row.ProductType)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category,
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		IsSale:    row.IsSale,
		Stock:     int(row.Stock),
		Unit:      row.Unit,
		Type:      productType,
		CreatedAt: row.CreatedAt,
	}

	if row.SalePriceAmount.Valid {
		product.SalePrice = &domain.Money{Amount: row.SalePriceAmount.Decimal, Currency: parsedCurrency}
	}

	return product, nil
}
