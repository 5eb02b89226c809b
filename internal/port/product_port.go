package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
)

type ProductSort string

const (
	SortByCreated   ProductSort = "created"
	SortByName      ProductSort = "name"
	SortByPrice     ProductSort = "price"
	SortByPriceDesc ProductSort = "-price"
)

type ProductFilter struct {
	Category   string
	NameQuery  string
	OnSaleOnly bool
	Sort       ProductSort
	Limit      int
	Offset     int
}

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}
