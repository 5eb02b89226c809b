// Package porttest provides testify mocks of the port interfaces.
package porttest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type FlashSaleSource struct {
	mock.Mock
}

var _ port.FlashSaleSource = (*FlashSaleSource)(nil)

func (m *FlashSaleSource) Membership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.FlashSaleMembership), args.Error(1)
}

func (m *FlashSaleSource) Active(ctx context.Context, now time.Time) ([]domain.FlashSale, error) {
	args := m.Called(ctx, now)
	sales, _ := args.Get(0).([]domain.FlashSale)
	return sales, args.Error(1)
}

type ProductRepository struct {
	mock.Mock
}

var _ port.ProductRepository = (*ProductRepository)(nil)

func (m *ProductRepository) Create(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *ProductRepository) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *ProductRepository) List(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

type CartRepository struct {
	mock.Mock
}

var _ port.CartRepository = (*CartRepository)(nil)

func (m *CartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *CartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	return m.Called(ctx, ownerID, item).Error(0)
}

func (m *CartRepository) UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, units decimal.Decimal) (bool, error) {
	args := m.Called(ctx, ownerID, productID, units)
	return args.Bool(0), args.Error(1)
}

func (m *CartRepository) DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *CartRepository) MarkStale(ctx context.Context, ownerID string, productIDs []uuid.UUID) error {
	return m.Called(ctx, ownerID, productIDs).Error(0)
}

func (m *CartRepository) Clear(ctx context.Context, ownerID string) error {
	return m.Called(ctx, ownerID).Error(0)
}

type CheckoutRepository struct {
	mock.Mock
}

var _ port.CheckoutRepository = (*CheckoutRepository)(nil)

func (m *CheckoutRepository) Checkout(ctx context.Context, ownerID string, items []domain.CartItem) error {
	return m.Called(ctx, ownerID, items).Error(0)
}
