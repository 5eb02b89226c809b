// Package service composes catalog, cart storage and flash sale lookups into the
// cart operations exposed over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// GuestOwnerPrefix marks owner ids whose carts live in the guest cart store.
const GuestOwnerPrefix = "guest-"

var ErrStaleItems = errors.New("cart contains flash sale items that are no longer valid")

// FlashSaleLookup is an in-memory view of active flash sales, typically a
// flashsale.Poller. It is consulted only once Ready reports true.
type FlashSaleLookup interface {
	Ready() bool
	Info(productID uuid.UUID, now time.Time) (domain.FlashSaleInfo, bool)
	EndTime(productID uuid.UUID) (time.Time, bool)
}

type ItemChecker interface {
	Check(ctx context.Context, items []domain.CartItem) ([]uuid.UUID, error)
}

type Deps struct {
	Products port.ProductRepository
	Carts    port.CartRepository
	// GuestCarts is optional. Without it guest owners share Carts.
	GuestCarts port.CartRepository
	Checkout   port.CheckoutRepository
	FlashSales port.FlashSaleSource
	// Lookup is optional. Without it flash sale info is read from FlashSales.
	Lookup  FlashSaleLookup
	Checker ItemChecker
	Fees    domain.FeePolicy
	Clock   func() time.Time
	Logger  logrus.FieldLogger
}

type AddItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
	Weight    decimal.Decimal
}

type Summary struct {
	OwnerID string
	Items   []domain.CartItem
	Hidden  []uuid.UUID
	Totals  domain.Totals
}

type Receipt struct {
	OwnerID      string
	Items        []domain.CartItem
	Totals       domain.Totals
	CheckedOutAt time.Time
}

type CartService struct {
	products   port.ProductRepository
	carts      port.CartRepository
	guestCarts port.CartRepository
	checkout   port.CheckoutRepository
	flashSales port.FlashSaleSource
	lookup     FlashSaleLookup
	checker    ItemChecker
	fees       domain.FeePolicy
	clock      func() time.Time
	logger     logrus.FieldLogger
}

func NewCartService(deps Deps) (*CartService, error) {
	switch {
	case deps.Products == nil:
		return nil, fmt.Errorf("products is nil")
	case deps.Carts == nil:
		return nil, fmt.Errorf("carts is nil")
	case deps.Checkout == nil:
		return nil, fmt.Errorf("checkout is nil")
	case deps.FlashSales == nil:
		return nil, fmt.Errorf("flashSales is nil")
	case deps.Checker == nil:
		return nil, fmt.Errorf("checker is nil")
	}

	if err := deps.Fees.Validate(); err != nil {
		return nil, fmt.Errorf("fees.Validate: %w", err)
	}

	s := &CartService{
		products:   deps.Products,
		carts:      deps.Carts,
		guestCarts: deps.GuestCarts,
		checkout:   deps.Checkout,
		flashSales: deps.FlashSales,
		lookup:     deps.Lookup,
		checker:    deps.Checker,
		fees:       deps.Fees,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	s.logger = s.logger.WithField("component", "cart.service")

	return s, nil
}

func (s *CartService) AddToCart(ctx context.Context, ownerID string, req AddItemRequest) (domain.CartItem, error) {
	const op = "service.AddToCart"

	if ownerID == "" {
		return domain.CartItem{}, apperr.Validation(op, map[string]string{"ownerId": "is empty"})
	}
	if req.ProductID == uuid.Nil {
		return domain.CartItem{}, apperr.Validation(op, map[string]string{"productId": "is empty"})
	}

	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("products.Get: %w", err)
	}

	if !product.Price.SameCurrency(domain.ZeroMoney(s.fees.Currency)) {
		return domain.CartItem{}, apperr.Validation(op, map[string]string{
			"productId": fmt.Sprintf("currency[%s] is not accepted, cart currency is %s", product.Price.Currency, s.fees.Currency),
		})
	}

	if fields := validateUnits(product, req); len(fields) > 0 {
		return domain.CartItem{}, apperr.Validation(op, fields)
	}

	carts := s.cartsFor(ownerID)

	if product.Type == domain.ProductTypeCount {
		inCart, err := quantityInCart(ctx, carts, ownerID, product.ID)
		if err != nil {
			return domain.CartItem{}, err
		}
		if inCart+req.Quantity > product.Stock {
			return domain.CartItem{}, apperr.Validation(op, map[string]string{
				"quantity": fmt.Sprintf("exceeds stock of %d with %d already in cart", product.Stock, inCart),
			})
		}
	}

	now := s.clock()

	resolved := domain.ResolvePrice(product, s.flashInfo(ctx, product.ID, now))

	item := domain.CartItem{
		ProductID: product.ID,
		Type:      product.Type,
		Price:     resolved.UnitPrice,
		Quantity:  req.Quantity,
		Weight:    req.Weight,
		FlashSale: resolved.Snapshot(),
		CreatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return domain.CartItem{}, apperr.Validation(op, map[string]string{"item": err.Error()})
	}

	if err := carts.AddItem(ctx, ownerID, item); err != nil {
		return domain.CartItem{}, fmt.Errorf("carts.AddItem: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ownerId":   ownerID,
		"productId": product.ID,
		"price":     item.Price.String(),
		"flashSale": item.IsFlashSale(),
	}).Info("item added to cart")

	return item, nil
}

// UpdateItem sets the units of a line. Zero units removes the line.
func (s *CartService) UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, units decimal.Decimal) error {
	const op = "service.UpdateItem"

	if ownerID == "" {
		return apperr.Validation(op, map[string]string{"ownerId": "is empty"})
	}
	if units.IsNegative() {
		return apperr.Validation(op, map[string]string{"units": "is negative"})
	}

	carts := s.cartsFor(ownerID)

	cart, err := carts.GetCart(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("carts.GetCart: %w", err)
	}

	line, ok := findItem(cart.Items, productID)
	if !ok {
		return apperr.NotFound(op, fmt.Sprintf("product[%s] is not in cart", productID))
	}
	if !units.IsZero() {
		if _, err := line.WithUnits(units); err != nil {
			return apperr.Validation(op, map[string]string{"units": err.Error()})
		}
	}

	found, err := carts.UpdateItem(ctx, ownerID, productID, units)
	if err != nil {
		return fmt.Errorf("carts.UpdateItem: %w", err)
	}
	if !found {
		return apperr.NotFound(op, fmt.Sprintf("product[%s] is not in cart", productID))
	}

	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) error {
	const op = "service.RemoveItem"

	if ownerID == "" {
		return apperr.Validation(op, map[string]string{"ownerId": "is empty"})
	}

	found, err := s.cartsFor(ownerID).DeleteItem(ctx, ownerID, productID)
	if err != nil {
		return fmt.Errorf("carts.DeleteItem: %w", err)
	}
	if !found {
		return apperr.NotFound(op, fmt.Sprintf("product[%s] is not in cart", productID))
	}

	return nil
}

// Summary prices the visible part of a cart. Stale lines and lines whose flash sale
// has ended are reported in Hidden and left in storage.
func (s *CartService) Summary(ctx context.Context, ownerID string, adj domain.Adjustments) (Summary, error) {
	const op = "service.Summary"

	if ownerID == "" {
		return Summary{}, apperr.Validation(op, map[string]string{"ownerId": "is empty"})
	}

	cart, err := s.cartsFor(ownerID).GetCart(ctx, ownerID)
	if err != nil {
		return Summary{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	visible, hidden := domain.VisibleItems(cart.Items, s.clock(), s.endTimeLookup())

	totals, err := domain.ComputeTotals(visible, s.fees, adj)
	if err != nil {
		return Summary{}, apperr.Validation(op, map[string]string{"totals": err.Error()})
	}

	return Summary{
		OwnerID: ownerID,
		Items:   visible,
		Hidden:  hidden,
		Totals:  totals,
	}, nil
}

// Validate re-checks flash sale lines against the live source and marks the invalid
// ones stale. It returns the product ids that were marked.
func (s *CartService) Validate(ctx context.Context, ownerID string) ([]uuid.UUID, error) {
	const op = "service.Validate"

	if ownerID == "" {
		return nil, apperr.Validation(op, map[string]string{"ownerId": "is empty"})
	}

	carts := s.cartsFor(ownerID)

	cart, err := carts.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("carts.GetCart: %w", err)
	}

	return s.markInvalid(ctx, carts, ownerID, activeItems(cart.Items))
}

// Checkout refuses carts holding invalid flash sale lines with ErrStaleItems. Otherwise
// the visible lines are charged and the cart is emptied.
func (s *CartService) Checkout(ctx context.Context, ownerID string, adj domain.Adjustments) (Receipt, error) {
	const op = "service.Checkout"

	if ownerID == "" {
		return Receipt{}, apperr.Validation(op, map[string]string{"ownerId": "is empty"})
	}

	carts := s.cartsFor(ownerID)

	cart, err := carts.GetCart(ctx, ownerID)
	if err != nil {
		return Receipt{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	now := s.clock()

	visible, _ := domain.VisibleItems(cart.Items, now, s.endTimeLookup())
	if len(visible) == 0 {
		return Receipt{}, apperr.Validation(op, map[string]string{"cart": "is empty"})
	}

	invalid, err := s.markInvalid(ctx, carts, ownerID, visible)
	if err != nil {
		return Receipt{}, err
	}
	if len(invalid) > 0 {
		appErr := apperr.Wrap(op, apperr.CategoryClient, ErrStaleItems)
		appErr.Fields = make(map[string]string, len(invalid))
		for _, id := range invalid {
			appErr.Fields[id.String()] = "flash sale is no longer valid"
		}
		return Receipt{}, appErr
	}

	totals, err := domain.ComputeTotals(visible, s.fees, adj)
	if err != nil {
		return Receipt{}, apperr.Validation(op, map[string]string{"totals": err.Error()})
	}

	if err := s.checkout.Checkout(ctx, ownerID, visible); err != nil {
		if errors.Is(err, port.ErrFlashSaleSoldOut) {
			return Receipt{}, apperr.Wrap(op, apperr.CategoryClient, err)
		}
		return Receipt{}, fmt.Errorf("checkout.Checkout: %w", err)
	}

	// sold counts are committed at this point, so a failed clear is only logged
	if carts != s.carts {
		if err := carts.Clear(ctx, ownerID); err != nil {
			s.logger.WithError(err).WithField("ownerId", ownerID).Warn("clear guest cart after checkout")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"ownerId": ownerID,
		"items":   len(visible),
		"total":   totals.Total.String(),
	}).Info("cart checked out")

	return Receipt{
		OwnerID:      ownerID,
		Items:        visible,
		Totals:       totals,
		CheckedOutAt: now,
	}, nil
}

func (s *CartService) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.Get: %w", err)
	}

	return product, nil
}

func (s *CartService) ListProducts(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("products.List: %w", err)
	}

	return products, nil
}

func (s *CartService) ActiveFlashSales(ctx context.Context) ([]domain.FlashSale, error) {
	sales, err := s.flashSales.Active(ctx, s.clock())
	if err != nil {
		return nil, fmt.Errorf("flashSales.Active: %w", err)
	}

	return sales, nil
}

func (s *CartService) FlashSaleMembership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error) {
	m, err := s.flashSales.Membership(ctx, productID)
	if err != nil {
		return domain.FlashSaleMembership{}, fmt.Errorf("flashSales.Membership: %w", err)
	}

	return m, nil
}

func (s *CartService) markInvalid(ctx context.Context, carts port.CartRepository, ownerID string, items []domain.CartItem) ([]uuid.UUID, error) {
	invalid, err := s.checker.Check(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("checker.Check: %w", err)
	}
	if len(invalid) == 0 {
		return nil, nil
	}

	if err := carts.MarkStale(ctx, ownerID, invalid); err != nil {
		return nil, fmt.Errorf("carts.MarkStale: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ownerId":  ownerID,
		"products": invalid,
	}).Info("flash sale items marked stale")

	return invalid, nil
}

// flashInfo prefers the in-memory lookup. A source failure prices the product without
// a flash sale.
func (s *CartService) flashInfo(ctx context.Context, productID uuid.UUID, now time.Time) *domain.FlashSaleInfo {
	if s.lookup != nil && s.lookup.Ready() {
		if info, ok := s.lookup.Info(productID, now); ok {
			return &info
		}
		return nil
	}

	sales, err := s.flashSales.Active(ctx, now)
	if err != nil {
		s.logger.WithError(err).WithField("productId", productID).Warn("active flash sales lookup failed, using regular price")
		return nil
	}

	if info, ok := domain.CheapestInfo(sales, productID, now); ok {
		return &info
	}

	return nil
}

func (s *CartService) endTimeLookup() domain.EndTimeLookup {
	if s.lookup == nil || !s.lookup.Ready() {
		return nil
	}

	return s.lookup.EndTime
}

func (s *CartService) cartsFor(ownerID string) port.CartRepository {
	if s.guestCarts != nil && strings.HasPrefix(ownerID, GuestOwnerPrefix) {
		return s.guestCarts
	}

	return s.carts
}

func quantityInCart(ctx context.Context, carts port.CartRepository, ownerID string, productID uuid.UUID) (int, error) {
	cart, err := carts.GetCart(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("carts.GetCart: %w", err)
	}

	line, ok := findItem(cart.Items, productID)
	if !ok {
		return 0, nil
	}

	return line.Quantity, nil
}

func findItem(items []domain.CartItem, productID uuid.UUID) (domain.CartItem, bool) {
	for _, item := range items {
		if item.ProductID == productID {
			return item, true
		}
	}

	return domain.CartItem{}, false
}

func activeItems(items []domain.CartItem) []domain.CartItem {
	var active []domain.CartItem
	for _, item := range items {
		if !item.Stale {
			active = append(active, item)
		}
	}

	return active
}

func validateUnits(product domain.Product, req AddItemRequest) map[string]string {
	fields := make(map[string]string)

	switch product.Type {
	case domain.ProductTypeCount:
		if req.Quantity <= 0 {
			fields["quantity"] = "must be positive"
		} else if product.Stock < req.Quantity {
			fields["quantity"] = fmt.Sprintf("exceeds stock of %d", product.Stock)
		}
		if !req.Weight.IsZero() {
			fields["weight"] = "must be empty for count products"
		}
	case domain.ProductTypeWeight:
		if !req.Weight.IsPositive() {
			fields["weight"] = "must be positive"
		}
		if req.Quantity != 0 {
			fields["quantity"] = "must be empty for weight products"
		}
	default:
		fields["productId"] = fmt.Sprintf("product type[%s] is not valid", product.Type)
	}

	return fields
}
