package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/service"
	"github.com/shopspring/decimal"
)

type response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type addItemRequest struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Weight    decimal.Decimal `json:"weight"`
}

// updateItemRequest carries quantity for count lines or weight for weighed lines.
type updateItemRequest struct {
	Quantity *int             `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight"`
}

type flashSaleSnapshotResponse struct {
	FlashSaleID        uuid.UUID       `json:"flashSaleId"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	EndTime            time.Time       `json:"endTime"`
}

type cartItemResponse struct {
	ProductID uuid.UUID                  `json:"productId"`
	Type      string                     `json:"type"`
	Price     decimal.Decimal            `json:"price"`
	Currency  string                     `json:"currency"`
	Quantity  int                        `json:"quantity,omitempty"`
	Weight    *decimal.Decimal           `json:"weight,omitempty"`
	LineTotal decimal.Decimal            `json:"lineTotal"`
	FlashSale *flashSaleSnapshotResponse `json:"flashSale,omitempty"`
	CreatedAt time.Time                  `json:"createdAt"`
}

type totalsResponse struct {
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	ServiceFee      decimal.Decimal `json:"serviceFee"`
	Tip             decimal.Decimal `json:"tip"`
	VoucherDiscount decimal.Decimal `json:"voucherDiscount"`
	Total           decimal.Decimal `json:"total"`
}

type summaryResponse struct {
	OwnerID string             `json:"ownerId"`
	Items   []cartItemResponse `json:"items"`
	Hidden  []uuid.UUID        `json:"hidden"`
	Totals  totalsResponse     `json:"totals"`
}

type receiptResponse struct {
	OwnerID      string             `json:"ownerId"`
	Items        []cartItemResponse `json:"items"`
	Totals       totalsResponse     `json:"totals"`
	CheckedOutAt time.Time          `json:"checkedOutAt"`
}

type validateResponse struct {
	Invalid []uuid.UUID `json:"invalid"`
}

type productResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
	IsSale    bool             `json:"isSale"`
	Currency  string           `json:"currency"`
	Stock     int              `json:"stock"`
	Unit      string           `json:"unit"`
	Type      string           `json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
}

func cartItemFromDomain(item domain.CartItem) cartItemResponse {
	resp := cartItemResponse{
		ProductID: item.ProductID,
		Type:      string(item.Type),
		Price:     item.Price.Amount,
		Currency:  item.Price.Currency.String(),
		Quantity:  item.Quantity,
		LineTotal: item.LineTotal().Amount,
		CreatedAt: item.CreatedAt,
	}

	if item.Type == domain.ProductTypeWeight {
		weight := item.Weight
		resp.Weight = &weight
	}

	if fs := item.FlashSale; fs != nil {
		resp.FlashSale = &flashSaleSnapshotResponse{
			FlashSaleID:        fs.FlashSaleID,
			OriginalPrice:      fs.OriginalPrice.Amount,
			DiscountPercentage: fs.DiscountPercentage,
			EndTime:            fs.EndTime,
		}
	}

	return resp
}

func cartItemsFromDomain(items []domain.CartItem) []cartItemResponse {
	resp := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, cartItemFromDomain(item))
	}

	return resp
}

func totalsFromDomain(t domain.Totals) totalsResponse {
	return totalsResponse{
		Currency:        t.Total.Currency.String(),
		Subtotal:        t.Subtotal.Amount,
		DeliveryFee:     t.DeliveryFee.Amount,
		ServiceFee:      t.ServiceFee.Amount,
		Tip:             t.Tip.Amount,
		VoucherDiscount: t.VoucherDiscount.Amount,
		Total:           t.Total.Amount,
	}
}

func summaryFromDomain(s service.Summary) summaryResponse {
	hidden := s.Hidden
	if hidden == nil {
		hidden = []uuid.UUID{}
	}

	return summaryResponse{
		OwnerID: s.OwnerID,
		Items:   cartItemsFromDomain(s.Items),
		Hidden:  hidden,
		Totals:  totalsFromDomain(s.Totals),
	}
}

func receiptFromDomain(r service.Receipt) receiptResponse {
	return receiptResponse{
		OwnerID:      r.OwnerID,
		Items:        cartItemsFromDomain(r.Items),
		Totals:       totalsFromDomain(r.Totals),
		CheckedOutAt: r.CheckedOutAt,
	}
}

func productFromDomain(p domain.Product) productResponse {
	resp := productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price.Amount,
		IsSale:    p.IsSale,
		Currency:  p.Price.Currency.String(),
		Stock:     p.Stock,
		Unit:      p.Unit,
		Type:      string(p.Type),
		CreatedAt: p.CreatedAt,
	}

	if p.SalePrice != nil {
		amount := p.SalePrice.Amount
		resp.SalePrice = &amount
	}

	return resp
}
