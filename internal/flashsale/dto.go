package flashsale

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Envelope is the JSON wrapper used by every /api endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type SaleDTO struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	StartTime time.Time    `json:"startTime"`
	EndTime   time.Time    `json:"endTime"`
	Products  []ProductDTO `json:"products"`
}

type ProductDTO struct {
	ProductID          uuid.UUID       `json:"productId"`
	FlashSalePrice     decimal.Decimal `json:"flashSalePrice"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	Currency           string          `json:"currency"`
	DiscountPercentage int             `json:"discountPercentage"`
	Quantity           int             `json:"quantity"`
	Sold               int             `json:"sold"`
}

type MembershipDTO struct {
	InFlashSale bool       `json:"inFlashSale"`
	FlashSaleID *uuid.UUID `json:"flashSaleId,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
}

func SaleFromDomain(s domain.FlashSale) SaleDTO {
	dto := SaleDTO{
		ID:        s.ID,
		Name:      s.Name,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Products:  make([]ProductDTO, 0, len(s.Products)),
	}

	for _, p := range s.Products {
		dto.Products = append(dto.Products, ProductDTO{
			ProductID:          p.ProductID,
			FlashSalePrice:     p.FlashSalePrice.Amount,
			OriginalPrice:      p.OriginalPrice.Amount,
			Currency:           p.FlashSalePrice.Currency.String(),
			DiscountPercentage: p.DiscountPercentage,
			Quantity:           p.Quantity,
			Sold:               p.Sold,
		})
	}

	return dto
}

// ToDomain converts and validates a sale received over the wire.
func (dto SaleDTO) ToDomain() (domain.FlashSale, error) {
	sale := domain.FlashSale{
		ID:        dto.ID,
		Name:      dto.Name,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
	}

	if dto.ID == uuid.Nil {
		return domain.FlashSale{}, fmt.Errorf("id is empty")
	}

	for _, p := range dto.Products {
		unit, err := currency.ParseISO(p.Currency)
		if err != nil {
			return domain.FlashSale{}, fmt.Errorf("currency[%s] is not valid: %w", p.Currency, err)
		}

		sale.Products = append(sale.Products, domain.FlashSaleProduct{
			ProductID:          p.ProductID,
			FlashSalePrice:     domain.Money{Amount: p.FlashSalePrice, Currency: unit},
			OriginalPrice:      domain.Money{Amount: p.OriginalPrice, Currency: unit},
			DiscountPercentage: p.DiscountPercentage,
			Quantity:           p.Quantity,
			Sold:               p.Sold,
		})
	}

	if err := sale.Validate(); err != nil {
		return domain.FlashSale{}, fmt.Errorf("sale[%s]: %w", dto.ID, err)
	}

	return sale, nil
}

func MembershipFromDomain(m domain.FlashSaleMembership) MembershipDTO {
	if !m.InFlashSale {
		return MembershipDTO{}
	}

	id, endTime := m.FlashSaleID, m.EndTime
	return MembershipDTO{
		InFlashSale: true,
		FlashSaleID: &id,
		EndTime:     &endTime,
	}
}

func (dto MembershipDTO) ToDomain() (domain.FlashSaleMembership, error) {
	if !dto.InFlashSale {
		return domain.FlashSaleMembership{}, nil
	}
	if dto.FlashSaleID == nil || *dto.FlashSaleID == uuid.Nil {
		return domain.FlashSaleMembership{}, fmt.Errorf("flashSaleId is missing")
	}
	if dto.EndTime == nil || dto.EndTime.IsZero() {
		return domain.FlashSaleMembership{}, fmt.Errorf("endTime is missing")
	}

	return domain.FlashSaleMembership{
		InFlashSale: true,
		FlashSaleID: *dto.FlashSaleID,
		EndTime:     *dto.EndTime,
	}, nil
}
