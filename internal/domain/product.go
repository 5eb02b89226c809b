package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ProductType string

const (
	ProductTypeCount  ProductType = "count"
	ProductTypeWeight ProductType = "weight"
)

func ParseProductType(s string) (ProductType, error) {
	switch t := ProductType(s); t {
	case ProductTypeCount, ProductTypeWeight:
		return t, nil
	default:
		return "", fmt.Errorf("product type[%s] is not valid", s)
	}
}

type Product struct {
	ID        uuid.UUID
	Name      string
	Category  string
	Price     Money
	SalePrice *Money
	IsSale    bool
	Stock     int
	Unit      string
	Type      ProductType

	CreatedAt time.Time
}

func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is empty")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price is negative")
	}
	if _, err := ParseProductType(string(p.Type)); err != nil {
		return err
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock is negative")
	}

	if p.IsSale {
		if p.SalePrice == nil {
			return fmt.Errorf("sale price is missing")
		}
		if p.SalePrice.IsNegative() || !p.SalePrice.LessThan(p.Price) {
			return fmt.Errorf("sale price must be less than price")
		}
	}

	return nil
}
