package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/db"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"golang.org/x/text/currency"
)

type flashSaleRepository struct {
	q     *db.Queries
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewFlashSale(pool *pgxpool.Pool) (port.FlashSaleRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &flashSaleRepository{
		q:     db.New(pool),
		pool:  pool,
		clock: time.Now,
	}, nil
}

func (r *flashSaleRepository) Create(ctx context.Context, sale domain.FlashSale) (uuid.UUID, error) {
	if err := sale.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("sale.Validate: %w", err)
	}

	id := sale.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return inTx(ctx, r.pool, r.q, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(q *db.Queries) (uuid.UUID, error) {
		err := q.CreateFlashSale(ctx, db.CreateFlashSaleParams{
			ID:        id,
			Name:      sale.Name,
			StartTime: sale.StartTime,
			EndTime:   sale.EndTime,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("q.CreateFlashSale: %w", err)
		}

		for _, p := range sale.Products {
			err := q.AddFlashSaleProduct(ctx, db.AddFlashSaleProductParams{
				FlashSaleID:         id,
				ProductID:           p.ProductID,
				FlashPriceAmount:    p.FlashSalePrice.Amount,
				OriginalPriceAmount: p.OriginalPrice.Amount,
				PriceCurrency:       p.FlashSalePrice.Currency.String(),
				DiscountPercentage:  int32(p.DiscountPercentage),
				Quantity:            int32(p.Quantity),
				Sold:                int32(p.Sold),
			})
			if err != nil {
				return uuid.Nil, fmt.Errorf("q.AddFlashSaleProduct[%s]: %w", p.ProductID, err)
			}
		}

		return id, nil
	})
}

func (r *flashSaleRepository) Get(ctx context.Context, id uuid.UUID) (domain.FlashSale, error) {
	row, err := r.q.GetFlashSale(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FlashSale{}, apperr.NotFound("q.GetFlashSale", fmt.Sprintf("flash sale[%s] not found", id))
		}
		return domain.FlashSale{}, fmt.Errorf("q.GetFlashSale: %w", err)
	}

	sales, err := r.withProducts(ctx, []db.FlashSale{row})
	if err != nil {
		return domain.FlashSale{}, err
	}

	return sales[0], nil
}

func (r *flashSaleRepository) Active(ctx context.Context, now time.Time) ([]domain.FlashSale, error) {
	rows, err := r.q.ListActiveFlashSales(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("q.ListActiveFlashSales: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return r.withProducts(ctx, rows)
}

func (r *flashSaleRepository) Membership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error) {
	info, ok, err := r.InfoFor(ctx, productID, r.clock())
	if err != nil {
		return domain.FlashSaleMembership{}, err
	}
	if !ok {
		return domain.FlashSaleMembership{InFlashSale: false}, nil
	}

	return domain.FlashSaleMembership{
		InFlashSale: true,
		FlashSaleID: info.FlashSaleID,
		EndTime:     info.EndTime,
	}, nil
}

func (r *flashSaleRepository) InfoFor(ctx context.Context, productID uuid.UUID, now time.Time) (domain.FlashSaleInfo, bool, error) {
	row, err := r.q.GetActiveFlashSaleInfo(ctx, db.GetActiveFlashSaleInfoParams{
		ProductID: productID,
		Now:       now,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FlashSaleInfo{}, false, nil
		}
		return domain.FlashSaleInfo{}, false, fmt.Errorf("q.GetActiveFlashSaleInfo: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.FlashSaleInfo{}, false, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.FlashSaleInfo{
		FlashSaleID:        row.ID,
		FlashSalePrice:     domain.Money{Amount: row.FlashPriceAmount, Currency: parsedCurrency},
		OriginalPrice:      domain.Money{Amount: row.OriginalPriceAmount, Currency: parsedCurrency},
		DiscountPercentage: int(row.DiscountPercentage),
		EndTime:            row.EndTime,
	}, true, nil
}

func (r *flashSaleRepository) withProducts(ctx context.Context, rows []db.FlashSale) ([]domain.FlashSale, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	productRows, err := r.q.ListFlashSaleProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.ListFlashSaleProducts: %w", err)
	}

	bySale := make(map[uuid.UUID][]domain.FlashSaleProduct, len(rows))
	for _, pr := range productRows {
		p, err := mapFlashSaleProductToDomain(pr)
		if err != nil {
			return nil, fmt.Errorf("mapFlashSaleProductToDomain: %w", err)
		}
		bySale[pr.FlashSaleID] = append(bySale[pr.FlashSaleID], p)
	}

	sales := make([]domain.FlashSale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, domain.FlashSale{
			ID:        row.ID,
			Name:      row.Name,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
			Products:  bySale[row.ID],
		})
	}

	return sales, nil
}

func mapFlashSaleProductToDomain(row db.FlashSaleProduct) (domain.FlashSaleProduct, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.FlashSaleProduct{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.FlashSaleProduct{
		ProductID:          row.ProductID,
		FlashSalePrice:     domain.Money{Amount: row.FlashPriceAmount, Currency: parsedCurrency},
		OriginalPrice:      domain.Money{Amount: row.OriginalPriceAmount, Currency: parsedCurrency},
		DiscountPercentage: int(row.DiscountPercentage),
		Quantity:           int(row.Quantity),
		Sold:               int(row.Sold),
	}, nil
}
