// Package validity re-checks flash sale cart lines against a live source.
package validity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

type Checker struct {
	source      port.FlashSaleSource
	concurrency int
	logger      logrus.FieldLogger
	clock       func() time.Time
}

type Option func(*Checker)

func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Checker) {
		c.clock = clock
	}
}

func NewChecker(source port.FlashSaleSource, logger logrus.FieldLogger, opts ...Option) (*Checker, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &Checker{
		source:      source,
		concurrency: DefaultConcurrency,
		logger:      logger.WithField("component", "validity.checker"),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Check returns the product ids of flash sale lines that can no longer be honoured,
// in input order. A line whose lookup fails counts as invalid. If ctx is cancelled
// before all lookups finish, Check returns ctx.Err() and no ids.
func (c *Checker) Check(ctx context.Context, items []domain.CartItem) ([]uuid.UUID, error) {
	invalid := make([]bool, len(items))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	for i, item := range items {
		if item.FlashSale == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			invalid[i] = !c.valid(ctx, item)
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for i, bad := range invalid {
		if bad {
			ids = append(ids, items[i].ProductID)
		}
	}

	return ids, nil
}

func (c *Checker) valid(ctx context.Context, item domain.CartItem) bool {
	logger := c.logger.WithFields(logrus.Fields{
		"productId":   item.ProductID,
		"flashSaleId": item.FlashSale.FlashSaleID,
	})

	m, err := c.source.Membership(ctx, item.ProductID)
	if err != nil {
		if ctx.Err() == nil {
			logger.WithError(err).Warn("flash sale membership lookup failed, treating line as invalid")
		}
		return false
	}

	switch {
	case !m.InFlashSale:
		logger.Debug("product left flash sale")
		return false
	case m.FlashSaleID != item.FlashSale.FlashSaleID:
		logger.WithField("liveFlashSaleId", m.FlashSaleID).Debug("product moved to another flash sale")
		return false
	case !c.clock().Before(m.EndTime):
		logger.WithField("endTime", m.EndTime).Debug("flash sale ended")
		return false
	}

	return true
}
