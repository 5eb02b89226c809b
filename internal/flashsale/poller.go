package flashsale

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/sirupsen/logrus"
)

const DefaultPollInterval = 30 * time.Second

// Poller keeps an in-memory snapshot of active flash sales, refreshed on a fixed
// interval. A failed refresh keeps the previous snapshot.
type Poller struct {
	source   port.FlashSaleSource
	interval time.Duration
	logger   logrus.FieldLogger
	clock    func() time.Time

	mu          sync.RWMutex
	sales       []domain.FlashSale
	refreshedAt time.Time
}

type PollerOption func(*Poller)

func WithClock(clock func() time.Time) PollerOption {
	return func(p *Poller) {
		p.clock = clock
	}
}

func NewPoller(source port.FlashSaleSource, interval time.Duration, logger logrus.FieldLogger, opts ...PollerOption) (*Poller, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := &Poller{
		source:   source,
		interval: interval,
		logger:   logger.WithField("component", "flashsale.poller"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.refreshAndLog(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refreshAndLog(ctx)
		}
	}
}

func (p *Poller) Refresh(ctx context.Context) error {
	now := p.clock()

	sales, err := p.source.Active(ctx, now)
	if err != nil {
		return fmt.Errorf("source.Active: %w", err)
	}

	p.mu.Lock()
	p.sales = sales
	p.refreshedAt = now
	p.mu.Unlock()

	return nil
}

func (p *Poller) refreshAndLog(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.WithError(err).Warn("refresh active flash sales")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"sales": len(p.Sales()),
	}).Debug("active flash sales refreshed")
}

// Sales returns the current snapshot. Callers must not modify it.
func (p *Poller) Sales() []domain.FlashSale {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.sales
}

// Ready reports whether at least one refresh has succeeded.
func (p *Poller) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return !p.refreshedAt.IsZero()
}

// EndTime returns the latest end time among known sales listing productID.
func (p *Poller) EndTime(productID uuid.UUID) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)

	for _, s := range p.Sales() {
		for _, fp := range s.Products {
			if fp.ProductID == productID && s.EndTime.After(latest) {
				latest, found = s.EndTime, true
			}
		}
	}

	return latest, found
}

func (p *Poller) Info(productID uuid.UUID, now time.Time) (domain.FlashSaleInfo, bool) {
	return domain.CheapestInfo(p.Sales(), productID, now)
}
