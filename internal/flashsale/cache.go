package flashsale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMembershipTTL = 5 * time.Second
	membershipKeyPrefix  = "flashsale:membership:"
)

// Cache is a read-through Redis cache in front of a FlashSaleSource. Only
// successful membership answers are cached; Redis failures fall back to the source.
type Cache struct {
	source port.FlashSaleSource
	client redis.UniversalClient
	ttl    time.Duration
	logger logrus.FieldLogger
}

var _ port.FlashSaleSource = (*Cache)(nil)

func NewCache(source port.FlashSaleSource, client redis.UniversalClient, ttl time.Duration, logger logrus.FieldLogger) (*Cache, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if ttl <= 0 {
		ttl = DefaultMembershipTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Cache{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger.WithField("component", "flashsale.cache"),
	}, nil
}

func (c *Cache) Membership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error) {
	key := membershipKeyPrefix + productID.String()

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var dto MembershipDTO
		if err := json.Unmarshal(payload, &dto); err == nil {
			if m, err := dto.ToDomain(); err == nil {
				return m, nil
			}
		}
		c.logger.WithField("key", key).Warn("discarding malformed cached membership")
	case !errors.Is(err, redis.Nil):
		c.logger.WithError(err).WithField("key", key).Warn("read cached membership")
	}

	m, err := c.source.Membership(ctx, productID)
	if err != nil {
		return domain.FlashSaleMembership{}, err
	}

	payload, err = json.Marshal(MembershipFromDomain(m))
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("write cached membership")
	}

	return m, nil
}

func (c *Cache) Active(ctx context.Context, now time.Time) ([]domain.FlashSale, error) {
	return c.source.Active(ctx, now)
}
