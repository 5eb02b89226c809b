package validity_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port/porttest"
	"github.com/nikolayk812/grocery-cart/internal/validity"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestChecker_Check(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	regular := cartItem(nil)
	valid := cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: now.Add(time.Hour)})
	left := cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: now.Add(time.Hour)})
	ended := cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: now.Add(time.Hour)})
	moved := cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: now.Add(time.Hour)})
	failing := cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: now.Add(time.Hour)})

	source := &porttest.FlashSaleSource{}
	source.On("Membership", mock.Anything, valid.ProductID).
		Return(domain.FlashSaleMembership{InFlashSale: true, FlashSaleID: valid.FlashSale.FlashSaleID, EndTime: now.Add(time.Hour)}, nil)
	source.On("Membership", mock.Anything, left.ProductID).
		Return(domain.FlashSaleMembership{}, nil)
	source.On("Membership", mock.Anything, ended.ProductID).
		Return(domain.FlashSaleMembership{InFlashSale: true, FlashSaleID: ended.FlashSale.FlashSaleID, EndTime: now}, nil)
	source.On("Membership", mock.Anything, moved.ProductID).
		Return(domain.FlashSaleMembership{InFlashSale: true, FlashSaleID: uuid.New(), EndTime: now.Add(time.Hour)}, nil)
	source.On("Membership", mock.Anything, failing.ProductID).
		Return(domain.FlashSaleMembership{}, errors.New("connection reset"))

	logger, hook := test.NewNullLogger()
	checker, err := validity.NewChecker(source, logger, validity.WithClock(func() time.Time { return now }), validity.WithConcurrency(2))
	require.NoError(t, err)

	items := []domain.CartItem{failing, regular, valid, left, ended, moved}

	got, err := checker.Check(t.Context(), items)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{failing.ProductID, left.ProductID, ended.ProductID, moved.ProductID}, got)
	source.AssertNotCalled(t, "Membership", mock.Anything, regular.ProductID)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, failing.ProductID, hook.LastEntry().Data["productId"])
}

func TestChecker_NoFlashSaleItems(t *testing.T) {
	source := &porttest.FlashSaleSource{}
	checker, err := validity.NewChecker(source, logrus.New())
	require.NoError(t, err)

	got, err := checker.Check(t.Context(), []domain.CartItem{cartItem(nil), cartItem(nil)})
	require.NoError(t, err)
	assert.Empty(t, got)
	source.AssertNotCalled(t, "Membership", mock.Anything, mock.Anything)
}

func TestChecker_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32

	source := &porttest.FlashSaleSource{}
	source.On("Membership", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}).
		Return(domain.FlashSaleMembership{}, nil)

	checker, err := validity.NewChecker(source, logrus.New(), validity.WithConcurrency(3))
	require.NoError(t, err)

	items := make([]domain.CartItem, 12)
	for i := range items {
		items[i] = cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: time.Now().Add(time.Hour)})
	}

	got, err := checker.Check(t.Context(), items)
	require.NoError(t, err)
	assert.Len(t, got, len(items))
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	source := &porttest.FlashSaleSource{}
	source.On("Membership", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			<-args.Get(0).(context.Context).Done()
		}).
		Return(domain.FlashSaleMembership{}, context.Canceled)

	logger, hook := test.NewNullLogger()
	checker, err := validity.NewChecker(source, logger, validity.WithConcurrency(1))
	require.NoError(t, err)

	items := []domain.CartItem{
		cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: time.Now().Add(time.Hour)}),
		cartItem(&domain.FlashSaleSnapshot{FlashSaleID: uuid.New(), EndTime: time.Now().Add(time.Hour)}),
	}

	got, err := checker.Check(ctx, items)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Empty(t, hook.AllEntries())
}

func cartItem(fs *domain.FlashSaleSnapshot) domain.CartItem {
	item := domain.CartItem{
		ProductID: uuid.New(),
		Type:      domain.ProductTypeCount,
		Price:     domain.NewMoney(10_000, domain.VND),
		Quantity:  1,
	}
	if fs != nil {
		fs.OriginalPrice = domain.NewMoney(20_000, domain.VND)
		item.FlashSale = fs
	}
	return item
}
