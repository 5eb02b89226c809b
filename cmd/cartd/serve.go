package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/config"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/flashsale"
	"github.com/nikolayk812/grocery-cart/internal/migrations"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/nikolayk812/grocery-cart/internal/repository"
	"github.com/nikolayk812/grocery-cart/internal/service"
	"github.com/nikolayk812/grocery-cart/internal/transport"
	"github.com/nikolayk812/grocery-cart/internal/validity"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func migrateUp(databaseURL string) (uint, error) {
	version, err := migrations.Up(databaseURL)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}

	return version, nil
}

func serveAction(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	fees, err := config.LoadFeePolicy(cfg.FeesFile)
	if err != nil {
		return fmt.Errorf("config.LoadFeePolicy: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !c.Bool("skip-migrate") {
		version, err := migrateUp(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		logger.WithField("version", version).Info("migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis.ParseURL: %w", err)
		}

		rdb = redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("rdb.Ping: %w", err)
		}
	}

	handler, poller, err := wire(cfg, pool, rdb, fees, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := poller.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("poller.Run: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// wire builds the service graph. The flash sale source is the remote API when
// configured, the database otherwise; Redis adds guest carts and a membership cache.
func wire(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, fees domain.FeePolicy, logger *logrus.Logger) (http.Handler, *flashsale.Poller, error) {
	products, err := repository.NewProduct(pool)
	if err != nil {
		return nil, nil, fmt.Errorf("repository.NewProduct: %w", err)
	}
	carts, err := repository.NewCart(pool)
	if err != nil {
		return nil, nil, fmt.Errorf("repository.NewCart: %w", err)
	}
	checkout, err := repository.NewCheckout(pool)
	if err != nil {
		return nil, nil, fmt.Errorf("repository.NewCheckout: %w", err)
	}

	var source port.FlashSaleSource
	if cfg.FlashSaleURL != "" {
		if source, err = flashsale.NewClient(cfg.FlashSaleURL); err != nil {
			return nil, nil, fmt.Errorf("flashsale.NewClient: %w", err)
		}
	} else {
		if source, err = repository.NewFlashSale(pool); err != nil {
			return nil, nil, fmt.Errorf("repository.NewFlashSale: %w", err)
		}
	}

	var guestCarts port.CartRepository
	if rdb != nil {
		if guestCarts, err = repository.NewGuestCart(rdb); err != nil {
			return nil, nil, fmt.Errorf("repository.NewGuestCart: %w", err)
		}

		if cfg.MembershipCacheTTL > 0 {
			if source, err = flashsale.NewCache(source, rdb, cfg.MembershipCacheTTL, logger); err != nil {
				return nil, nil, fmt.Errorf("flashsale.NewCache: %w", err)
			}
		}
	}

	poller, err := flashsale.NewPoller(source, cfg.PollInterval, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("flashsale.NewPoller: %w", err)
	}

	checker, err := validity.NewChecker(source, logger, validity.WithConcurrency(cfg.CheckConcurrency))
	if err != nil {
		return nil, nil, fmt.Errorf("validity.NewChecker: %w", err)
	}

	svc, err := service.NewCartService(service.Deps{
		Products:   products,
		Carts:      carts,
		GuestCarts: guestCarts,
		Checkout:   checkout,
		FlashSales: source,
		Lookup:     poller,
		Checker:    checker,
		Fees:       fees,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("service.NewCartService: %w", err)
	}

	return transport.Router(svc, logger), poller, nil
}
