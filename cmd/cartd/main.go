package main

import (
	"os"

	"github.com/nikolayk812/grocery-cart/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "cartd",
		Usage: "grocery cart and flash sale pricing service",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrateAction,
			},
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-migrate",
						Usage: "do not apply migrations on startup",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "env",
				Usage: "list supported environment variables",
				Action: func(*cli.Context) error {
					return config.Usage()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("cartd failed")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if level, err := cfg.Level(); err == nil {
		logger.SetLevel(level)
	}

	return logger
}

func migrateAction(_ *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	version, err := migrateUp(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	logger.WithField("version", version).Info("migrations applied")
	return nil
}
