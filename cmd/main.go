package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"card_market/internal/application"
	"card_market/internal/config"
	"card_market/pkg/contextx"
	"card_market/pkg/jwtauth"
	"card_market/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "card-market",
		Usage: "P2P trading card marketplace",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the notification worker",
				Action: withConfig(application.Run),
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: withConfig(application.Migrate),
			},
			{
				Name:  "token",
				Usage: "issue an access token for a user (local testing)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Usage: "user id", Required: true},
					&cli.StringFlag{Name: "secret", EnvVars: []string{"AUTH_JWT_SECRET"}, Required: true},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
				Action: issueToken,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("application failed", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}
}

func withConfig(run func(context.Context, config.Config) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}

		log := logx.New(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat).
			With(slog.String("app", cfg.App.Name), slog.String("version", cfg.App.Version))
		slog.SetDefault(log)

		ctx := contextx.WithLogger(cctx.Context, log)

		if err := run(ctx, cfg); err != nil {
			return err
		}

		log.Info("application stopped")

		return nil
	}
}

func issueToken(cctx *cli.Context) error {
	token, err := jwtauth.New([]byte(cctx.String("secret"))).Sign(cctx.String("subject"), cctx.Duration("ttl"))
	if err != nil {
		return fmt.Errorf("jwtauth.Sign: %w", err)
	}

	_, err = fmt.Fprintln(cctx.App.Writer, token)

	return err
}
