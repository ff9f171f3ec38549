package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/config"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/server"
	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/version"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
)

// appContext is what every data command needs: config, logger and market data client.
type appContext struct {
	config config.Config
	logger *logger.Logger
	client *marketdata.Client
}

func setup(cmd *cli.Command) (*appContext, error) {
	cfg, err := config.Load(cmd.Root().String("config"))
	if err != nil {
		return nil, err
	}

	if address := cmd.String("address"); cmd.IsSet("address") && address != "" {
		cfg.Server.Address = address
	}

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithDevelopment(cfg.Log.Development),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := marketdata.NewClient(cfg.ClientConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create market data client: %w", err)
	}

	return &appContext{config: cfg, logger: log, client: client}, nil
}

func (r *appContext) close() {
	if err := r.client.Close(); err != nil {
		r.logger.Warn("Failed to close market data client", zap.Error(err))
	}

	_ = r.logger.Sync()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address, overrides the config file",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := session.NewManager(rt.client.Provider(), rt.logger,
		session.WithIdleTTL(rt.config.Session.IdleTTL),
	)
	go manager.Run(ctx, rt.config.Session.ExpireInterval)

	srv := server.NewServer(manager, rt.logger,
		server.WithReadHeaderTimeout(rt.config.Server.ReadHeaderTimeout),
	)
	if err := srv.Start(rt.config.Server.Address); err != nil {
		return err
	}

	rt.logger.Info("Dashboard ready",
		zap.String("url", srv.BaseURL()),
		zap.String("provider", string(rt.config.Provider.Type)),
		zap.Bool("store", rt.client.HasStore()),
	)

	<-ctx.Done()

	rt.logger.Info("Shutting down")

	return srv.Stop(context.Background())
}

func warmCommand() *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "Pre-fill the series store with the full history of some symbols",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbols",
				Aliases:  []string{"s"},
				Usage:    "Comma separated symbols, e.g. AAPL,MSFT",
				Required: true,
			},
		},
		Action: warmAction,
	}
}

func warmAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	symbols := splitSymbols(cmd.String("symbols"))

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
		progressbar.OptionSetDescription("Warming"),
		progressbar.OptionShowCount(),
	)

	err = rt.client.Warm(ctx, marketdata.WarmParams{Symbols: symbols, End: time.Now()},
		func(current int, _ int, symbol string) {
			bar.Describe(symbol)
			_ = bar.Set(current)
		},
	)

	_ = bar.Finish()

	return err
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Drop stored series fetched longer ago than --older-than",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "older-than",
				Usage: "Age of the series to drop",
				Value: 30 * 24 * time.Hour,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			removed, err := rt.client.Prune(ctx, time.Now().Add(-cmd.Duration("older-than")))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Removed %d series\n", removed)

			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the config file or of a provider's settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: fmt.Sprintf("Print the schema of one provider (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			var (
				schema string
				err    error
			)

			if name := cmd.String("provider"); name != "" {
				schema, err = marketdata.GetProviderConfigSchema(name)
			} else {
				schema, err = marketdata.ToJSONSchema(config.Config{})
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, schema)

			return nil
		},
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Print the default config as YAML",
		Action: func(_ context.Context, cmd *cli.Command) error {
			out, err := config.Default().Marshal()
			if err != nil {
				return err
			}

			_, err = cmd.Root().Writer.Write(out)

			return err
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

			return nil
		},
	}
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))

	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}
