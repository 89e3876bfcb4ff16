package main

import (
	"context"
	"errors"
	"fmt"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"inkpress/internal/build"
	"inkpress/internal/domain/config"
	"inkpress/internal/i18n"
	"inkpress/internal/ingest"
	"inkpress/internal/logging"
	"inkpress/internal/serve"
	"os"
	"os/signal"
	"syscall"
)

type env struct {
	cfg config.Config
	log *zap.Logger
}

type envKey struct{}

func envFrom(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{cfg: config.Default(), log: zap.NewNop()}
}

// prepare 在解析完命令行之后、执行子命令之前运行
func prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	e := envFrom(ctx)

	cfg, err := config.LoadOrDefault(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("unable to load configuration: %w", err)
	}
	e.cfg = cfg
	if e.log, err = logging.New(cfg.Logging, cmd.Bool("debug")); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.log.Debug("program started", zap.Strings("args", os.Args), zap.String("config", cmd.String("config")))
	return ctx, nil
}

func finish(ctx context.Context, _ *cli.Command) error {
	// stdout/stderr 上的 Sync 会报 EINVAL，忽略
	_ = envFrom(ctx).log.Sync()
	return nil
}

func runBuild(ctx context.Context, _ *cli.Command) error {
	e := envFrom(ctx)
	res, err := (&build.Builder{Cfg: e.cfg, Log: e.log}).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("build %s: %d articles, %d pages written, %d unchanged, %d warnings\n",
		res.BuildID, res.Articles, res.Written, res.Skipped, len(res.Warnings))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	e := envFrom(ctx)
	addr := e.cfg.Server.Addr
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}
	s, err := serve.New(e.cfg, e.log)
	if err != nil {
		return err
	}
	return multierr.Append(s.ListenAndServe(ctx, addr), s.Close())
}

func runCheck(ctx context.Context, _ *cli.Command) error {
	e := envFrom(ctx)
	locales, err := i18n.NewLocales(e.cfg)
	if err != nil {
		return err
	}
	arts, warns, err := ingest.Ingest(ctx, ingest.Options{
		SourceDir: e.cfg.Build.SourceDir,
		Locales:   locales,
		Location:  e.cfg.Location(),
		Workers:   e.cfg.Build.Workers,
		Log:       e.log,
	})
	if err != nil {
		return err
	}

	var invalid error
	for _, w := range warns {
		fmt.Printf("%s: %s\n", w.Path, w.Msg)
		invalid = multierr.Append(invalid, w.Err)
	}
	fmt.Printf("%d articles, %d warnings\n", len(arts), len(warns))
	if invalid != nil {
		return fmt.Errorf("%d invalid articles: %w", len(multierr.Errors(invalid)), invalid)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &env{}), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "inkpress",
		Usage:           "multilingual static blog generator",
		HideHelpCommand: true,
		Before:          prepare,
		After:           finish,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "site.yaml", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Renders the site into the public directory",
				Action: runBuild,
			},
			{
				Name:   "serve",
				Usage:  "Runs the development server with live reload",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen on `ADDR` instead of server.addr"},
				},
			},
			{
				Name:   "check",
				Usage:  "Validates sources without writing anything",
				Action: runCheck,
			},
		},
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
