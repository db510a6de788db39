package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/cacheaside"
	"github.com/unkn0wn-root/cacheaside/internal/config"
	cazap "github.com/unkn0wn-root/cacheaside/log/zap"
)

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	app := cli.App{
		Name:   "asidectl",
		Usage:  "inspect and populate a cache-aside store",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"CACHEASIDE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log cache events at debug level",
			},
		},
	}
	app.Commands = []*cli.Command{
		cmdGet,
		cmdSet,
		cmdExists,
		cmdDel,
		cmdFetch,
	}
	return app.Run(args)
}

// env bundles what every command needs.
type env struct {
	cache cacheaside.Aside[any]
	log   *zap.Logger
}

func (e *env) Close(cctx *cli.Context) {
	if err := e.cache.Close(cctx.Context); err != nil {
		e.log.Warn("closing provider", zap.Error(err))
	}
	_ = e.log.Sync()
}

func setup(cctx *cli.Context) (*env, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, err
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if cctx.Bool("verbose") {
		level = zapcore.DebugLevel
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zl, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	logger, err := cazap.NewFiltered(zl, cfg.Log.Filter)
	if err != nil {
		return nil, fmt.Errorf("log.filter: %w", err)
	}

	p, err := cfg.Provider(cctx.Context)
	if err != nil {
		return nil, fmt.Errorf("building %s provider: %w", cfg.Driver, err)
	}
	opts, err := config.Options[any](cfg, p)
	if err != nil {
		_ = p.Close(cctx.Context)
		return nil, err
	}
	opts.Logger = logger
	if cfg.DefaultTTL > 0 {
		opts.DefaultExpiration = &cacheaside.Expiration{AbsoluteExpirationRelativeToNow: cfg.DefaultTTL}
	}

	c, err := cacheaside.New[any](opts)
	if err != nil {
		_ = p.Close(cctx.Context)
		return nil, err
	}
	zl.Debug("cache ready", zap.String("driver", cfg.Driver), zap.String("namespace", cfg.Namespace))
	return &env{cache: c, log: zl}, nil
}
