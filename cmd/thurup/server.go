package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/jerynmathew/thurup/internal/randutil"
	"github.com/jerynmathew/thurup/internal/server"
	"github.com/jerynmathew/thurup/internal/store"
)

// ServerCmd runs the game server.
type ServerCmd struct {
	Config        string        `kong:"default='thurup.hcl',help='Path to HCL config file'"`
	Addr          string        `kong:"help='Listen address, overrides config'"`
	DBPath        string        `kong:"name='db-path',help='SQLite database path, overrides config'"`
	Debug         bool          `kong:"help='Enable debug logging'"`
	Ephemeral     bool          `kong:"help='Run without persistence'"`
	SweepInterval time.Duration `kong:"default='10m',help='How often to sweep stale games'"`
	Seed          *int64        `kong:"help='Deterministic RNG seed for short codes (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address, cfg.Server.Port = splitListenAddr(c.Addr, cfg.Server.Port)
	}
	if c.DBPath != "" {
		cfg.Server.DBPath = c.DBPath
	}

	logger := setupLogger(cfg.Server.LogLevel, c.Debug)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	}

	var st *store.Store
	if !c.Ephemeral {
		st, err = store.Open(cfg.Server.DBPath, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Info("persistence enabled", "db", cfg.Server.DBPath)
	}

	registry := server.NewRegistry(randutil.New(seed))
	service := server.NewGameService(registry, st, cfg.Game, quartz.NewReal(), logger)
	defer service.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.RestoreAll(ctx); err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server.ListenAddr(), service, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	if st != nil {
		sweeper := store.NewSweeper(st, quartz.NewReal(), c.SweepInterval)
		g.Go(func() error {
			err := sweeper.Run(ctx)
			if context.Cause(ctx) != nil {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return srv.Stop()
	})

	return g.Wait()
}
