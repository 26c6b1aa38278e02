package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/fairpos/config"
	"github.com/talkincode/fairpos/internal/app"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/posapi"
	"github.com/talkincode/fairpos/internal/webserver"
)

var (
	cfile = flag.String("c", "fairpos.yml", "config file")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*cfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer application.Release()

	// The audio synth is a presentation collaborator; the core just logs
	// the cue it published.
	_ = application.Sounds().Subscribe(func(event domain.SoundEvent) {
		zap.L().Debug("sound cue", zap.String("event", string(event)))
	})

	server := webserver.NewWebServer(cfg)
	posapi.New(application).Register(server.Echo())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("fairpos stopped", zap.Error(err))
	}
}
