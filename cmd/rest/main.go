package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"simple-notes-be/internal/bootstrap"
	"simple-notes-be/internal/config"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/server"
	"simple-notes-be/internal/tracer"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 3. Initialize Storage Backend
	backend, err := bootstrap.NewStorageBackend(cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to initialize storage backend: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(backend, cfg, sysLogger)
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("[WARN] Failed to close container: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	if err := container.StartBackground(ctx); err != nil {
		log.Panicf("Unable to start consumer service: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[ERROR] Server stopped: %v", err)
	}
}
