package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/keeper-responses/app"
	"github.com/mbolis/keeper-responses/config"
	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/httpx"
	"github.com/mbolis/keeper-responses/log"
	"github.com/mbolis/keeper-responses/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	store := database.NewStorage(db)

	app := app.App{
		Storage:      store,
		BearerServer: httpx.NewBearerServer(store, cfg),
		Config:       cfg,
	}

	handler := routes.Wire(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runServer(ctx, cfg, handler)
	if err != nil {
		log.Fatal("main.server:", err)
	}
}

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	if cfg.StaticDir != "" {
		log.Infof("Serving static export from %s", cfg.StaticDir)
	}
	log.Info("Listening on " + cfg.Url())
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is done, then waits for in-flight
// requests to finish before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		drained <- srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-drained
}
