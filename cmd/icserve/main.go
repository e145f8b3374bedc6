package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/centraunit/ic"
	"github.com/centraunit/ic/chiadapter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr, envFile string
	r := &cobra.Command{
		Use:   "icserve",
		Short: "Serve proxied operations over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(envFile)
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	r.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides IC_ADDR)")
	r.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load")
	return r
}

func serve(ctx context.Context, cfg serverConfig) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "log level %q", cfg.LogLevel)
	}
	log.SetLevel(level)

	r, err := newRouter(ic.Default(), cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.WithField("addr", cfg.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newRouter(c *ic.Container, cfg serverConfig) (chi.Router, error) {
	static := c.Static()
	if err := static.WithConfig(ic.TypeOf[greeterConfig]()); err != nil {
		return nil, err
	}
	if err := static.Register("greeting", cfg.Greeting); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	chiadapter.Mount(r, c, ic.TypeOf[*Greeter]())
	return r, nil
}
