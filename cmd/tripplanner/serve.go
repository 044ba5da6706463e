package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/tripplanner/llm"
	tripplanner "github.com/c360studio/tripplanner/processor/trip-planner"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr    string
		natsURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plan requests over HTTP and, optionally, NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)

			app, err := newApp(flags, logger)
			if err != nil {
				return err
			}
			if addr != "" {
				app.cfg.Server.Addr = addr
			}
			switch {
			case natsURL != "":
				app.cfg.NATS.URL = natsURL
			case os.Getenv("NATS_URL") != "" && app.cfg.NATS.URL == "":
				app.cfg.NATS.URL = os.Getenv("NATS_URL")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return app.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL; enables the NATS transport and call recording")
	return cmd
}

// serve runs until ctx is cancelled or the HTTP server fails.
func (a *App) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.withMetrics(reg)

	var (
		nc    *nats.Conn
		store *llm.CallStore
	)
	if a.cfg.NATS.URL != "" {
		var err error
		nc, err = connectNATS(a.cfg.NATS.URL, a.logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				a.logger.Warn("NATS drain failed", "error", err)
			}
		}()

		store, err = a.callStore(ctx, nc)
		if err != nil {
			// Call recording is optional; serving continues without it.
			a.logger.Warn("LLM call recording disabled", "error", err)
		}
	}

	planner := a.newPlanner(store)

	if nc != nil {
		sub, err := tripplanner.NewSubscriber(planner, a.cfg.NATS.PlanSubject, a.logger).Start(ctx, nc)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           tripplanner.NewRouter(planner, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Tripplanner ready", "version", Version, "addr", srv.Addr, "nats", a.cfg.NATS.URL != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	a.logger.Info("Goodbye")
	return nil
}

func connectNATS(url string, logger *slog.Logger) (*nats.Conn, error) {
	logger.Info("Connecting to NATS", "url", url)
	nc, err := nats.Connect(url,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, wrapNATSError(err, url)
	}
	logger.Info("Connected to NATS", "url", url)
	return nc, nil
}

// wrapNATSError adds a hint when no server is reachable.
func wrapNATSError(err error, url string) error {
	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no servers available") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker run -d -p 4222:4222 nats:latest -js

Or serve HTTP only by leaving nats.url empty.`, err, url)
	}
	return fmt.Errorf("NATS connection failed: %w", err)
}

// callStore ensures the call-record stream exists and returns a store on it.
func (a *App) callStore(ctx context.Context, nc *nats.Conn) (*llm.CallStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:     a.cfg.NATS.CallStream,
		Subjects: []string{a.cfg.NATS.CallSubject},
		Storage:  jetstream.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", a.cfg.NATS.CallStream, err)
	}

	return llm.NewCallStore(js, llm.WithSubject(a.cfg.NATS.CallSubject), llm.WithStoreLogger(a.logger))
}
