package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/pharmacy_shop/internal/middleware/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/middleware/session"
	"github.com/Skotchmaster/pharmacy_shop/internal/telemetry"
	"github.com/Skotchmaster/pharmacy_shop/internal/upload"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != 0 {
				cfg.ServerPort = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	shutdownTracing, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, Version, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			a.logger.Warn("tracer_shutdown_failed", "error", err)
		}
	}()

	if n, err := a.auth.PurgeSessions(ctx); err != nil {
		a.logger.Warn("session_purge_failed", "error", err)
	} else if n > 0 {
		a.logger.Info("session_purge", "deleted", n)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(telemetry.Middleware(cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(a.logger, a.metrics))
	e.Use(echomw.BodyLimit("8M"))
	if cfg.CSRFProtection {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:     cfg.CookieSecure,
			SameOrigin: true,
			SkipPaths:  []string{"/api/v1/auth/register", "/api/v1/auth/login"},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		Auth:   &httpserver.AuthHTTP{Svc: a.auth, SecureCookie: cfg.CookieSecure},
		Shop:   &httpserver.ShopHTTP{Catalog: a.catalog},
		Cart:   &httpserver.CartHTTP{Svc: a.cart},
		Orders: &httpserver.OrderHTTP{Orders: a.orders, Cart: a.cart},
		Admin: &httpserver.AdminHTTP{
			Admin:   a.admin,
			Catalog: a.catalog,
			Orders:  a.orders,
			Uploads: &upload.Store{Dir: cfg.UploadDir, URLPrefix: cfg.UploadURLPrefix},
		},
		Session: &session.Middleware{Auth: a.auth, SecureCookie: cfg.CookieSecure},
		DB:      a.db,
		Metrics: a.metrics,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server_listening", "addr", srv.Addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info("server_stopped")
	return nil
}
