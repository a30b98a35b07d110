package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// 共通ミドルウェア付きの echo を作る（ルートは Register で登録）
func New(cfg config.Config, log logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())

	origins := []string{"http://localhost:5173"}
	if cfg.FEURL != "" {
		origins = []string{cfg.FEURL}
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, handler.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e
}

// SIGINT/SIGTERM で止まる。処理中のリクエストは shutdownTimeout まで待つ
func Start(e *echo.Echo, addr string, log logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
