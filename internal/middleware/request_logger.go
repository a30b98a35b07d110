package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxLoggerKey    = "logger"
)

// リクエストIDを振って、1リクエスト1行のアクセスログを出す
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			entry := log.WithFields(logrus.Fields{
				"request_id": rid,
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.Set(CtxLoggerKey, entry)

			err := next(c)
			if err != nil {
				// echo の HTTPErrorHandler に書かせてからステータスを読む
				c.Error(err)
			}

			fields := logrus.Fields{
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
			}
			if uid, ok := c.Get(CtxUserIDKey).(int64); ok {
				fields["user_id"] = uid
			}
			entry = entry.WithFields(fields)

			switch {
			case c.Response().Status >= 500:
				entry.Error("request")
			case c.Response().Status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}

// ハンドラ内でリクエストID付きのロガーを使う
func Logger(c echo.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := c.Get(CtxLoggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return fallback
}
