package server

import (
	"log/slog"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// ルート登録に必要な部品一式
type Deps struct {
	Cfg       config.Config
	UserRepo  repository.UserRepository
	AuthH     *handler.AuthHandler
	ProductH  *handler.ProductHandler
	PosH      *handler.PosHandler
	ReportH   *handler.ReportHandler
	CustomerH *handler.CustomerHandler
	Log       *slog.Logger
}

func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(deps.Log))

	registerRoutes(e, deps)
	return e
}

func Start(addr string, deps Deps) error {
	e := New(deps)
	return e.Start(addr)
}

// アクセスログをslogへ流す
func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	})
}

func registerRoutes(e *echo.Echo, deps Deps) {
	// 認証不要
	deps.AuthH.RegisterPublicRoutes(e)

	// 要ログイン（JWT検証 + token_version照合）
	api := e.Group("",
		middleware.AuthJWT(deps.Cfg),
		middleware.TokenVersionGuard(deps.UserRepo),
	)

	deps.AuthH.RegisterProtectedRoutes(api)
	deps.ProductH.RegisterRoutes(api)
	deps.PosH.RegisterRoutes(api)
	deps.ReportH.RegisterRoutes(api)
	deps.CustomerH.RegisterRoutes(api)
}
