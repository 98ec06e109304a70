package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"metric-backend/internal/adapter/middleware"
	"metric-backend/internal/infrastructure/metrics"
)

type RouterDeps struct {
	Log          *zap.Logger
	Metrics      *metrics.Metrics
	Redis        *redis.Client // nil disables idempotency replay
	IdempTTL     time.Duration
	RateLimitRPS float64 // <= 0 disables rate limiting

	Health    *Handler
	Loans     *LoanHandler
	Users     *UserHandler
	Trust     *TrustHandler
	Insurance *InsuranceHandler
}

func NewRouter(d RouterDeps) *echo.Echo {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("user_id", c.Request().Header.Get(middleware.HeaderUserID)),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics(d.Metrics))
	if d.RateLimitRPS > 0 {
		e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
			Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(d.RateLimitRPS),
				Burst:     int(d.RateLimitRPS) * 2,
				ExpiresIn: 3 * time.Minute,
			}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				if id := c.Request().Header.Get(middleware.HeaderUserID); id != "" {
					return id, nil
				}
				return c.RealIP(), nil
			},
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded", Code: "RateLimited"})
			},
		}))
	}

	e.GET("/health", d.Health.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("", middleware.Auth())
	if d.Redis != nil {
		api.Use(middleware.IdempotencyMiddleware(d.Redis, d.IdempTTL, log))
	}

	api.POST("/users/sign-in", d.Users.SignIn)
	api.GET("/users/me", d.Users.Me)
	api.POST("/users/me/role", d.Users.SelectRole)
	api.POST("/users/me/verification", d.Trust.SetVerification)
	api.POST("/users/me/linked-accounts", d.Users.LinkAccount)
	api.POST("/vouches", d.Trust.Vouch)

	api.GET("/risk-score", d.Loans.RiskScore)
	api.POST("/loans", d.Loans.RequestLoan)
	api.GET("/loans/pending", d.Loans.ListPending)
	api.GET("/loans/mine", d.Loans.ListMine)
	api.GET("/loans/funded-by-me", d.Loans.ListFundedByMe)
	api.GET("/loans/:loan_id", d.Loans.GetLoan)
	api.POST("/loans/:loan_id/fund", d.Loans.Fund)
	api.POST("/loans/:loan_id/repay", d.Loans.Repay)
	api.POST("/loans/:loan_id/default", d.Loans.Default)
	api.GET("/loans/:loan_id/repayment-plan", d.Loans.RepaymentPlan)

	api.GET("/insurance-pool", d.Insurance.Summary)
	api.POST("/insurance-pool/contributions", d.Insurance.Contribute)

	return e
}
