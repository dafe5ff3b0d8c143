package http

import (
	"context"
	"time"

	"github.com/dkeye/mediabot/internal/adapters/signal"
	"github.com/dkeye/mediabot/internal/config"
	transport "github.com/dkeye/mediabot/internal/transport/http"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const clientTokenCookie = "ct"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(clientTokenCookie)
		if token == "" {
			token = genClientToken()
			c.SetCookie(clientTokenCookie, token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// Deps are the handlers mounted by SetupRouter. Signal and Gatherer may be nil.
type Deps struct {
	Signal   *signal.SignalWSController
	Control  *transport.ControlHandlers
	Gatherer prometheus.Gatherer
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MediaBotSessions", store))
	r.Use(ClientTokenMiddleware())

	interval := cfg.RateLimit.Interval
	if interval <= 0 {
		interval = time.Second
	}
	limiter := transport.NewRateLimiter(cfg.RateLimit.Requests, interval)

	api := r.Group("/api")

	if deps.Signal != nil {
		api.GET("/ws/signal", func(c *gin.Context) {
			log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
			deps.Signal.HandleSignal(ctx, c)
		})
	}

	if deps.Control != nil {
		api.POST("/subscriptions", limiter.Middleware(), deps.Control.Subscribe)
		api.DELETE("/subscriptions", limiter.Middleware(), deps.Control.Unsubscribe)
		api.POST("/recording/flush", deps.Control.Flush)
		api.GET("/status", deps.Control.Status)
	}

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	log.Info().Str("module", "adapters.http").Bool("signal", deps.Signal != nil).Msg("router setup")
	return r
}
