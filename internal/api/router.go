package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/socialnet/config"
	_ "github.com/d60-Lab/socialnet/docs"
	"github.com/d60-Lab/socialnet/internal/api/handler"
	"github.com/d60-Lab/socialnet/internal/api/middleware"
)

// Options 路由装配依赖
type Options struct {
	Handler  *handler.Handler
	Verifier middleware.TokenVerifier
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter 注册全部路由
func NewRouter(cfg *config.Config, opts Options) *gin.Engine {
	h := opts.Handler

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(opts.Metrics.Handler())
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	// promhttp 自己处理压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	if cfg.IsDebug() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := middleware.Auth(opts.Verifier, cfg.JWT.CookieName)
	limiter := middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.Burst))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signup", limiter, h.Signup)
		auth.POST("/login", limiter, h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/user", requireAuth, h.Me)

		post := api.Group("/post", requireAuth)
		post.GET("/all", h.AllPosts)
		post.GET("/following", h.FollowingPosts)
		post.GET("/liked/:id", h.LikedPosts)
		post.GET("/user/:username", h.UserPosts)
		post.POST("/create", h.CreatePost)
		post.POST("/like/:id", h.LikeUnlike)
		post.POST("/comment/:id", h.Comment)
		post.DELETE("/:id", h.DeletePost)

		user := api.Group("/user", requireAuth)
		user.GET("/profile/:userName", h.Profile)
		user.GET("/suggested", h.Suggested)
		user.POST("/follow/:id", h.FollowUnfollow)
		user.POST("/update", h.UpdateProfile)
		user.GET("/:id/following", h.ListFollowing)
		user.GET("/:id/followers", h.ListFollowers)

		notes := api.Group("/notifications", requireAuth)
		notes.GET("", h.Notifications)
		notes.DELETE("", h.ClearNotifications)
	}
	return r
}
