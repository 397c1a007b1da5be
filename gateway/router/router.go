package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/RigelNana/cinexnema/gateway/docs"
	"github.com/RigelNana/cinexnema/gateway/handler"
	"github.com/RigelNana/cinexnema/gateway/middleware"
	"github.com/RigelNana/cinexnema/pkg/apperr"
	ginmetrics "github.com/RigelNana/cinexnema/pkg/metrics/gin"
	"github.com/RigelNana/cinexnema/pkg/ratelimit"
)

const ServiceName = "cinexnema"

// Deps is everything the route table needs.
type Deps struct {
	Auth    *handler.AuthHandler
	Videos  *handler.VideoHandler
	Creator *handler.CreatorHandler
	Storage *handler.StorageHandler
	System  *handler.SystemHandler

	Tokens middleware.TokenValidator
	// Limiter guards the auth endpoints; nil disables limiting.
	Limiter ratelimit.Limiter
	Log     logrus.FieldLogger
}

func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestLogger(d.Log),
		ginmetrics.PrometheusMiddleware(ServiceName),
	)
	r.NoRoute(func(c *gin.Context) {
		middleware.RenderError(c, apperr.NotFound("route not found"))
	})

	r.GET("/health", d.System.Health)
	docs.RegisterRoutes(r)

	bearer := middleware.JWTAuth(d.Tokens)
	admin := []gin.HandlerFunc{bearer, middleware.RequireAdmin()}

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		limited := auth.Group("", middleware.RateLimit(d.Limiter, ServiceName, "auth", d.Log))
		limited.POST("/signup", d.Auth.SignUp)
		limited.POST("/login", d.Auth.Login)
		limited.POST("/session", d.Auth.Session)
		auth.GET("/validate", d.Auth.Validate)
		auth.GET("/me", bearer, d.Auth.Me)
		auth.PUT("/password", bearer, d.Auth.ChangePassword)
	}

	videos := api.Group("/videos")
	{
		videos.GET("/config", d.Videos.Config)
		videos.GET("/quote", d.Videos.Quote)
		videos.GET("/public", d.Videos.ListPublic)
		videos.POST("/submit", d.Videos.Submit)

		moderated := videos.Group("", admin...)
		moderated.GET("", d.Videos.ListAll)
		moderated.POST("/:id/approve", d.Videos.Approve)
		moderated.POST("/:id/revoke", d.Videos.Revoke)
	}

	creators := api.Group("/creators", bearer)
	{
		creators.POST("/cover", d.Videos.UploadCover)
		creators.GET("/videos", d.Videos.ListOwn)
		creators.PATCH("/video/:id", d.Videos.Update)
		creators.DELETE("/video/:id", d.Videos.Delete)
		creators.GET("/dashboard", d.Creator.Dashboard)
		creators.POST("/upload", d.Videos.CreateUpload)
		creators.POST("/upload-complete", d.Videos.CompleteUpload)
		creators.POST("/upload-complete-form", d.Videos.SubmitForm)
		creators.GET("/projects", d.Creator.ListProjects)
		creators.POST("/projects", d.Creator.CreateProject)
		creators.DELETE("/projects/:id", d.Creator.DeleteProject)
	}

	storage := api.Group("/storage", bearer)
	{
		storage.POST("/signed-url", d.Storage.SignedURL)
		storage.POST("/signed-upload", d.Storage.SignedUpload)
		storage.POST("/create-buckets", middleware.RequireAdmin(), d.Storage.CreateBuckets)
		storage.GET("/check-buckets", middleware.RequireAdmin(), d.Storage.CheckBuckets)
	}

	api.POST("/setup/database", append(admin, d.System.SetupDatabase)...)

	return r
}
