package routes

import (
	"net/http"

	"github.com/brightnest/daycare/internal/app/controllers"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/filestorage"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/brightnest/daycare/internal/pkg/websocket"
	"github.com/gin-gonic/gin"
)

// Controllers groups every controller the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Child        *controllers.ChildController
	Category     *controllers.CategoryController
	Newsletter   *controllers.NewsletterController
	Announcement *controllers.AnnouncementController
	Event        *controllers.EventController
	Subscription *controllers.SubscriptionController
	Health       *controllers.HealthController
	Feed         *websocket.Handler
}

// Options are the router settings that come from configuration
type Options struct {
	StoragePath string
	// MetricsPath is left unmounted when empty
	MetricsPath string
	Metrics     *metrics.Metrics
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, opts Options) {
	router.GET("/health", c.Health.Health)
	router.GET("/health/live", c.Health.Live)
	router.GET("/health/ready", c.Health.Ready)

	if opts.MetricsPath != "" && opts.Metrics != nil {
		router.GET(opts.MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.StoragePath != "" {
		router.StaticFS(filestorage.URLPrefix, http.Dir(opts.StoragePath))
	}

	// API version group. Every route resolves the caller when a bearer token
	// is present; the services reject anonymous callers where required.
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.Authenticate())

	auth := v1.Group("/auth")
	{
		auth.POST("/token", c.Auth.TokenAuth)
		auth.POST("/verify", c.Auth.VerifyToken)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/revoke", c.Auth.RevokeToken)
	}

	v1.GET("/me", c.User.Me)
	users := v1.Group("/users")
	{
		users.GET("", c.User.GetUsers)
		users.POST("", c.User.CreateUser)
		users.GET("/:id", c.User.GetUser)
		users.PATCH("/:id", c.User.UpdateUser)
	}

	children := v1.Group("/children")
	{
		children.GET("", c.Child.GetChildren)
		children.POST("", c.Child.CreateChild)
		children.GET("/:id", c.Child.GetChild)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", c.Category.GetCategories)
		categories.POST("", c.Category.CreateCategory)
		categories.GET("/:id", c.Category.GetCategory)
	}

	newsletters := v1.Group("/newsletters")
	{
		newsletters.GET("", c.Newsletter.GetNewsletters)
		newsletters.POST("", c.Newsletter.CreateNewsletter)
		newsletters.GET("/featured", c.Newsletter.GetFeaturedNewsletters)
		newsletters.GET("/:id", c.Newsletter.GetNewsletter)
		newsletters.POST("/:id/publish", c.Newsletter.PublishNewsletter)
		newsletters.POST("/:id/archive", c.Newsletter.ArchiveNewsletter)
		newsletters.POST("/:id/cover", c.Newsletter.UploadCover)
		newsletters.POST("/:id/opened", c.Newsletter.MarkOpened)
		newsletters.POST("/:id/clicked", c.Newsletter.MarkClicked)
		newsletters.GET("/:id/recipients", c.Newsletter.GetRecipients)
	}

	announcements := v1.Group("/announcements")
	{
		announcements.GET("", c.Announcement.GetAnnouncements)
		announcements.POST("", c.Announcement.CreateAnnouncement)
		announcements.GET("/:id", c.Announcement.GetAnnouncement)
	}

	events := v1.Group("/events")
	{
		events.GET("", c.Event.GetEvents)
		events.POST("", c.Event.CreateEvent)
		events.GET("/upcoming", c.Event.GetUpcomingEvents)
		events.GET("/:id", c.Event.GetEvent)
	}

	groups := v1.Group("/subscription-groups")
	{
		groups.GET("", c.Subscription.GetGroups)
		groups.POST("", c.Subscription.CreateGroup)
	}
	v1.GET("/subscription", c.Subscription.MySubscription)
	v1.PUT("/subscription", c.Subscription.UpdateSubscription)

	if c.Feed != nil {
		v1.GET("/feed/ws", c.Feed.HandleConnection)
	}
}
