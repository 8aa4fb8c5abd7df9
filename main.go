package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/CampusLease/controllers"
	"github.com/CampusLease/initializers"
	"github.com/CampusLease/middlewares"
	"github.com/CampusLease/services"
)

func init() {
	initializers.LoadEnv()
	initializers.LoadConfig()
	initializers.InitLogger()
	initializers.ConnectDB()
	services.InitPushNotificationService()
	services.InitEmailService()
}

func main() {
	router := gin.Default()

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return middlewares.ClientIPKey(c)
	}
	authLimit := middlewares.RateLimitMiddleware("auth", rate.Limit(2), 5, getKey)
	generalLimit := middlewares.RateLimitMiddleware("general", rate.Limit(10), 10, getKey)

	api := router.Group("/api")
	api.GET("/health", controllers.Health)

	// auth endpoints
	api.POST("/auth/register", authLimit, controllers.Register)
	api.POST("/auth/login", authLimit, controllers.Login)
	api.POST("/auth/logout", generalLimit, controllers.Logout)
	api.GET("/auth/me", generalLimit, middlewares.CheckAuth, controllers.GetCurrentUser)

	// password reset endpoints
	api.POST("/auth/forgot-password", authLimit, controllers.ForgotPassword)
	api.POST("/auth/verify-reset-code", authLimit, controllers.VerifyResetCode)
	api.POST("/auth/reset-password", authLimit, controllers.ResetPassword)

	// public listing routes
	api.GET("/listings", generalLimit, controllers.GetListings)
	api.GET("/listings/:id", generalLimit, controllers.GetListing)

	// admin console
	api.POST("/admin/login", authLimit, controllers.AdminLogin)
	api.POST("/admin/logout", generalLimit, controllers.AdminLogout)

	admin := api.Group("/admin")
	admin.Use(generalLimit)
	admin.Use(middlewares.CheckAdmin)
	{
		admin.GET("/me", controllers.AdminMe)
		admin.GET("/stats", controllers.AdminGetStats)
		admin.GET("/users", controllers.AdminGetUsers)
		admin.PUT("/users/:id", controllers.AdminUpdateUser)
		admin.GET("/listings", controllers.AdminGetListings)
		admin.PUT("/listings/:id", controllers.AdminUpdateListing)
		admin.DELETE("/listings/:id", controllers.AdminDeleteListing)
		admin.GET("/applications", controllers.AdminGetApplications)
		admin.GET("/threads", controllers.AdminGetThreads)
		admin.GET("/login-events", controllers.AdminGetLoginEvents)
	}

	auth := api.Group("/")
	auth.Use(generalLimit)
	auth.Use(middlewares.CheckAuth)
	{
		// listing routes; /listings/mine is registered ahead of the public /listings/:id
		auth.GET("/listings/mine", controllers.GetMyListings)
		auth.POST("/listings", controllers.CreateListing)
		auth.PUT("/listings/:id", controllers.UpdateListing)
		auth.DELETE("/listings/:id", controllers.DeleteListing)

		// application routes
		auth.GET("/applications", controllers.GetApplications)
		auth.POST("/applications", controllers.CreateApplication)

		// thread routes
		auth.GET("/threads", controllers.GetThreads)
		auth.POST("/threads", controllers.CreateThread)
		auth.GET("/threads/:id", controllers.GetThread)
		auth.POST("/threads/:id/messages", controllers.PostMessage)
		auth.POST("/threads/:id/read", controllers.MarkThreadRead)

		// roommate routes
		auth.GET("/roommates", controllers.GetRoommates)
		auth.GET("/roommates/me", controllers.GetMyRoommateProfile)
		auth.PUT("/roommates/me", controllers.UpsertMyRoommateProfile)
		auth.GET("/roommates/:id", controllers.GetRoommate)

		// push token route
		auth.POST("/users/push-token", controllers.RegisterPushToken)
	}

	server := &http.Server{
		Addr:    ":" + initializers.Cfg.Port,
		Handler: middlewares.CORS(initializers.Cfg.FrontendURLs)(router),
	}

	log.Info().Str("addr", server.Addr).Msg("CampusLease API listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
