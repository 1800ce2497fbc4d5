package router

import (
	"time"

	"spendlog/api"
	"spendlog/config"
	"spendlog/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the HTTP surface.
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	r.Use(CORSMiddleware())

	authHandler := api.NewAuthHandler(cfg)

	// Unauthenticated endpoints.
	r.POST("/register", authHandler.Register)
	r.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)

	// Emailed password reset, only when mail is configured.
	if cfg.Email.Enabled {
		resetHandler := api.NewPasswordResetHandler(cfg)
		r.POST("/password/request-reset", resetHandler.RequestReset)
		r.POST("/password/reset", resetHandler.ResetPassword)
	}

	// Everything below requires a valid session token.
	authorized := r.Group("")
	authorized.Use(middleware.Auth())
	{
		authorized.POST("/logout", authHandler.Logout)
		authorized.GET("/profile", authHandler.Profile)
		authorized.PUT("/password", authHandler.ChangePassword)

		categoryHandler := api.NewCategoryHandler()
		authorized.GET("/categories", categoryHandler.List)
		authorized.POST("/categories", categoryHandler.Create)

		expenseHandler := api.NewExpenseHandler()
		authorized.POST("/expenses", expenseHandler.Create)
		authorized.GET("/expenses", expenseHandler.List)

		authorized.GET("/summarize/weekly", api.NewSummaryHandler().Weekly)

		authorized.GET("/export/excel", api.NewExportHandler().ExportExcel)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// CORSMiddleware allows the browser client to call the API cross-origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
