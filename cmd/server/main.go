package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/labsphere/lab-management-api/internal/config"
	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/database"
	"github.com/labsphere/lab-management-api/internal/handlers"
	"github.com/labsphere/lab-management-api/internal/middleware"
	"github.com/labsphere/lab-management-api/internal/notify"
	"github.com/labsphere/lab-management-api/internal/repository"
	"github.com/labsphere/lab-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	labRepo := repository.NewLabRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	notifier := notify.NewLogNotifier()
	tenancyService := services.NewTenancyService(labRepo)
	otpService := services.NewOtpService(otpRepo)
	roleService := services.NewRoleService(roleRepo, userRepo, tenancyService, notifier)
	promotionService := services.NewPromotionService(roleRepo, userRepo, tenancyService, notifier)
	authService := services.NewAuthService(userRepo, roleRepo, roleService, tenancyService)
	labService := services.NewLabService(labRepo, otpService, tenancyService, notifier)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	labHandler := handlers.NewLabHandler(labService)
	memberHandler := handlers.NewMemberHandler(roleService, promotionService)
	otpHandler := handlers.NewOtpHandler(otpService, notifier)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Lab Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// OTP routes (public)
		otp := api.Group("/otp")
		{
			otp.POST("/issue", otpHandler.IssueOtp)
			otp.POST("/verify", otpHandler.VerifyOtp)
		}

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/superadmin", authHandler.CreateSuperAdmin)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentSession)
		}

		// Lab routes
		labs := api.Group("/labs")
		{
			labs.POST("/signup", labHandler.RegisterLab)
			labs.GET("/:id", middleware.RequireAuth(), middleware.RequireLabScope(), labHandler.GetLab)
			labs.POST("/branches", middleware.RequireAuth(), middleware.RequireSuperAdmin(), labHandler.CreateBranch)
			labs.DELETE("/branches/:id", middleware.RequireAuth(), middleware.RequireSuperAdmin(), labHandler.DeleteBranch)
			labs.POST("/branches/:id/revert", middleware.RequireAuth(), middleware.RequireSuperAdmin(), labHandler.RevertBranch)
		}

		// Member routes (protected)
		members := api.Group("/members")
		members.Use(middleware.RequireAuth())
		{
			members.GET("", memberHandler.ListMembers)
			members.POST("", middleware.RequireAdminRole(), memberHandler.AddMember)
			members.DELETE("/:id", middleware.RequireAdminRole(), memberHandler.DeleteMember)
			members.POST("/:id/revert", middleware.RequireAdminRole(), memberHandler.RevertMember)
			members.DELETE("/:id/permanent", middleware.RequireSuperAdmin(), memberHandler.PermanentlyDeleteMember)
			members.POST("/:id/promote-superadmin", middleware.RequireSuperAdmin(), memberHandler.PromoteToSuperAdmin)
			members.POST("/promote-admin", middleware.RequireSuperAdmin(), memberHandler.PromoteToAdmin)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
