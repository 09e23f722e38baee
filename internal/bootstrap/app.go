package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/MarcosViniicius/projeto-avaria-usointerno/internal/handler/http"
	gormpersistence "github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/persistence/gorm"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/setup"
	redisstate "github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/state/redis"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/middleware"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/service"
)

// DevSecretKey 只在开发环境未设置 SECRET_KEY 时使用
const DevSecretKey = "dev-secret-key-change-in-production"

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	DatabaseURL     string
	SecretKey       string
	AppEnv          string // development / production
	ServerPort      string
	LogLevel        string
	SessionHours    int
	AdminSetupKey   string
	PurgePassword   string
	RedisAddr       string // 为空时不启用限流
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// IsProduction 报告是否运行在生产环境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SecretKey:       os.Getenv("SECRET_KEY"),
		AppEnv:          os.Getenv("APP_ENV"),
		ServerPort:      os.Getenv("PORT"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		AdminSetupKey:   envOr("ADMIN_SETUP_KEY", "admin2025"),
		PurgePassword:   envOr("PURGE_PASSWORD", "admin123"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:       envOr("REDIS_KEY_PREFIX", "avarias:"),
		SessionHours:    24,
		RateLimitMax:    120,
		RateLimitWindow: time.Minute,
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = setup.DefaultDatabaseURL
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "5000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SessionHours, err = intEnv("SESSION_HOURS", cfg.SessionHours); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = intEnv("RATE_LIMIT_MAX", cfg.RateLimitMax); err != nil {
		return nil, err
	}
	if raw := os.Getenv("RATE_LIMIT_WINDOW"); raw != "" {
		if cfg.RateLimitWindow, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("environment variable RATE_LIMIT_WINDOW: %w", err)
		}
	}

	if cfg.SecretKey == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("environment variable SECRET_KEY must be set in production")
		}
		logrus.Warn("SECRET_KEY not set, using the development key")
		cfg.SecretKey = DevSecretKey
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return v, nil
}

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	HttpServer  *http.Server
}

// NewLogger 按配置创建 logger，同时配置 logrus 的标准 logger 供各层使用
func NewLogger(cfg *Config) *logrus.Logger {
	level, _ := logrus.ParseLevel(cfg.LogLevel) // cfg.LogLevel 已被 LoadConfig 验证
	log := logrus.New()
	for _, l := range []*logrus.Logger{log, logrus.StandardLogger()} {
		if cfg.IsProduction() {
			l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
		} else {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
		}
		l.SetLevel(level)
		l.SetOutput(os.Stdout)
	}
	return log
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.Infof("Logger initialized (Level: %s, Env: %s)", cfg.LogLevel, cfg.AppEnv)

	// 3. 初始化基础设施
	db, err := setup.InitDB(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	log.Info("Database initialized")

	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	if redisClient != nil {
		log.Info("Redis client initialized, rate limiting enabled")
	} else {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
	}

	// 4. 初始化路由
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router, err := NewRouter(cfg, log, db, redisClient)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		HttpServer:  httpServer,
	}, nil
}

// NewRouter 组装 repositories、services、handlers，并注册全部路由
func NewRouter(cfg *Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) (*gin.Engine, error) {
	// Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	productRepo := gormpersistence.NewGormProductRepository(db)
	damageRepo := gormpersistence.NewGormDamageRepository(db)

	// Services
	authService, err := service.NewAuthService(userRepo, cfg.SecretKey, cfg.SessionHours, cfg.AdminSetupKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	intakeService := service.NewIntakeService(productRepo, damageRepo)
	reportService := service.NewReportService(productRepo, damageRepo)
	curationService := service.NewCurationService(productRepo, damageRepo, cfg.PurgePassword)
	userService := service.NewUserService(userRepo)

	// Handlers
	authHandler := httpHandler.NewAuthHandler(authService, cfg.IsProduction())
	intakeHandler := httpHandler.NewIntakeHandler(intakeService)
	adminHandler := httpHandler.NewAdminHandler(reportService, curationService, userService)

	templates, err := httpHandler.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	if redisClient != nil {
		counter := redisstate.NewRedisRateCounter(redisClient, cfg.KeyPrefix)
		router.Use(middleware.RateLimit(counter, cfg.RateLimitMax, cfg.RateLimitWindow))
	}
	router.Use(middleware.Flashes(cfg.IsProduction()))
	router.Use(middleware.Session(cfg.SecretKey, authService))

	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	router.NoRoute(httpHandler.NotFound)

	// 公开的登记页面
	router.GET("/", intakeHandler.Index)
	router.GET("/registrar/hortifruti", intakeHandler.ProducePage)
	router.POST("/registrar/hortifruti", intakeHandler.RegisterProduce)
	router.GET("/registrar/interno", intakeHandler.InternalPage)
	router.POST("/registrar/interno", intakeHandler.RegisterInternal)

	authRoutes := router.Group("/auth")
	{
		authRoutes.GET("/login", authHandler.LoginPage)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/register", authHandler.RegisterPage)
		authRoutes.POST("/register", authHandler.Register)
	}
	sessionRoutes := router.Group("/auth", middleware.RequireLogin())
	{
		sessionRoutes.GET("/logout", authHandler.Logout)
		sessionRoutes.GET("/change-password", authHandler.ChangePasswordPage)
		sessionRoutes.POST("/change-password", authHandler.ChangePassword)
	}

	adminRoutes := router.Group("/admin", middleware.RequireLogin())
	{
		adminRoutes.GET("", adminHandler.Dashboard)
		adminRoutes.GET("/registros", adminHandler.Records)
		adminRoutes.GET("/exportar/:formato", adminHandler.Export)
		adminRoutes.GET("/estatisticas", adminHandler.Statistics)
		adminRoutes.GET("/limpar", adminHandler.PurgePage)
		adminRoutes.POST("/limpar/confirmar", adminHandler.Purge)
		adminRoutes.GET("/editar/avaria/:id", adminHandler.EditRecordPage)
		adminRoutes.POST("/editar/avaria/:id", adminHandler.EditRecord)
		adminRoutes.GET("/editar/produto/:id", adminHandler.EditProductPage)
		adminRoutes.POST("/editar/produto/:id", adminHandler.EditProduct)
		adminRoutes.GET("/produtos", adminHandler.Products)
		adminRoutes.POST("/deletar/avaria/:id", adminHandler.DeleteRecord)
		adminRoutes.POST("/deletar/produto/:id", adminHandler.DeleteProduct)
	}
	userRoutes := adminRoutes.Group("/usuarios", middleware.RequireAdmin())
	{
		userRoutes.GET("", adminHandler.Users)
		userRoutes.POST("/:id/toggle-admin", adminHandler.ToggleAdmin)
	}

	log.Info("Router setup complete")
	return router, nil
}

// Start 启动 HTTP 服务器
func (a *App) Start() {
	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		} else {
			a.Log.Info("Redis connection closed.")
		}
	}

	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.Errorf("Error closing database connection: %v", err)
		} else {
			a.Log.Info("Database connection closed.")
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		if errorMessage != "" {
			entry.Error(errorMessage)
		} else if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request handled")
		}
	}
}
